/*
Package app hosts the swap packages on a single ledger.

A Ledger totally orders calls. Each call runs on its own cache-wrap of the
pending block state, written on success and discarded on error, so a failed
call never leaves partial effects. Commit flushes the pending state to the
database in one atomic batch.
*/
package app
