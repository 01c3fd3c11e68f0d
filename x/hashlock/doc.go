/*
Package hashlock implements the one-way commitment that locks a swap.

A commitment is the digest of a secret preimage. The initiator publishes
the commitment when creating a swap and keeps the secret off-ledger until
completion. Revealing the secret proves knowledge of the preimage and
unlocks the escrowed assets.

Once a secret is submitted for completion it becomes observable before the
call is finalized. A third party that sees it may try to submit it first.
This package does not prevent that race. Completion rights are bound to
the swap participant (or its operator) instead, so an observed secret is
useless to anyone else.
*/
package hashlock
