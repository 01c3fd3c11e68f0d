/*
Package audit implements the append-only feed of swap transitions.

Every transition publishes one record. Records are kept in the same store
as the swaps, keyed by a sequence, so a call that is rolled back leaves no
record behind. External indexers page through the feed with List.
*/
package audit
