// Package aswap implements hash and time locked atomic swaps.
//
// An initiator escrows one or more asset legs behind the commitment of a
// secret and a deadline. The participant (or an operator designated by the
// initiator) completes the swap by revealing the secret. Completion moves
// the participant legs to the initiator and the escrowed legs to the
// participant in a single all-or-nothing step. Once the deadline is
// reached the initiator (or the operator) can refund the escrowed legs
// instead.
//
//	Initiated --(secret, before deadline)--> Completed
//	Initiated --(deadline reached)---------> Refunded
//
// Both end states are terminal. Swap records are never deleted so that
// their identifiers are never reused.
//
// The Completion setting of the configuration selects the temporal policy.
// CompleteBeforeDeadline, the default, accepts the secret only before the
// deadline, so completion and refund windows never overlap.
// CompleteUntilRefunded also accepts a secret after the deadline for as
// long as nobody refunded the swap.
//
// A secret submitted for completion is observable before the call is
// final, and it unlocks the counterpart swap on the other ledger. This
// package does not prevent a third party from reading it. Completion here
// is bound to the participant or its operator, so the observed secret
// cannot be used against this swap.
//
// Every transition writes the new status before any asset is moved, so an
// asset registry calling back into the swap registry always observes the
// terminal state. Deadlines that would not fit in a UnixTime are rejected
// when the swap is initiated.
package aswap
