/*
Package errors implements the error taxonomy used by the swap protocol.

Every error returned by this module wraps one of the root errors declared
here. Callers test the kind of a failure with the Is method of the root
error, for example

	if errors.ErrSecret.Is(err) {
		// retry with the correct preimage
	}

Wrap and Wrapf attach context to an error without hiding its kind. A stack
trace is captured once, at the innermost wrap, and is printed with %+v.
*/
package errors
