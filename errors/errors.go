package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrValidation is returned when a request is malformed: zero or
	// mismatched amounts, an empty commitment, a zero duration or a swap
	// with oneself.
	ErrValidation = Register(2, "validation")

	// ErrUnauthorized is returned when the caller lacks a required
	// capability.
	ErrUnauthorized = Register(3, "unauthorized")

	// ErrState is returned when an operation is not allowed in the current
	// state of a record, including an attempt to create a duplicate.
	ErrState = Register(4, "invalid state")

	// ErrTemporal is returned when a deadline policy rejects the call.
	ErrTemporal = Register(5, "temporal policy")

	// ErrSecret is returned when a revealed secret does not match its
	// commitment.
	ErrSecret = Register(6, "secret mismatch")

	// ErrTransfer is returned when an asset movement failed. When returned
	// from a batch call no leg of that batch was applied.
	ErrTransfer = Register(7, "transfer failed")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = Register(8, "not found")

	// ErrPaused is returned while the registry is administratively paused.
	ErrPaused = Register(9, "paused")

	// ErrInsufficientAmount is returned by asset registries when an owner
	// cannot cover a movement.
	ErrInsufficientAmount = Register(10, "insufficient amount")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(11, "overflow")

	// ErrDatabase is returned when the storage layer fails.
	ErrDatabase = Register(12, "database")

	// ErrEncoding is returned when a value cannot be serialized or
	// deserialized.
	ErrEncoding = Register(13, "encoding")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(14, "invalid type")

	// ErrHuman is returned when application reaches a code path which
	// should not ever be reached if the code was written as expected.
	ErrHuman = Register(15, "coding error")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Register declares a root error. Codes are unique; registering one twice
// panics, so call it from package level variable declarations only.
func Register(code uint32, description string) *Error {
	if prev, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error code %d already taken by %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	usedCodes[code] = e
	return e
}

// Code 1 stands for errors that were not declared with Register.
var usedCodes = map[uint32]*Error{1: {code: 1, desc: "internal"}}

// Error is a root error kind. Errors created at runtime wrap one of the
// declared kinds so callers can branch on the kind with Is.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string { return e.desc }

// Code identifies the kind outside of the process.
func (e Error) Code() uint32 { return e.code }

// Is reports whether err is this kind or wraps it. A nil kind matches only
// nil errors, typed nils included.
func (e *Error) Is(err error) bool {
	if e == nil {
		return err == nil || reflect.ValueOf(err).IsNil()
	}
	return walk(err, func(cur error) bool { return cur == e || kindOf(cur) == e })
}

// Kind returns the root kind err wraps, or nil for foreign errors.
func Kind(err error) *Error {
	var kind *Error
	walk(err, func(cur error) bool {
		if kind = kindOf(cur); kind == nil {
			kind, _ = cur.(*Error)
		}
		return kind != nil
	})
	return kind
}

// kindOf returns the kind assigned with WithKind, if any.
func kindOf(err error) *Error {
	if w, ok := err.(*wrappedError); ok {
		return w.kind
	}
	return nil
}

// walk calls fn on err and every error it wraps until fn returns true.
func walk(err error, fn func(error) bool) bool {
	for err != nil {
		if fn(err) {
			return true
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

type causer interface {
	Cause() error
}

// Wrap adds context to err and returns nil for a nil err. The innermost
// wrap records a stack trace.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if !hasStack(err) {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

// WithKind wraps err as an error of kind. Is matches kind as well as any
// kind err already carries, and Kind reports kind. Use it when a failure
// must be classified anew without losing its cause.
func WithKind(kind *Error, err error, description string) error {
	if err == nil {
		return nil
	}
	if !hasStack(err) {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, kind: kind, parent: err}
}

// Wrapf is Wrap with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

func hasStack(err error) bool {
	return walk(err, func(cur error) bool {
		_, ok := cur.(interface{ StackTrace() errors.StackTrace })
		return ok
	})
}

type wrappedError struct {
	msg    string
	kind   *Error
	parent error
}

func (e *wrappedError) Error() string {
	if e.kind != nil {
		return e.msg + ": " + e.kind.desc + ": " + e.parent.Error()
	}
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error { return e.parent }

// Unwrap lets the standard library walk the chain too.
func (e *wrappedError) Unwrap() error { return e.parent }

// Format prints the stack trace for %+v.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n%+v", e.msg, e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover turns a panic into an ErrPanic assigned to *err. It must be
// deferred.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// Redact hides the details of a recovered panic from callers.
func Redact(err error) error {
	if ErrPanic.Is(err) {
		return ErrPanic
	}
	return err
}
