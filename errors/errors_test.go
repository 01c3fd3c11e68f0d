package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestKindMatching(t *testing.T) {
	disk := stdlib.New("disk full")

	cases := map[string]struct {
		kind     *Error
		err      error
		wantIs   bool
		wantKind *Error
	}{
		"bare kind": {
			kind:     ErrState,
			err:      ErrState,
			wantIs:   true,
			wantKind: ErrState,
		},
		"other kind": {
			kind:     ErrState,
			err:      ErrTemporal,
			wantKind: ErrTemporal,
		},
		"wrapped twice": {
			kind:     ErrSecret,
			err:      Wrapf(Wrap(ErrSecret, "verify"), "swap %d", 7),
			wantIs:   true,
			wantKind: ErrSecret,
		},
		"wrapped by pkg/errors": {
			kind:     ErrTransfer,
			err:      errors.Wrap(ErrTransfer, "leg 2"),
			wantIs:   true,
			wantKind: ErrTransfer,
		},
		"reclassified keeps the outer kind": {
			kind:     ErrTransfer,
			err:      WithKind(ErrTransfer, Wrap(ErrInsufficientAmount, "alice"), "leg 1"),
			wantIs:   true,
			wantKind: ErrTransfer,
		},
		"reclassified keeps the cause": {
			kind:     ErrInsufficientAmount,
			err:      WithKind(ErrTransfer, Wrap(ErrInsufficientAmount, "alice"), "leg 1"),
			wantIs:   true,
			wantKind: ErrTransfer,
		},
		"foreign error": {
			kind: ErrDatabase,
			err:  Wrap(disk, "flush"),
		},
		"nil kind matches nil": {
			err:    nil,
			wantIs: true,
		},
		"nil kind does not match an error": {
			err:      ErrPaused,
			wantKind: ErrPaused,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := tc.kind.Is(tc.err); got != tc.wantIs {
				t.Fatalf("want Is %v, got %v", tc.wantIs, got)
			}
			if got := Kind(tc.err); got != tc.wantKind {
				t.Fatalf("want kind %v, got %v", tc.wantKind, got)
			}
		})
	}
}

func TestWrapKeepsRootCause(t *testing.T) {
	disk := stdlib.New("disk full")
	if got := errors.Cause(Wrap(disk, "flush")); got != disk {
		t.Fatalf("want %v as cause, got %v", disk, got)
	}
	if got := errors.Cause(Wrap(ErrNotFound, "swap")); got != ErrNotFound {
		t.Fatalf("want %v as cause, got %v", ErrNotFound, got)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "ignored"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Wrapf(nil, "ignored %d", 1); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := WithKind(ErrTransfer, nil, "ignored"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestWrapFormatting(t *testing.T) {
	err := Wrap(Wrapf(ErrValidation, "amount %d", 0), "leg 1")
	if got, want := err.Error(), "leg 1: amount 0: validation"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	full := fmt.Sprintf("%+v", err)
	if !strings.Contains(full, "errors_test.go") {
		t.Fatalf("stack trace missing from %q", full)
	}
	if n := strings.Count(full, "TestWrapFormatting"); n != 1 {
		t.Fatalf("want one stack trace, got %d in %q", n, full)
	}
}

func TestWithKindFormatting(t *testing.T) {
	err := WithKind(ErrTransfer, Wrap(ErrInsufficientAmount, "alice"), "leg 2 of 3")
	if got, want := err.Error(), "leg 2 of 3: transfer failed: alice: insufficient amount"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if got := errors.Cause(err); got != ErrInsufficientAmount {
		t.Fatalf("want %v as cause, got %v", ErrInsufficientAmount, got)
	}
}

func TestRecoverAndRedact(t *testing.T) {
	call := func() (err error) {
		defer Recover(&err)
		panic("balance map corrupted")
	}
	err := call()
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %v", err)
	}
	if !strings.Contains(err.Error(), "balance map corrupted") {
		t.Fatalf("panic value lost: %v", err)
	}
	if got := Redact(err); got != ErrPanic {
		t.Fatalf("want bare panic error, got %v", got)
	}
	if got := Redact(ErrSecret); got != ErrSecret {
		t.Fatalf("other errors must pass through, got %v", got)
	}
}

func TestRegisterRejectsTakenCodes(t *testing.T) {
	for _, code := range []uint32{1, ErrState.Code()} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("code %d registered twice", code)
				}
			}()
			Register(code, "again")
		}()
	}
}
