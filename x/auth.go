package x

import (
	"context"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Authenticator tells handlers which principals signed the current call.
// Handlers receive it in their constructor so the host decides how
// signatures are checked.
type Authenticator interface {
	// GetConditions returns every condition the call was authorized by.
	GetConditions(context.Context) []htlc.Condition
	// HasAddress is true when one of the conditions resolves to addr.
	HasAddress(context.Context, htlc.Address) bool
}

// AnyAuth authenticates a call when any of its members does.
type AnyAuth []Authenticator

var _ Authenticator = AnyAuth(nil)

// ChainAuth combines authenticators. Conditions are reported in the order
// the authenticators were given.
func ChainAuth(impls ...Authenticator) AnyAuth {
	return AnyAuth(impls)
}

func (a AnyAuth) GetConditions(ctx context.Context) []htlc.Condition {
	var conds []htlc.Condition
	for _, impl := range a {
		conds = append(conds, impl.GetConditions(ctx)...)
	}
	return conds
}

func (a AnyAuth) HasAddress(ctx context.Context, addr htlc.Address) bool {
	for _, impl := range a {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// Signers lists the addresses of all conditions present in the context.
func Signers(ctx context.Context, auth Authenticator) []htlc.Address {
	conds := auth.GetConditions(ctx)
	if len(conds) == 0 {
		return nil
	}
	addrs := make([]htlc.Address, 0, len(conds))
	for _, c := range conds {
		addrs = append(addrs, c.Address())
	}
	return addrs
}

// RequireSigner returns ErrUnauthorized unless addr signed the call. The
// role names the principal in the error message, for example "initiator".
func RequireSigner(ctx context.Context, auth Authenticator, addr htlc.Address, role string) error {
	if len(addr) == 0 {
		return errors.Wrapf(errors.ErrUnauthorized, "no %s configured", role)
	}
	if !auth.HasAddress(ctx, addr) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s signature required", role)
	}
	return nil
}

// FirstSigner returns the first candidate that signed the call. Empty
// candidates are skipped.
func FirstSigner(ctx context.Context, auth Authenticator, candidates ...htlc.Address) (htlc.Address, bool) {
	for _, c := range candidates {
		if len(c) != 0 && auth.HasAddress(ctx, c) {
			return c, true
		}
	}
	return nil, false
}
