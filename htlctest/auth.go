package htlctest

import (
	"context"
	"fmt"

	"github.com/iov-one/htlc"
)

// Auth authenticates a fixed set of conditions regardless of the context.
// Signer and Signers are both honoured; Signer is reported last.
type Auth struct {
	Signer  htlc.Condition
	Signers []htlc.Condition
}

func (a *Auth) all() []htlc.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	conds := make([]htlc.Condition, 0, len(a.Signers)+1)
	conds = append(conds, a.Signers...)
	return append(conds, a.Signer)
}

func (a *Auth) GetConditions(context.Context) []htlc.Condition {
	return a.all()
}

func (a *Auth) HasAddress(_ context.Context, addr htlc.Address) bool {
	return contains(a.all(), addr)
}

// CtxAuth reads the authenticated conditions from a context value. Tests
// attach signers to a call with SetConditions.
type CtxAuth struct {
	Key string
}

// SetConditions returns a child context signed by conds. Earlier signers
// stored under the same key are replaced.
func (a *CtxAuth) SetConditions(ctx context.Context, conds ...htlc.Condition) context.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx context.Context) []htlc.Condition {
	switch v := ctx.Value(a.Key).(type) {
	case nil:
		return nil
	case []htlc.Condition:
		return v
	default:
		panic(fmt.Sprintf("context key %q holds %T", a.Key, v))
	}
}

func (a *CtxAuth) HasAddress(ctx context.Context, addr htlc.Address) bool {
	return contains(a.GetConditions(ctx), addr)
}

func contains(conds []htlc.Condition, addr htlc.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
