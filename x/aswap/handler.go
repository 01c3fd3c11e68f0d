package aswap

import (
	"context"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/gconf"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r htlc.Registry, reg *Registry) {
	h := SwapHandler{reg: reg}
	r.Handle(pathInitiate, h)
	r.Handle(pathComplete, h)
	r.Handle(pathRefund, h)
	r.Handle(pathUpdateConfiguration, gconf.NewUpdateConfigurationHandler(configPkg, &Configuration{}, reg.auth))
}

// RegisterQuery registers swap queries under "/swaps".
func RegisterQuery(qr htlc.QueryRegistry, reg *Registry) {
	reg.Register(qr)
}

// SwapHandler binds swap messages to the registry.
type SwapHandler struct {
	reg *Registry
}

var _ htlc.Handler = SwapHandler{}

func (h SwapHandler) Check(ctx context.Context, db htlc.KVStore, msg htlc.Msg) error {
	var err error
	switch m := msg.(type) {
	case *InitiateMsg:
		_, err = h.reg.checkInitiate(ctx, db, m)
	case *CompleteMsg:
		_, _, err = h.reg.checkComplete(ctx, db, m)
	case *RefundMsg:
		_, err = h.reg.checkRefund(ctx, db, m)
	default:
		err = errors.Wrapf(errors.ErrType, "unexpected message %T", msg)
	}
	return err
}

// Deliver executes the message. Initiate returns the id of the created
// swap.
func (h SwapHandler) Deliver(ctx context.Context, db htlc.CacheableKVStore, msg htlc.Msg) ([]byte, error) {
	switch m := msg.(type) {
	case *InitiateMsg:
		return h.reg.Initiate(ctx, db, m)
	case *CompleteMsg:
		return nil, h.reg.Complete(ctx, db, m)
	case *RefundMsg:
		return nil, h.reg.Refund(ctx, db, m)
	default:
		return nil, errors.Wrapf(errors.ErrType, "unexpected message %T", msg)
	}
}
