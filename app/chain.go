package app

import (
	"context"

	"github.com/iov-one/htlc"
)

// Decorator wraps a Handler to provide common functionality, like
// recovery or logging.
type Decorator interface {
	Check(ctx context.Context, db htlc.KVStore, msg htlc.Msg, next htlc.Handler) error
	Deliver(ctx context.Context, db htlc.CacheableKVStore, msg htlc.Msg, next htlc.Handler) ([]byte, error)
}

// Decorators holds a chain of decorators, not yet resolved by a Handler.
type Decorators struct {
	chain []Decorator
}

/*
ChainDecorators takes a chain of decorators, and upon adding a final
Handler (often a Router), returns a Handler that will execute this whole
stack.

	app.ChainDecorators(
		app.NewLogging(),
		app.NewRecovery(),
	).WithHandler(
		router,
	)
*/
func ChainDecorators(chain ...Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain.
func (d Decorators) Chain(chain ...Decorator) Decorators {
	next := make([]Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, dec := range chain {
		if dec != nil {
			next = append(next, dec)
		}
	}
	return Decorators{chain: next}
}

// WithHandler resolves the stack and returns a concrete Handler that will
// pass through the chain of decorators before calling the final Handler.
func (d Decorators) WithHandler(h htlc.Handler) htlc.Handler {
	// Start wrapping the handler from the last decorator, the top of the
	// chain is executed first.
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one step executing a decorator around a specific Handler.
type step struct {
	d    Decorator
	next htlc.Handler
}

var _ htlc.Handler = step{}

func (s step) Check(ctx context.Context, db htlc.KVStore, msg htlc.Msg) error {
	return s.d.Check(ctx, db, msg, s.next)
}

func (s step) Deliver(ctx context.Context, db htlc.CacheableKVStore, msg htlc.Msg) ([]byte, error) {
	return s.d.Deliver(ctx, db, msg, s.next)
}
