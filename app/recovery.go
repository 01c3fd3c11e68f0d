package app

import (
	"context"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Recovery is a decorator to recover from panics in handlers, so we can
// log them as errors.
type Recovery struct{}

var _ Decorator = Recovery{}

// NewRecovery creates a Recovery decorator.
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into ErrPanic.
func (Recovery) Check(ctx context.Context, db htlc.KVStore, msg htlc.Msg, next htlc.Handler) (err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, db, msg)
}

// Deliver turns panics into ErrPanic.
func (Recovery) Deliver(ctx context.Context, db htlc.CacheableKVStore, msg htlc.Msg, next htlc.Handler) (res []byte, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, db, msg)
}
