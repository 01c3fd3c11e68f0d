package app

import (
	"context"
	"time"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Logging logs the outcome and duration of every delivered message.
type Logging struct{}

var _ Decorator = Logging{}

// NewLogging creates a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

// Check does not log, it only adds the message path to the logger.
func (Logging) Check(ctx context.Context, db htlc.KVStore, msg htlc.Msg, next htlc.Handler) error {
	return next.Check(htlc.WithLogInfo(ctx, "path", msg.Path()), db, msg)
}

func (Logging) Deliver(ctx context.Context, db htlc.CacheableKVStore, msg htlc.Msg, next htlc.Handler) ([]byte, error) {
	ctx = htlc.WithLogInfo(ctx, "path", msg.Path())
	start := time.Now()
	res, err := next.Deliver(ctx, db, msg)
	took := time.Since(start)
	if err != nil {
		htlc.GetLogger(ctx).Debug("delivery failed", "kind", errors.Kind(err), "err", err, "took", took)
	} else {
		htlc.GetLogger(ctx).Info("delivered", "took", took)
	}
	return res, err
}
