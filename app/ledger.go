package app

import (
	"context"
	"sync"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/store"
	"github.com/tendermint/tendermint/libs/log"
)

// Ledger serializes calls against one consistent state.
type Ledger struct {
	mu sync.Mutex

	logger      log.Logger
	store       *CommitStore
	handler     htlc.Handler
	queries     *QueryRouter
	initializer htlc.Initializer

	// chainID is loaded from the database, saved once by InitChain.
	chainID string
	calls   int64
}

// NewLedger loads the ledger state from db.
func NewLedger(db *store.DBStore, handler htlc.Handler, queries *QueryRouter, init htlc.Initializer) (*Ledger, error) {
	cs, err := NewCommitStore(db)
	if err != nil {
		return nil, err
	}
	chainID, err := loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, errors.Wrap(err, "load chain id")
	}
	return &Ledger{
		logger:      log.NewNopLogger(),
		store:       cs,
		handler:     handler,
		queries:     queries,
		initializer: init,
		chainID:     chainID,
	}, nil
}

// WithLogger sets the logger on the Ledger and returns it, to make it
// easy to chain in initialization.
func (l *Ledger) WithLogger(logger log.Logger) *Ledger {
	l.logger = logger
	return l
}

// ChainID returns the chain id set by InitChain.
func (l *Ledger) ChainID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID
}

// Height returns the last committed height.
func (l *Ledger) Height() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Height()
}

// InitChain stores the chain id and initializes all extensions from the
// genesis application state. It can be called only once per database.
func (l *Ledger) InitChain(gen Genesis) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != "" {
		return errors.Wrapf(errors.ErrState, "already initialized for chain %q", l.chainID)
	}
	cache := l.store.DeliverStore().CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	if l.initializer != nil {
		if err := l.initializer.FromGenesis(gen.AppState, cache); err != nil {
			cache.Discard()
			return errors.Wrap(err, "genesis")
		}
	}
	if err := cache.Write(); err != nil {
		return err
	}
	l.chainID = gen.ChainID
	l.logger.Info("chain initialized", "chain_id", gen.ChainID)
	return nil
}

// context returns ctx prepared for the next call.
func (l *Ledger) context(ctx context.Context) context.Context {
	l.calls++
	ctx = htlc.WithLogger(ctx, l.logger.With("call", l.calls))
	ctx = htlc.WithChainID(ctx, l.chainID)
	if _, ok := htlc.GetHeight(ctx); !ok {
		ctx = htlc.WithHeight(ctx, l.store.Height()+1)
	}
	return ctx
}

// Check runs the stateful checks of msg against the check state without
// changing it.
func (l *Ledger) Check(ctx context.Context, msg htlc.Msg) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cache := l.store.CheckStore().CacheWrap()
	defer cache.Discard()
	return errors.Redact(l.handler.Check(l.context(ctx), cache, msg))
}

// Deliver executes msg. Its effects become part of the pending state only
// if it succeeds. Panics raised by handlers are reported as a bare
// ErrPanic.
func (l *Ledger) Deliver(ctx context.Context, msg htlc.Msg) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx = l.context(ctx)
	cache := l.store.DeliverStore().CacheWrap()
	res, err := l.handler.Deliver(ctx, cache, msg)
	if err != nil {
		cache.Discard()
		return nil, errors.Redact(err)
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write")
	}
	return res, nil
}

// Commit persists the pending state and returns the new height.
func (l *Ledger) Commit() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	height, err := l.store.Commit()
	if err != nil {
		return height, err
	}
	l.logger.Info("committed", "height", height)
	return height, nil
}

// Query runs a registered query against the committed state.
func (l *Ledger) Query(path string, data []byte) ([]htlc.Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := l.queries.Handler(path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no query handler for path %q", path)
	}
	return h.Query(l.store.CommittedStore(), data)
}
