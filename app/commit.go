package app

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/orm"
	"github.com/iov-one/htlc/store"
)

const heightKey = "_app:height"

// CommitStore maintains different cache-wraps for Deliver and Check over
// a database, and tracks the committed height.
type CommitStore struct {
	committed *store.DBStore
	deliver   htlc.KVCacheWrap
	check     htlc.KVCacheWrap
	height    int64
}

// NewCommitStore loads the latest committed height and sets up the
// deliver and check caches.
func NewCommitStore(db *store.DBStore) (*CommitStore, error) {
	raw, err := db.Get([]byte(heightKey))
	if err != nil {
		return nil, errors.Wrap(err, "load height")
	}
	return &CommitStore{
		committed: db,
		deliver:   db.CacheWrap(),
		check:     db.CacheWrap(),
		height:    orm.DecodeSequence(raw),
	}, nil
}

// Height returns the last committed height.
func (cs *CommitStore) Height() int64 {
	return cs.height
}

// Commit will flush deliver to the underlying store in one batch. It then
// regenerates new deliver and check caches. A batch cannot be reused
// after it was written.
func (cs *CommitStore) Commit() (int64, error) {
	next := cs.height + 1
	if err := cs.deliver.Set([]byte(heightKey), orm.EncodeSequence(next)); err != nil {
		return cs.height, err
	}
	if err := cs.deliver.Write(); err != nil {
		return cs.height, errors.Wrap(err, "commit")
	}
	cs.check.Discard()

	cs.height = next
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return next, nil
}

// DeliverStore returns the store used to process delivered messages.
func (cs *CommitStore) DeliverStore() htlc.CacheableKVStore {
	return cs.deliver
}

// CheckStore returns the store used to check messages. Its writes are
// discarded on commit.
func (cs *CommitStore) CheckStore() htlc.CacheableKVStore {
	return cs.check
}

// CommittedStore returns a read only view of the last committed state.
func (cs *CommitStore) CommittedStore() htlc.ReadOnlyKVStore {
	return cs.committed
}
