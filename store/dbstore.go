package store

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DBStore exposes a tendermint database as the committed layer of the
// ledger. All writes reach the database through an atomic batch, usually
// the one created by a cache-wrap on top of this store.
type DBStore struct {
	db dbm.DB
}

var _ htlc.CacheableKVStore = (*DBStore)(nil)

// NewDBStore wraps given database.
func NewDBStore(db dbm.DB) *DBStore {
	return &DBStore{db: db}
}

// NewMemDBStore returns a store backed by an in-memory tendermint
// database.
func NewMemDBStore() *DBStore {
	return NewDBStore(dbm.NewMemDB())
}

// OpenGoLevelDB opens (or creates) a goleveldb database called name inside
// of dir.
func OpenGoLevelDB(name, dir string) (*DBStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %s in %s: %s", name, dir, err)
	}
	return NewDBStore(db), nil
}

// Get returns nil iff key doesn't exist.
func (s *DBStore) Get(key []byte) (val []byte, err error) {
	defer recoverDB(&err)
	return s.db.Get(key), nil
}

// Has checks if a key exists.
func (s *DBStore) Has(key []byte) (ok bool, err error) {
	defer recoverDB(&err)
	return s.db.Has(key), nil
}

// Set writes directly to the database. Prefer writing through a
// cache-wrap so that changes are applied atomically.
func (s *DBStore) Set(key, value []byte) (err error) {
	defer recoverDB(&err)
	s.db.Set(key, value)
	return nil
}

// Delete removes the key directly from the database.
func (s *DBStore) Delete(key []byte) (err error) {
	defer recoverDB(&err)
	s.db.Delete(key)
	return nil
}

// Iterator over a domain of keys in ascending order.
func (s *DBStore) Iterator(start, end []byte) (it htlc.Iterator, err error) {
	defer recoverDB(&err)
	return &dbIterator{it: s.db.Iterator(start, end)}, nil
}

// ReverseIterator over a domain of keys in descending order.
func (s *DBStore) ReverseIterator(start, end []byte) (it htlc.Iterator, err error) {
	defer recoverDB(&err)
	return &dbIterator{it: s.db.ReverseIterator(start, end)}, nil
}

// NewBatch returns an atomic database batch.
func (s *DBStore) NewBatch() htlc.Batch {
	return &dbBatch{b: s.db.NewBatch()}
}

// CacheWrap returns a scratch pad whose Write flushes all changes in a
// single atomic database batch.
func (s *DBStore) CacheWrap() htlc.KVCacheWrap {
	return NewBTreeCacheWrap(s, s.NewBatch(), nil)
}

// Close releases the database.
func (s *DBStore) Close() error {
	s.db.Close()
	return nil
}

type dbBatch struct {
	b dbm.Batch
}

var _ htlc.Batch = (*dbBatch)(nil)

func (b *dbBatch) Set(key, value []byte) (err error) {
	defer recoverDB(&err)
	b.b.Set(key, value)
	return nil
}

func (b *dbBatch) Delete(key []byte) (err error) {
	defer recoverDB(&err)
	b.b.Delete(key)
	return nil
}

func (b *dbBatch) Write() (err error) {
	defer recoverDB(&err)
	b.b.WriteSync()
	return nil
}

type dbIterator struct {
	it dbm.Iterator
}

var _ htlc.Iterator = (*dbIterator)(nil)

func (i *dbIterator) Valid() bool {
	return i.it.Valid()
}

func (i *dbIterator) Next() (err error) {
	defer recoverDB(&err)
	i.it.Next()
	return nil
}

func (i *dbIterator) Key() []byte {
	return i.it.Key()
}

func (i *dbIterator) Value() []byte {
	return i.it.Value()
}

func (i *dbIterator) Close() {
	i.it.Close()
}

// recoverDB turns a panic raised by the database into ErrDatabase. The
// tendermint databases report most failures by panicking.
func recoverDB(err *error) {
	if r := recover(); r != nil {
		*err = errors.Wrapf(errors.ErrDatabase, "%v", r)
	}
}
