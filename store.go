package htlc

// ReadOnlyKVStore is the read side of a key value store. Handlers that
// only answer queries receive this view.
type ReadOnlyKVStore interface {
	// Get returns nil for a missing key.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator walks [start, end) in ascending key order. A nil bound is
	// open. The range must not be written to while the iterator is open.
	Iterator(start, end []byte) (Iterator, error)
	// ReverseIterator walks [start, end) in descending key order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is shared by stores and batches. Callers must not modify
// keys or values after handing them over.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is a writable store.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	NewBatch() Batch
}

// Batch collects writes and applies them in one step on Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator is a cursor over a key range. It starts on the first key, if
// any:
//
//	for it.Valid() {
//		use(it.Key(), it.Value())
//		if err := it.Next(); err != nil {
//			return err
//		}
//	}
//
// Key, Value and Next panic once Valid returned false.
type Iterator interface {
	Valid() bool
	Next() error
	Key() []byte
	Value() []byte
	Close()
}

// CacheableKVStore can open a cache wrap on top of itself.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap buffers writes on top of a parent store. Reads see the
// buffered writes. Write flushes them to the parent in one batch and
// Discard drops them. Every swap transition runs inside one wrap, so a
// failing call leaves nothing behind.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}
