package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/htlc"
)

// DefaultFreeListSize is the number of btree nodes a fresh free list keeps
// around for reuse.
const DefaultFreeListSize = btree.DefaultFreeListSize

// MemStore returns an empty in-memory store. Nothing survives the process.
func MemStore() htlc.CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// BTreeCacheWrap buffers writes in a btree on top of a read-only parent.
//
// Writes are recorded twice: in the btree, so reads through the wrap see
// them, and in batch, which Write flushes to the parent. Deletes are kept
// as tombstones so they hide the parent's value. Discard drops both.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  htlc.ReadOnlyKVStore
	batch htlc.Batch
}

var _ htlc.KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap wraps kv. Writes only reach kv through batch. Wraps
// stacked on each other may share one free list; nil allocates a new one.
func NewBTreeCacheWrap(kv htlc.ReadOnlyKVStore, batch htlc.Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap opens a nested wrap. Its Write lands in this wrap only.
func (b BTreeCacheWrap) CacheWrap() htlc.KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

func (b BTreeCacheWrap) NewBatch() htlc.Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes the buffered writes to the parent and empties the wrap.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops every buffered write. Nodes go back to the free list.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
	if d, ok := b.batch.(interface{ Discard() }); ok {
		d.Discard()
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(entry{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(entry{key: key, deleted: true})
	return b.batch.Delete(key)
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if e, ok := b.lookup(key); ok {
		return e.value, nil
	}
	return b.back.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if e, ok := b.lookup(key); ok {
		return !e.deleted, nil
	}
	return b.back.Has(key)
}

// lookup returns the buffered entry for key, tombstones included.
func (b BTreeCacheWrap) lookup(key []byte) (entry, bool) {
	it := b.bt.Get(entry{key: key})
	if it == nil {
		return entry{}, false
	}
	return it.(entry), true
}

func (b BTreeCacheWrap) Iterator(start, end []byte) (htlc.Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(b.snapshot(start, end), parent, false)
}

func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (htlc.Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	entries := b.snapshot(start, end)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return newMergeIterator(entries, parent, true)
}

// snapshot copies the buffered entries within [start, end) in ascending
// order. A nil bound is open. Iterators read the copy, so writes made
// while iterating do not disturb them.
func (b BTreeCacheWrap) snapshot(start, end []byte) []entry {
	var entries []entry
	visit := func(it btree.Item) bool {
		entries = append(entries, it.(entry))
		return true
	}
	lo, hi := entry{key: start}, entry{key: end}
	switch {
	case start == nil && end == nil:
		b.bt.Ascend(visit)
	case start == nil:
		b.bt.AscendLessThan(hi, visit)
	case end == nil:
		b.bt.AscendGreaterOrEqual(lo, visit)
	default:
		b.bt.AscendRange(lo, hi, visit)
	}
	return entries
}

// entry is a buffered write. A deleted entry is a tombstone and carries no
// value.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}
