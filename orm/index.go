package orm

import (
	"bytes"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Indexer returns the values a model is indexed under. No values means the
// model does not appear in the index.
type Indexer func(Model) ([][]byte, error)

const (
	indexPrefix = "_x."

	// maxChunk is the longest chunk an index key can carry. A length byte
	// of 0xff never occurs, so appending it to a prefix bounds a scan.
	maxChunk = 0xfe
)

// index keeps one empty entry per (value, primary key) pair:
//
//	_x.<len>bucket<len>index<len>value<len>key
//
// Every chunk is prefixed by its length as a single byte, so all primary
// keys stored under one value share a prefix and come back sorted.
type index struct {
	bucket  string
	name    string
	indexer Indexer
}

// Update moves the entries of key from the values of prev to the values of
// next. Either model may be nil for an insert or a delete.
func (ix index) Update(db htlc.KVStore, key []byte, prev, next Model) error {
	if prev == nil && next == nil {
		return errors.Wrap(errors.ErrHuman, "nothing to index")
	}
	stale, err := ix.values(prev)
	if err != nil {
		return err
	}
	fresh, err := ix.values(next)
	if err != nil {
		return err
	}
	for _, v := range stale {
		k, err := ix.entry(v, key)
		if err != nil {
			return err
		}
		if err := db.Delete(k); err != nil {
			return errors.Wrap(err, "remove index entry")
		}
	}
	for _, v := range fresh {
		k, err := ix.entry(v, key)
		if err != nil {
			return err
		}
		if err := db.Set(k, []byte{}); err != nil {
			return errors.Wrap(err, "write index entry")
		}
	}
	return nil
}

func (ix index) values(m Model) ([][]byte, error) {
	if m == nil {
		return nil, nil
	}
	vals, err := ix.indexer(m)
	if err != nil {
		return nil, errors.Wrapf(err, "index %q", ix.name)
	}
	return vals, nil
}

func (ix index) entry(value, key []byte) ([]byte, error) {
	return joinChunks([]byte(ix.bucket), []byte(ix.name), value, key)
}

// Keys returns the primary keys indexed under value in ascending order.
func (ix index) Keys(db htlc.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	prefix, err := joinChunks([]byte(ix.bucket), []byte(ix.name), value)
	if err != nil {
		return nil, err
	}
	end := append(append([]byte{}, prefix...), 0xff)

	it, err := db.Iterator(prefix, end)
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	defer it.Close()

	var keys [][]byte
	for it.Valid() {
		chunks, err := splitChunks(it.Key())
		if err != nil {
			return nil, err
		}
		keys = append(keys, chunks[len(chunks)-1])
		if err := it.Next(); err != nil {
			return nil, errors.Wrap(err, "iterator next")
		}
	}
	return keys, nil
}

// joinChunks builds an index key. splitChunks reverses it.
func joinChunks(chunks ...[]byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(indexPrefix)
	for _, c := range chunks {
		if len(c) > maxChunk {
			return nil, errors.Wrapf(errors.ErrValidation, "index chunk longer than %d bytes", maxChunk)
		}
		buf.WriteByte(byte(len(c)))
		buf.Write(c)
	}
	return buf.Bytes(), nil
}

func splitChunks(raw []byte) ([][]byte, error) {
	if !bytes.HasPrefix(raw, []byte(indexPrefix)) {
		return nil, errors.Wrap(errors.ErrValidation, "not an index key")
	}
	raw = raw[len(indexPrefix):]
	var chunks [][]byte
	for len(raw) > 0 {
		n := int(raw[0]) + 1
		if n > len(raw) {
			return nil, errors.Wrap(errors.ErrValidation, "truncated index key")
		}
		chunks = append(chunks, raw[1:n])
		raw = raw[n:]
	}
	return chunks, nil
}
