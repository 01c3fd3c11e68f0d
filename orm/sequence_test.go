package orm

import (
	"bytes"
	"testing"

	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/htlctest/assert"
	"github.com/iov-one/htlc/store"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()

	events := NewSequence("audit", "events")
	latest, err := events.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), latest)

	var prev []byte
	for want := int64(1); want <= 3; want++ {
		n, err := events.NextInt(db)
		assert.Nil(t, err)
		assert.Equal(t, want, n)

		raw := EncodeSequence(n)
		if prev != nil && bytes.Compare(prev, raw) >= 0 {
			t.Fatalf("encoded values must grow: %X then %X", prev, raw)
		}
		prev = raw
	}

	latest, err = events.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(3), latest)

	// Counters with another name do not share state.
	n, err := NewSequence("audit", "other").NextInt(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSequenceExhausted(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("audit", "full")
	assert.Nil(t, db.Set(s.key, EncodeSequence(1<<63-1)))

	_, err := s.NextInt(db)
	assert.IsErr(t, errors.ErrOverflow, err)
}

func TestDecodeSequence(t *testing.T) {
	assert.Equal(t, int64(0), DecodeSequence(nil))
	assert.Equal(t, int64(0), DecodeSequence([]byte{1, 2}))
	assert.Equal(t, int64(258), DecodeSequence(EncodeSequence(258)))
}
