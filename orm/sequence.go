package orm

import (
	"encoding/binary"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

const sequenceSize = 8

// Sequence is a persistent counter. The first value handed out is 1, zero
// means the sequence was never used. Encoded values sort in numeric order,
// which makes them usable as bucket keys.
//
// The counter is stored under _s.<bucket>:<name>.
type Sequence struct {
	key []byte
}

// NewSequence returns the counter called name that belongs to bucket.
func NewSequence(bucket, name string) Sequence {
	return Sequence{key: []byte("_s." + bucket + ":" + name)}
}

// NextInt advances the counter and returns the new value.
func (s Sequence) NextInt(db htlc.KVStore) (int64, error) {
	cur, err := s.Latest(db)
	if err != nil {
		return 0, err
	}
	if cur < 0 || cur+1 < cur {
		return 0, errors.Wrap(errors.ErrOverflow, "sequence exhausted")
	}
	next := cur + 1
	if err := db.Set(s.key, EncodeSequence(next)); err != nil {
		return 0, errors.Wrap(err, "store sequence")
	}
	return next, nil
}

// Latest returns the last value handed out without advancing the counter.
func (s Sequence) Latest(db htlc.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(s.key)
	if err != nil {
		return 0, errors.Wrap(err, "load sequence")
	}
	return DecodeSequence(raw), nil
}

// EncodeSequence returns the big endian form of n.
func EncodeSequence(n int64) []byte {
	var raw [sequenceSize]byte
	binary.BigEndian.PutUint64(raw[:], uint64(n))
	return raw[:]
}

// DecodeSequence reverses EncodeSequence. Anything that is not exactly
// eight bytes long, nil included, reads as zero.
func DecodeSequence(raw []byte) int64 {
	if len(raw) != sequenceSize {
		return 0
	}
	return int64(binary.BigEndian.Uint64(raw))
}
