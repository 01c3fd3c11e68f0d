package orm

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/htlctest/assert"
	"github.com/iov-one/htlc/store"
)

// Counter is a minimal model used to test buckets.
type Counter struct {
	Count int64  `protobuf:"varint,1,opt,name=count,proto3" json:"count,omitempty"`
	Owner []byte `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
}

func (m *Counter) Reset()         { *m = Counter{} }
func (m *Counter) String() string { return proto.CompactTextString(m) }
func (*Counter) ProtoMessage()    {}

func (m *Counter) Validate() error {
	if m.Count < 0 {
		return errors.Wrap(errors.ErrValidation, "negative count")
	}
	return nil
}

func ownerIndexer(m Model) ([][]byte, error) {
	c, ok := m.(*Counter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	if len(c.Owner) == 0 {
		return nil, nil
	}
	return [][]byte{c.Owner}, nil
}

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", WithIndex("owner", ownerIndexer))

	assert.Nil(t, b.Put(db, []byte("c1"), &Counter{Count: 1, Owner: []byte("alice")}))

	var c1 Counter
	assert.Nil(t, b.One(db, []byte("c1"), &c1))
	assert.Equal(t, int64(1), c1.Count)
	assert.Nil(t, b.Has(db, []byte("c1")))

	if err := b.Put(db, []byte("c2"), &Counter{Count: -1}); !errors.ErrValidation.Is(err) {
		t.Fatalf("want validation error, got %+v", err)
	}

	assert.Nil(t, b.Delete(db, []byte("c1"), &Counter{}))
	if err := b.Delete(db, []byte("unknown"), &Counter{}); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error when deleting unexisting instance: %s", err)
	}
	if err := b.One(db, []byte("c1"), &c1); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error for an unknown model get: %s", err)
	}
	if err := b.Has(db, []byte("c1")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error for an unknown model has: %s", err)
	}
	keys, err := b.IndexKeys(db, "owner", []byte("alice"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(keys))
}

func TestModelBucketByIndex(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", WithIndex("owner", ownerIndexer))

	assert.Nil(t, b.Put(db, []byte("a"), &Counter{Count: 1, Owner: []byte("alice")}))
	assert.Nil(t, b.Put(db, []byte("b"), &Counter{Count: 2, Owner: []byte("bob")}))
	assert.Nil(t, b.Put(db, []byte("c"), &Counter{Count: 3, Owner: []byte("alice")}))
	assert.Nil(t, b.Put(db, []byte("d"), &Counter{Count: 4}))

	// moving an entity to another owner must update the index
	assert.Nil(t, b.Put(db, []byte("b"), &Counter{Count: 2, Owner: []byte("alice")}))

	cases := map[string]struct {
		owner    string
		wantKeys [][]byte
		want     []*Counter
	}{
		"three for alice": {
			owner:    "alice",
			wantKeys: [][]byte{[]byte("a"), []byte("b"), []byte("c")},
			want: []*Counter{
				{Count: 1, Owner: []byte("alice")},
				{Count: 2, Owner: []byte("alice")},
				{Count: 3, Owner: []byte("alice")},
			},
		},
		"none for bob": {
			owner: "bob",
		},
		"owner that is a prefix of another": {
			owner: "ali",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got []*Counter
			keys, err := b.ByIndex(db, "owner", []byte(tc.owner), &got)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantKeys, keys)
			assert.Equal(t, tc.want, got)
		})
	}

	if _, err := b.ByIndex(db, "unknown", []byte("x"), new([]*Counter)); !errors.ErrHuman.Is(err) {
		t.Fatalf("want human error for a missing index, got %+v", err)
	}
}

func TestModelBucketScan(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts")
	other := NewModelBucket("cntsx")

	for i := int64(1); i <= 5; i++ {
		assert.Nil(t, b.Put(db, EncodeSequence(i), &Counter{Count: i}))
	}
	assert.Nil(t, other.Put(db, EncodeSequence(1), &Counter{Count: 100}))

	var all []*Counter
	keys, err := b.Scan(db, nil, 0, &all)
	assert.Nil(t, err)
	assert.Equal(t, 5, len(keys))
	assert.Equal(t, int64(5), all[4].Count)

	var page []*Counter
	keys, err = b.Scan(db, EncodeSequence(3), 2, &page)
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{EncodeSequence(3), EncodeSequence(4)}, keys)
	assert.Equal(t, int64(3), page[0].Count)
	assert.Equal(t, int64(4), page[1].Count)

	if _, err := b.Scan(db, nil, 0, []*Counter{}); !errors.ErrType.Is(err) {
		t.Fatalf("want type error for a non pointer destination, got %+v", err)
	}
}

func TestModelBucketNames(t *testing.T) {
	assert.Panics(t, func() { NewModelBucket("X") })
	assert.Panics(t, func() {
		NewModelBucket("cnts", WithIndex("a", ownerIndexer), WithIndex("a", ownerIndexer))
	})
}
