package audit

import (
	"context"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/orm"
)

// Record is the stored envelope of a published event.
type Record struct {
	Kind    string `protobuf:"bytes,1,opt,name=kind,proto3" json:"kind,omitempty"`
	SwapID  []byte `protobuf:"bytes,2,opt,name=swap_id,json=swapId,proto3" json:"swap_id,omitempty"`
	Height  int64  `protobuf:"varint,3,opt,name=height,proto3" json:"height,omitempty"`
	Payload []byte `protobuf:"bytes,4,opt,name=payload,proto3" json:"payload,omitempty"`
}

func (m *Record) Reset()         { *m = Record{} }
func (m *Record) String() string { return proto.CompactTextString(m) }
func (*Record) ProtoMessage()    {}

func (m *Record) Validate() error {
	switch m.Kind {
	case KindInitiated, KindCompleted, KindRefunded:
	default:
		return errors.Wrapf(errors.ErrValidation, "unknown kind %q", m.Kind)
	}
	if len(m.SwapID) == 0 {
		return errors.Wrap(errors.ErrValidation, "swap id")
	}
	return nil
}

// Event decodes the payload into the published event.
func (m *Record) Event() (Event, error) {
	var e Event
	switch m.Kind {
	case KindInitiated:
		e = &SwapInitiated{}
	case KindCompleted:
		e = &SwapCompleted{}
	case KindRefunded:
		e = &SwapRefunded{}
	default:
		return nil, errors.Wrapf(errors.ErrType, "unknown kind %q", m.Kind)
	}
	if err := orm.Unmarshal(m.Payload, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Entry is a record together with its position in the feed.
type Entry struct {
	Sequence int64
	Record   *Record
}

// Feed appends events to the store.
type Feed struct {
	bucket orm.ModelBucket
	seq    orm.Sequence
}

// NewFeed returns the audit feed. Records are indexed by swap id.
func NewFeed() Feed {
	return Feed{
		bucket: orm.NewModelBucket("audit", orm.WithIndex("swap", swapIndexer)),
		seq:    orm.NewSequence("audit", "id"),
	}
}

func swapIndexer(m orm.Model) ([][]byte, error) {
	r, ok := m.(*Record)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return [][]byte{r.SwapID}, nil
}

// Register exposes the feed to queries under "/audit" (by sequence) and
// "/audit/swap" (by swap id).
func (f Feed) Register(r htlc.QueryRegistry) {
	f.bucket.Register("audit", r)
}

// Publish appends the event and returns its sequence.
func (f Feed) Publish(ctx context.Context, db htlc.KVStore, e Event) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, errors.Wrapf(err, "invalid %s event", e.Kind())
	}
	payload, err := orm.Marshal(e)
	if err != nil {
		return 0, err
	}
	height, _ := htlc.GetHeight(ctx)
	rec := &Record{
		Kind:    e.Kind(),
		SwapID:  e.GetSwapID(),
		Height:  height,
		Payload: payload,
	}
	seq, err := f.seq.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "sequence")
	}
	if err := f.bucket.Put(db, orm.EncodeSequence(seq), rec); err != nil {
		return 0, errors.Wrap(err, "store record")
	}
	htlc.GetLogger(ctx).Debug("audit record", "seq", seq, "kind", rec.Kind)
	return seq, nil
}

// List returns up to limit entries with a sequence greater than after, in
// publication order. A zero limit returns all of them.
func (f Feed) List(db htlc.ReadOnlyKVStore, after int64, limit int) ([]Entry, error) {
	var records []*Record
	keys, err := f.bucket.Scan(db, orm.EncodeSequence(after+1), limit, &records)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Sequence: orm.DecodeSequence(k), Record: records[i]}
	}
	return entries, nil
}

// BySwap returns all records of given swap in publication order.
func (f Feed) BySwap(db htlc.ReadOnlyKVStore, swapID []byte) ([]*Record, error) {
	var records []*Record
	if _, err := f.bucket.ByIndex(db, "swap", swapID, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Latest returns the sequence of the last published record.
func (f Feed) Latest(db htlc.ReadOnlyKVStore) (int64, error) {
	return f.seq.Latest(db)
}
