package orm

import (
	"reflect"
	"regexp"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,20}$`).MatchString

// ModelBucket stores models of a single type under the prefix "<name>:"
// and maintains any number of secondary indexes for them.
type ModelBucket struct {
	name    string
	prefix  []byte
	indexes []index
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(*ModelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities are indexed using the provided indexer function.
func WithIndex(name string, indexer Indexer) ModelBucketOption {
	return func(b *ModelBucket) {
		for _, ix := range b.indexes {
			if ix.name == name {
				panic("duplicated index name: " + name)
			}
		}
		b.indexes = append(b.indexes, index{
			bucket:  b.name,
			name:    name,
			indexer: indexer,
		})
	}
}

// NewModelBucket returns a ModelBucket instance. Name must be lowercase
// letters or underscore and unique within the store.
func NewModelBucket(name string, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	b := ModelBucket{
		name:   name,
		prefix: []byte(name + ":"),
	}
	for _, fn := range opts {
		fn(&b)
	}
	return b
}

// Name returns the name of this bucket.
func (b ModelBucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix. We copy
// into a new array rather than use append, as we don't want consecutive
// calls to overwrite the same byte array.
func (b ModelBucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// One query the database for a single model instance. Lookup is done by
// the primary key. Result is loaded into given destination model. This
// method returns ErrNotFound if the entity does not exist in the database.
func (b ModelBucket) One(db htlc.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	return Unmarshal(raw, dest)
}

// Has returns nil if an entity with given primary key value exists. It
// returns ErrNotFound if no entity can be found.
func (b ModelBucket) Has(db htlc.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot query the database")
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

// Put validates and saves given model in the database. All indexes are
// updated.
func (b ModelBucket) Put(db htlc.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrValidation, "empty key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	prev, err := b.load(db, key, m)
	if err != nil {
		return err
	}
	raw, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	for _, ix := range b.indexes {
		if err := ix.Update(db, key, prev, m); err != nil {
			return errors.Wrapf(err, "cannot update %q index", ix.name)
		}
	}
	return nil
}

// Delete removes an entity with given primary key from the database,
// together with all its index references. It returns ErrNotFound if an
// entity with given key does not exist.
func (b ModelBucket) Delete(db htlc.KVStore, key []byte, template Model) error {
	prev, err := b.load(db, key, template)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.ErrNotFound
	}
	for _, ix := range b.indexes {
		if err := ix.Update(db, key, prev, nil); err != nil {
			return errors.Wrapf(err, "cannot update %q index", ix.name)
		}
	}
	return db.Delete(b.DBKey(key))
}

// load returns a fresh instance of the same type as template, filled with
// the stored entity, or nil if nothing is stored under the key.
func (b ModelBucket) load(db htlc.ReadOnlyKVStore, key []byte, template Model) (Model, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return nil, nil
	}
	m := reflect.New(reflect.TypeOf(template).Elem()).Interface().(Model)
	if err := Unmarshal(raw, m); err != nil {
		return nil, err
	}
	return m, nil
}

// IndexKeys returns the primary keys of all entities indexed under given
// value.
func (b ModelBucket) IndexKeys(db htlc.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error) {
	for _, ix := range b.indexes {
		if ix.name == indexName {
			return ix.Keys(db, value)
		}
	}
	return nil, errors.Wrapf(errors.ErrHuman, "no %q index in %q bucket", indexName, b.name)
}

// ByIndex returns all objects that secondary index with given name and
// given key. All matching entities are appended to given destination
// slice. If no result was found, no error is returned and destination
// slice is not modified.
func (b ModelBucket) ByIndex(db htlc.ReadOnlyKVStore, indexName string, value []byte, dest ModelSlicePtr) ([][]byte, error) {
	keys, err := b.IndexKeys(db, indexName, value)
	if err != nil {
		return nil, err
	}
	if err := b.loadAll(db, keys, dest); err != nil {
		return nil, err
	}
	return keys, nil
}

// Scan loads up to limit entities with a primary key greater or equal to
// start, in ascending key order. A zero limit loads everything. Returned
// keys correspond to appended entities.
func (b ModelBucket) Scan(db htlc.ReadOnlyKVStore, start []byte, limit int, dest ModelSlicePtr) ([][]byte, error) {
	from := b.DBKey(start)
	to := prefixEnd(b.prefix)
	it, err := db.Iterator(from, to)
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	defer it.Close()

	var keys [][]byte
	for it.Valid() && (limit == 0 || len(keys) < limit) {
		keys = append(keys, it.Key()[len(b.prefix):])
		if err := it.Next(); err != nil {
			return nil, errors.Wrap(err, "iterator next")
		}
	}
	if err := b.loadAll(db, keys, dest); err != nil {
		return nil, err
	}
	return keys, nil
}

func (b ModelBucket) loadAll(db htlc.ReadOnlyKVStore, keys [][]byte, dest ModelSlicePtr) error {
	if len(keys) == 0 {
		return nil
	}
	dval := reflect.ValueOf(dest)
	if dval.Kind() != reflect.Ptr || dval.Elem().Kind() != reflect.Slice {
		return errors.Wrapf(errors.ErrType, "destination must be a pointer to a slice of models, got %T", dest)
	}
	sval := dval.Elem()
	elemType := sval.Type().Elem()
	if elemType.Kind() != reflect.Ptr {
		return errors.Wrapf(errors.ErrType, "slice element must be a pointer, got %s", elemType)
	}
	for _, key := range keys {
		m, ok := reflect.New(elemType.Elem()).Interface().(Model)
		if !ok {
			return errors.Wrapf(errors.ErrType, "%s is not a model", elemType)
		}
		if err := b.One(db, key, m); err != nil {
			return errors.Wrapf(err, "load %X", key)
		}
		sval.Set(reflect.Append(sval, reflect.ValueOf(m)))
	}
	return nil
}

// prefixEnd returns the first key that does not start with given prefix.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
