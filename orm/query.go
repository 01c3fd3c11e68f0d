package orm

import (
	"github.com/iov-one/htlc"
)

// Register registers this bucket content to be accessible via query
// requests. Primary key lookup is available under "/<name>" and every
// index under "/<name>/<index name>".
func (b ModelBucket) Register(name string, r htlc.QueryRegistry) {
	root := "/" + name
	r.Register(root, keyQuery{bucket: b})
	for _, ix := range b.indexes {
		r.Register(root+"/"+ix.name, indexQuery{bucket: b, ix: ix})
	}
}

type keyQuery struct {
	bucket ModelBucket
}

var _ htlc.QueryHandler = keyQuery{}

func (q keyQuery) Query(db htlc.ReadOnlyKVStore, data []byte) ([]htlc.Model, error) {
	raw, err := db.Get(q.bucket.DBKey(data))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return []htlc.Model{htlc.Pair(data, raw)}, nil
}

type indexQuery struct {
	bucket ModelBucket
	ix     index
}

var _ htlc.QueryHandler = indexQuery{}

func (q indexQuery) Query(db htlc.ReadOnlyKVStore, data []byte) ([]htlc.Model, error) {
	keys, err := q.ix.Keys(db, data)
	if err != nil {
		return nil, err
	}
	models := make([]htlc.Model, 0, len(keys))
	for _, key := range keys {
		raw, err := db.Get(q.bucket.DBKey(key))
		if err != nil {
			return nil, err
		}
		models = append(models, htlc.Pair(key, raw))
	}
	return models, nil
}
