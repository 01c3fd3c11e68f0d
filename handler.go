package htlc

import (
	"context"
	"encoding/json"
	"regexp"
)

// Msg is a request for the ledger to take an action (make a state
// transition). It must be validated by the Handlers. Authentication
// information travels in the context.
type Msg interface {
	// Path is used by the Router to locate the proper Handler.
	//
	// Must be alphanumeric [0-9A-Za-z_\-/]+
	Path() string

	// Validate performs stateless checks of the message content.
	Validate() error
}

// Handler is a core engine that can process a few specific messages.
type Handler interface {
	// Check verifies the message against current state without mutating
	// it.
	Check(ctx context.Context, db KVStore, msg Msg) error

	// Deliver executes the message. The result is handler specific,
	// usually the key of a created entity.
	Deliver(ctx context.Context, db CacheableKVStore, msg Msg) ([]byte, error)
}

// Registry is an interface to register your handler, the setup side of a
// Router.
type Registry interface {
	Handle(path string, h Handler)
}

// IsValidPath reports whether given message path can be registered.
var IsValidPath = regexp.MustCompile(`^[a-zA-Z0-9_\-/]+$`).MatchString

// Model groups together key and value to return.
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair.
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}

// QueryHandler is anything that can process queries against the state.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, data []byte) ([]Model, error)
}

// QueryRegistry is the setup side of a query router.
type QueryRegistry interface {
	Register(path string, h QueryHandler)
}

// Options are the genesis options. Each extension can look up its key and
// parse the json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key, and parses the
// json into the given obj. Returns an error if it cannot parse. Noop and
// no error if key is missing.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize extensions from
// genesis file contents.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
