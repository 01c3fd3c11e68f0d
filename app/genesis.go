package app

import (
	"encoding/json"
	"io/ioutil"
	"regexp"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Genesis file format.
type Genesis struct {
	ChainID  string       `json:"chain_id"`
	AppState htlc.Options `json:"app_state"`
}

// LoadGenesis reads a genesis file.
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrHuman, "loading genesis file: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrEncoding, "unmarshaling genesis file: %s", err)
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one
// function.
func ChainInitializers(inits ...htlc.Initializer) htlc.Initializer {
	return chainInitializer{inits: inits}
}

type chainInitializer struct {
	inits []htlc.Initializer
}

// FromGenesis will pass opts to all Initializers in the list, aborting at
// the first error.
func (c chainInitializer) FromGenesis(opts htlc.Options, db htlc.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, db); err != nil {
			return err
		}
	}
	return nil
}

const chainIDKey = "_app:chain_id"

var isValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,25}$`).MatchString

// loadChainID returns the chain id stored if any.
func loadChainID(db htlc.ReadOnlyKVStore) (string, error) {
	raw, err := db.Get([]byte(chainIDKey))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// saveChainID stores a chain id in the kv store. Returns error if already
// set, or invalid name.
func saveChainID(db htlc.KVStore, chainID string) error {
	if !isValidChainID(chainID) {
		return errors.Wrapf(errors.ErrValidation, "invalid chain id %q", chainID)
	}
	k := []byte(chainIDKey)
	switch ok, err := db.Has(k); {
	case err != nil:
		return err
	case ok:
		return errors.Wrap(errors.ErrState, "chain id already set")
	}
	return db.Set(k, []byte(chainID))
}
