package app

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dummyKey = "dummy"

type dummyInit struct{}

func (dummyInit) FromGenesis(opts htlc.Options, db htlc.KVStore) error {
	var value string
	if err := opts.ReadOptions(dummyKey, &value); err != nil {
		return err
	}
	if value == "" {
		return errors.Wrap(errors.ErrValidation, "dummy value required")
	}
	return db.Set([]byte(dummyKey), []byte(value))
}

type countInit struct {
	called int
}

func (c *countInit) FromGenesis(opts htlc.Options, db htlc.KVStore) error {
	c.called++
	return nil
}

func TestLoadGenesis(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "genesis.json")
	require.NoError(t, ioutil.WriteFile(good, []byte(`{"chain_id": "test-chain-67", "app_state": {"dummy": "secret"}}`), 0600))
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, ioutil.WriteFile(broken, []byte(`{"chain_id": `), 0600))

	gen, err := LoadGenesis(good)
	require.NoError(t, err)
	assert.Equal(t, "test-chain-67", gen.ChainID)

	db := store.MemStore()
	counter := &countInit{}
	require.NoError(t, ChainInitializers(counter, dummyInit{}).FromGenesis(gen.AppState, db))
	assert.Equal(t, 1, counter.called)
	value, err := db.Get([]byte(dummyKey))
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), value)

	_, err = LoadGenesis(broken)
	assert.True(t, errors.ErrEncoding.Is(err))
	_, err = LoadGenesis(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	// The chain stops at the first failing initializer.
	counter = &countInit{}
	err = ChainInitializers(dummyInit{}, counter).FromGenesis(htlc.Options{}, db)
	assert.True(t, errors.ErrValidation.Is(err))
	assert.Equal(t, 0, counter.called)
}

func TestChainID(t *testing.T) {
	db := store.MemStore()

	id, err := loadChainID(db)
	require.NoError(t, err)
	assert.Equal(t, "", id)

	assert.True(t, errors.ErrValidation.Is(saveChainID(db, "a b")))
	require.NoError(t, saveChainID(db, "test-chain"))
	assert.True(t, errors.ErrState.Is(saveChainID(db, "other-chain")))

	id, err = loadChainID(db)
	require.NoError(t, err)
	assert.Equal(t, "test-chain", id)
}
