package assets

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// MultiToken is a reference registry of many divisible token classes.
type MultiToken struct {
	bal balances
}

var _ Registry = (*MultiToken)(nil)
var _ Minter = (*MultiToken)(nil)

// NewMultiToken returns a registry keeping balances under the
// "mt:<name>:" prefix.
func NewMultiToken(name string) *MultiToken {
	return &MultiToken{
		bal: balances{prefix: []byte("mt:" + name + ":")},
	}
}

func (t *MultiToken) Capability() Capability {
	return MultiAsset
}

// ValidateAsset requires a non-empty class id.
func (t *MultiToken) ValidateAsset(assetID string) error {
	if assetID == "" {
		return errors.Wrap(errors.ErrValidation, "multi-asset leg requires an asset id")
	}
	return nil
}

// key places the address at the end. Addresses have a fixed length so
// the key is unambiguous.
func (t *MultiToken) key(assetID string, owner htlc.Address) []byte {
	return t.bal.key([]byte(assetID), []byte{0}, owner)
}

func (t *MultiToken) Transfer(ctx context.Context, db htlc.CacheableKVStore, from, to htlc.Address, assetID string, amount uint64) error {
	if err := t.ValidateAsset(assetID); err != nil {
		return err
	}
	return t.bal.move(db, t.key(assetID, from), t.key(assetID, to), amount)
}

// Mint creates amount of new tokens of given class owned by to.
func (t *MultiToken) Mint(db htlc.KVStore, to htlc.Address, assetID string, amount uint64) error {
	if err := t.ValidateAsset(assetID); err != nil {
		return err
	}
	return t.bal.add(db, t.key(assetID, to), amount)
}

// Balance returns the amount of tokens of given class held by owner.
func (t *MultiToken) Balance(db htlc.ReadOnlyKVStore, owner htlc.Address, assetID string) (*uint256.Int, error) {
	return t.bal.get(db, t.key(assetID, owner))
}
