package assets

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// FungibleToken is a reference registry of a single divisible token.
type FungibleToken struct {
	symbol string
	bal    balances
}

var _ Registry = (*FungibleToken)(nil)
var _ Minter = (*FungibleToken)(nil)

// NewFungibleToken returns a registry of the token with given symbol.
// Balances are kept under the "ft:<symbol>:" prefix.
func NewFungibleToken(symbol string) *FungibleToken {
	return &FungibleToken{
		symbol: symbol,
		bal:    balances{prefix: []byte("ft:" + symbol + ":")},
	}
}

func (t *FungibleToken) Capability() Capability {
	return Fungible
}

// ValidateAsset accepts only the token symbol.
func (t *FungibleToken) ValidateAsset(assetID string) error {
	if assetID != t.symbol {
		return errors.Wrapf(errors.ErrValidation, "asset %q is not %q", assetID, t.symbol)
	}
	return nil
}

func (t *FungibleToken) Transfer(ctx context.Context, db htlc.CacheableKVStore, from, to htlc.Address, assetID string, amount uint64) error {
	if err := t.ValidateAsset(assetID); err != nil {
		return err
	}
	return t.bal.move(db, t.bal.key(from), t.bal.key(to), amount)
}

// Mint creates amount of new tokens owned by to.
func (t *FungibleToken) Mint(db htlc.KVStore, to htlc.Address, assetID string, amount uint64) error {
	if err := t.ValidateAsset(assetID); err != nil {
		return err
	}
	return t.bal.add(db, t.bal.key(to), amount)
}

// Balance returns the amount of tokens held by owner.
func (t *FungibleToken) Balance(db htlc.ReadOnlyKVStore, owner htlc.Address) (*uint256.Int, error) {
	return t.bal.get(db, t.bal.key(owner))
}
