package assets

import (
	"context"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// NonFungibleToken is a reference registry of unique tokens. Each token
// id maps to its current owner.
type NonFungibleToken struct {
	prefix []byte
}

var _ Registry = (*NonFungibleToken)(nil)
var _ Minter = (*NonFungibleToken)(nil)

// NewNonFungibleToken returns a registry keeping ownership under the
// "nft:<name>:" prefix.
func NewNonFungibleToken(name string) *NonFungibleToken {
	return &NonFungibleToken{prefix: []byte("nft:" + name + ":")}
}

func (t *NonFungibleToken) Capability() Capability {
	return NonFungible
}

// ValidateAsset requires a non-empty token id.
func (t *NonFungibleToken) ValidateAsset(assetID string) error {
	if assetID == "" {
		return errors.Wrap(errors.ErrValidation, "non-fungible leg requires a token id")
	}
	return nil
}

func (t *NonFungibleToken) key(tokenID string) []byte {
	return append(append([]byte{}, t.prefix...), tokenID...)
}

// Transfer changes the owner of the token. Amount must be 1.
func (t *NonFungibleToken) Transfer(ctx context.Context, db htlc.CacheableKVStore, from, to htlc.Address, assetID string, amount uint64) error {
	if amount != 1 {
		return errors.Wrapf(errors.ErrValidation, "cannot move %d unique tokens", amount)
	}
	owner, err := t.OwnerOf(db, assetID)
	if err != nil {
		return err
	}
	if !owner.Equals(from) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "token %q is not owned by %s", assetID, from)
	}
	return db.Set(t.key(assetID), to)
}

// Mint creates a token owned by to. Amount must be 1 and the token id must
// not be in use.
func (t *NonFungibleToken) Mint(db htlc.KVStore, to htlc.Address, assetID string, amount uint64) error {
	if err := t.ValidateAsset(assetID); err != nil {
		return err
	}
	if amount != 1 {
		return errors.Wrapf(errors.ErrValidation, "cannot mint %d unique tokens", amount)
	}
	switch ok, err := db.Has(t.key(assetID)); {
	case err != nil:
		return err
	case ok:
		return errors.Wrapf(errors.ErrState, "token %q already exists", assetID)
	}
	return db.Set(t.key(assetID), to)
}

// OwnerOf returns the owner of given token.
func (t *NonFungibleToken) OwnerOf(db htlc.ReadOnlyKVStore, tokenID string) (htlc.Address, error) {
	raw, err := db.Get(t.key(tokenID))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "token %q", tokenID)
	}
	return htlc.Address(raw), nil
}
