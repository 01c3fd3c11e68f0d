package assets

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Minter is implemented by registries that can create assets, used to
// load initial balances from genesis.
type Minter interface {
	Mint(db htlc.KVStore, to htlc.Address, assetID string, amount uint64) error
}

// genesisBalance is a single entry of the "assets" genesis section.
type genesisBalance struct {
	Registry string       `json:"registry"`
	Owner    htlc.Address `json:"owner"`
	AssetID  string       `json:"asset_id"`
	Amount   uint64       `json:"amount"`
}

var _ htlc.Initializer = (*Router)(nil)

// FromGenesis mints the balances listed under the "assets" key:
//
//	"assets": [
//	  {"registry": "ft_iov", "owner": "bech32:htlc1...", "asset_id": "IOV", "amount": 1000}
//	]
func (r *Router) FromGenesis(opts htlc.Options, db htlc.KVStore) error {
	var balances []genesisBalance
	if err := opts.ReadOptions("assets", &balances); err != nil {
		return errors.Wrapf(errors.ErrEncoding, "assets genesis: %s", err)
	}
	for i, b := range balances {
		if err := b.Owner.Validate(); err != nil {
			return errors.Wrapf(err, "balance %d: owner", i)
		}
		leg := &Leg{Registry: b.Registry, AssetID: b.AssetID, Amount: b.Amount}
		if err := r.ValidateLeg(leg); err != nil {
			return errors.Wrapf(err, "balance %d", i)
		}
		m, ok := r.registries[b.Registry].(Minter)
		if !ok {
			return errors.Wrapf(errors.ErrType, "registry %q cannot mint", b.Registry)
		}
		if err := m.Mint(db, b.Owner, b.AssetID, b.Amount); err != nil {
			return errors.Wrapf(err, "balance %d: mint", i)
		}
	}
	return nil
}
