package aswap

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/gconf"
)

// Initializer stores the "conf"."aswap" configuration from genesis.
// Without one, the registry runs with DefaultConfiguration and its
// configuration cannot be updated later.
type Initializer struct{}

var _ htlc.Initializer = Initializer{}

func (Initializer) FromGenesis(opts htlc.Options, db htlc.KVStore) error {
	err := gconf.InitConfig(db, opts, configPkg, &Configuration{})
	if err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "init config")
	}
	return nil
}
