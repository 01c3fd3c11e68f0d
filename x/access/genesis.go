package access

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/gconf"
)

// Initializer loads the access configuration and initial role
// assignments from genesis.
type Initializer struct {
	Gate  Gate
	Roles RoleStore
}

var _ htlc.Initializer = Initializer{}

// FromGenesis reads the "conf"."access" configuration and the "access"
// section:
//
//	"access": {
//	  "paused": false,
//	  "principals": [{"address": "...", "roles": ["operator"]}]
//	}
func (i Initializer) FromGenesis(opts htlc.Options, db htlc.KVStore) error {
	if err := gconf.InitConfig(db, opts, "access", &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}
	var state struct {
		Paused     bool `json:"paused"`
		Principals []struct {
			Address htlc.Address `json:"address"`
			Roles   []string     `json:"roles"`
		} `json:"principals"`
	}
	if err := opts.ReadOptions("access", &state); err != nil {
		return errors.Wrapf(errors.ErrEncoding, "access genesis: %s", err)
	}
	for _, p := range state.Principals {
		if err := p.Address.Validate(); err != nil {
			return errors.Wrap(err, "principal address")
		}
		for _, r := range p.Roles {
			if err := i.Roles.Grant(db, p.Address, Role(r)); err != nil {
				return errors.Wrapf(err, "grant %q to %s", r, p.Address)
			}
		}
	}
	return i.Gate.SetPaused(db, state.Paused)
}
