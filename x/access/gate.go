package access

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Policy answers authorization questions about principals. It is
// implemented by RoleStore and can be replaced by an adapter to an
// external credential service.
type Policy interface {
	IsOperator(db htlc.ReadOnlyKVStore, principal htlc.Address) (bool, error)
	IsComplianceVerified(db htlc.ReadOnlyKVStore, principal htlc.Address) (bool, error)
}

var pausedKey = []byte("_access:paused")

// Gate combines a Policy with the global pause flag.
type Gate struct {
	policy Policy
}

// NewGate returns a gate delegating authorization to given policy.
func NewGate(p Policy) Gate {
	return Gate{policy: p}
}

func (g Gate) IsOperator(db htlc.ReadOnlyKVStore, principal htlc.Address) (bool, error) {
	if len(principal) == 0 {
		return false, nil
	}
	ok, err := g.policy.IsOperator(db, principal)
	if err != nil {
		return false, errors.Wrap(err, "operator policy")
	}
	return ok, nil
}

func (g Gate) IsComplianceVerified(db htlc.ReadOnlyKVStore, principal htlc.Address) (bool, error) {
	if len(principal) == 0 {
		return false, nil
	}
	ok, err := g.policy.IsComplianceVerified(db, principal)
	if err != nil {
		return false, errors.Wrap(err, "compliance policy")
	}
	return ok, nil
}

// IsPaused returns the state of the global pause flag.
func (g Gate) IsPaused(db htlc.ReadOnlyKVStore) (bool, error) {
	return db.Has(pausedKey)
}

// RequireNotPaused returns ErrPaused while the gate is paused.
func (g Gate) RequireNotPaused(db htlc.ReadOnlyKVStore) error {
	paused, err := g.IsPaused(db)
	if err != nil {
		return err
	}
	if paused {
		return errors.Wrap(errors.ErrPaused, "swap registry is paused")
	}
	return nil
}

// SetPaused changes the global pause flag.
func (g Gate) SetPaused(db htlc.KVStore, paused bool) error {
	if paused {
		return db.Set(pausedKey, []byte{1})
	}
	return db.Delete(pausedKey)
}
