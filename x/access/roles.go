package access

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/orm"
)

// RoleStore is a Policy backed by role assignments kept in the store.
type RoleStore struct {
	bucket orm.ModelBucket
}

var _ Policy = RoleStore{}

// NewRoleStore returns a store of principals, indexed by role.
func NewRoleStore() RoleStore {
	return RoleStore{
		bucket: orm.NewModelBucket("principal", orm.WithIndex("role", roleIndexer)),
	}
}

func roleIndexer(m orm.Model) ([][]byte, error) {
	p, ok := m.(*Principal)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	keys := make([][]byte, len(p.Roles))
	for i, r := range p.Roles {
		keys[i] = []byte(r)
	}
	return keys, nil
}

// Register exposes principals to queries under "/principals" and
// "/principals/role".
func (s RoleStore) Register(r htlc.QueryRegistry) {
	s.bucket.Register("principals", r)
}

// Get returns the principal with all its roles. A principal without roles
// is returned empty.
func (s RoleStore) Get(db htlc.ReadOnlyKVStore, addr htlc.Address) (*Principal, error) {
	var p Principal
	switch err := s.bucket.One(db, addr, &p); {
	case err == nil:
		return &p, nil
	case errors.ErrNotFound.Is(err):
		return &Principal{Address: addr}, nil
	default:
		return nil, err
	}
}

// Grant adds the role to the principal. Granting a role twice is a noop.
func (s RoleStore) Grant(db htlc.KVStore, addr htlc.Address, r Role) error {
	if err := r.Validate(); err != nil {
		return err
	}
	p, err := s.Get(db, addr)
	if err != nil {
		return err
	}
	if p.Has(r) {
		return nil
	}
	p.Roles = append(p.Roles, string(r))
	return s.bucket.Put(db, addr, p)
}

// Revoke removes the role from the principal. A principal left without
// roles is removed.
func (s RoleStore) Revoke(db htlc.KVStore, addr htlc.Address, r Role) error {
	if err := r.Validate(); err != nil {
		return err
	}
	p, err := s.Get(db, addr)
	if err != nil {
		return err
	}
	if !p.Has(r) {
		return errors.Wrapf(errors.ErrNotFound, "role %q not granted", string(r))
	}
	roles := p.Roles[:0]
	for _, have := range p.Roles {
		if have != string(r) {
			roles = append(roles, have)
		}
	}
	if len(roles) == 0 {
		return s.bucket.Delete(db, addr, &Principal{})
	}
	p.Roles = roles
	return s.bucket.Put(db, addr, p)
}

// WithRole returns the addresses of all principals holding given role.
func (s RoleStore) WithRole(db htlc.ReadOnlyKVStore, r Role) ([]htlc.Address, error) {
	keys, err := s.bucket.IndexKeys(db, "role", []byte(r))
	if err != nil {
		return nil, err
	}
	addrs := make([]htlc.Address, len(keys))
	for i, k := range keys {
		addrs[i] = htlc.Address(k)
	}
	return addrs, nil
}

func (s RoleStore) IsOperator(db htlc.ReadOnlyKVStore, principal htlc.Address) (bool, error) {
	return s.has(db, principal, RoleOperator)
}

func (s RoleStore) IsComplianceVerified(db htlc.ReadOnlyKVStore, principal htlc.Address) (bool, error) {
	return s.has(db, principal, RoleCompliance)
}

func (s RoleStore) has(db htlc.ReadOnlyKVStore, principal htlc.Address, r Role) (bool, error) {
	p, err := s.Get(db, principal)
	if err != nil {
		return false, err
	}
	return p.Has(r), nil
}
