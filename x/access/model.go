package access

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Role is a capability that can be granted to a principal.
type Role string

const (
	// RoleOperator may complete or refund swaps on behalf of their
	// parties when designated by the initiator.
	RoleOperator Role = "operator"
	// RoleCompliance marks a principal cleared to take part in swaps
	// while compliance mode is on.
	RoleCompliance Role = "compliance"
)

// Validate returns an error for unknown roles.
func (r Role) Validate() error {
	switch r {
	case RoleOperator, RoleCompliance:
		return nil
	default:
		return errors.Wrapf(errors.ErrValidation, "unknown role %q", string(r))
	}
}

// Principal lists the roles granted to an address.
type Principal struct {
	Address htlc.Address `protobuf:"bytes,1,opt,name=address,proto3" json:"address,omitempty"`
	Roles   []string     `protobuf:"bytes,2,rep,name=roles,proto3" json:"roles,omitempty"`
}

func (m *Principal) Reset()         { *m = Principal{} }
func (m *Principal) String() string { return proto.CompactTextString(m) }
func (*Principal) ProtoMessage()    {}

func (m *Principal) Validate() error {
	if err := m.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	for _, r := range m.Roles {
		if err := Role(r).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether the role was granted.
func (m *Principal) Has(r Role) bool {
	for _, have := range m.Roles {
		if have == string(r) {
			return true
		}
	}
	return false
}

// Configuration of the access package.
type Configuration struct {
	// Admin may pause the gate and grant or revoke roles. Admin is also
	// the owner allowed to update this configuration.
	Admin htlc.Address `protobuf:"bytes,1,opt,name=admin,proto3" json:"admin,omitempty"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

func (m *Configuration) Validate() error {
	return errors.Wrap(m.Admin.Validate(), "admin")
}

// GetOwner returns the address allowed to update the configuration.
func (m *Configuration) GetOwner() htlc.Address {
	return m.Admin
}
