package access

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

const (
	pathPause               = "access/pause"
	pathGrantRole           = "access/grant_role"
	pathRevokeRole          = "access/revoke_role"
	pathUpdateConfiguration = "access/update_configuration"
)

// PauseMsg sets the global pause flag.
type PauseMsg struct {
	Paused bool `protobuf:"varint,1,opt,name=paused,proto3" json:"paused,omitempty"`
}

func (m *PauseMsg) Reset()         { *m = PauseMsg{} }
func (m *PauseMsg) String() string { return proto.CompactTextString(m) }
func (*PauseMsg) ProtoMessage()    {}
func (PauseMsg) Path() string      { return pathPause }
func (PauseMsg) Validate() error   { return nil }

// GrantRoleMsg grants a role to a principal.
type GrantRoleMsg struct {
	Principal htlc.Address `protobuf:"bytes,1,opt,name=principal,proto3" json:"principal,omitempty"`
	Role      string       `protobuf:"bytes,2,opt,name=role,proto3" json:"role,omitempty"`
}

func (m *GrantRoleMsg) Reset()         { *m = GrantRoleMsg{} }
func (m *GrantRoleMsg) String() string { return proto.CompactTextString(m) }
func (*GrantRoleMsg) ProtoMessage()    {}
func (GrantRoleMsg) Path() string      { return pathGrantRole }

func (m GrantRoleMsg) Validate() error {
	if err := m.Principal.Validate(); err != nil {
		return errors.Wrap(err, "principal")
	}
	return Role(m.Role).Validate()
}

// RevokeRoleMsg removes a role from a principal.
type RevokeRoleMsg struct {
	Principal htlc.Address `protobuf:"bytes,1,opt,name=principal,proto3" json:"principal,omitempty"`
	Role      string       `protobuf:"bytes,2,opt,name=role,proto3" json:"role,omitempty"`
}

func (m *RevokeRoleMsg) Reset()         { *m = RevokeRoleMsg{} }
func (m *RevokeRoleMsg) String() string { return proto.CompactTextString(m) }
func (*RevokeRoleMsg) ProtoMessage()    {}
func (RevokeRoleMsg) Path() string      { return pathRevokeRole }

func (m RevokeRoleMsg) Validate() error {
	if err := m.Principal.Validate(); err != nil {
		return errors.Wrap(err, "principal")
	}
	return Role(m.Role).Validate()
}

// UpdateConfigurationMsg patches the access configuration. Only non-zero
// fields of the patch are applied.
type UpdateConfigurationMsg struct {
	Patch *Configuration `protobuf:"bytes,1,opt,name=patch,proto3" json:"patch,omitempty"`
}

func (m *UpdateConfigurationMsg) Reset()         { *m = UpdateConfigurationMsg{} }
func (m *UpdateConfigurationMsg) String() string { return proto.CompactTextString(m) }
func (*UpdateConfigurationMsg) ProtoMessage()    {}
func (UpdateConfigurationMsg) Path() string      { return pathUpdateConfiguration }

func (m UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrValidation, "patch is required")
	}
	if len(m.Patch.Admin) != 0 {
		return errors.Wrap(m.Patch.Admin.Validate(), "admin")
	}
	return nil
}
