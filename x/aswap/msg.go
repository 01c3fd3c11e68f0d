package aswap

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/x/assets"
	"github.com/iov-one/htlc/x/hashlock"
)

const (
	pathInitiate            = "aswap/initiate"
	pathComplete            = "aswap/complete"
	pathRefund              = "aswap/refund"
	pathUpdateConfiguration = "aswap/update_configuration"
)

var (
	_ htlc.Msg = (*InitiateMsg)(nil)
	_ htlc.Msg = (*CompleteMsg)(nil)
	_ htlc.Msg = (*RefundMsg)(nil)
	_ htlc.Msg = (*UpdateConfigurationMsg)(nil)
)

// InitiateMsg creates a swap and escrows the initiator legs.
type InitiateMsg struct {
	Metadata    *Metadata     `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Initiator   htlc.Address  `protobuf:"bytes,2,opt,name=initiator,proto3" json:"initiator,omitempty"`
	Participant htlc.Address  `protobuf:"bytes,3,opt,name=participant,proto3" json:"participant,omitempty"`
	LegsIn      []*assets.Leg `protobuf:"bytes,4,rep,name=legs_in,json=legsIn,proto3" json:"legs_in,omitempty"`
	LegsOut     []*assets.Leg `protobuf:"bytes,5,rep,name=legs_out,json=legsOut,proto3" json:"legs_out,omitempty"`
	SecretHash  []byte        `protobuf:"bytes,6,opt,name=secret_hash,json=secretHash,proto3" json:"secret_hash,omitempty"`
	// TimeLockDuration is in seconds.
	TimeLockDuration int64        `protobuf:"varint,7,opt,name=time_lock_duration,json=timeLockDuration,proto3" json:"time_lock_duration,omitempty"`
	Operator         htlc.Address `protobuf:"bytes,8,opt,name=operator,proto3" json:"operator,omitempty"`
}

func (m *InitiateMsg) Reset()         { *m = InitiateMsg{} }
func (m *InitiateMsg) String() string { return proto.CompactTextString(m) }
func (*InitiateMsg) ProtoMessage()    {}
func (InitiateMsg) Path() string      { return pathInitiate }

// Validate performs the stateless checks. Leg counts are bounded by the
// configuration, checked by the registry.
func (m *InitiateMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Initiator.Validate(); err != nil {
		return errors.Wrap(err, "initiator")
	}
	if err := m.Participant.Validate(); err != nil {
		return errors.Wrap(err, "participant")
	}
	if m.Initiator.Equals(m.Participant) {
		return errors.Wrap(errors.ErrValidation, "initiator and participant must differ")
	}
	if len(m.Operator) != 0 {
		if err := m.Operator.Validate(); err != nil {
			return errors.Wrap(err, "operator")
		}
	}
	if err := assets.ValidateLegs(m.LegsIn, 0); err != nil {
		return errors.Wrap(err, "legs in")
	}
	if err := assets.ValidateLegs(m.LegsOut, 0); err != nil {
		return errors.Wrap(err, "legs out")
	}
	if err := hashlock.ValidateHash(m.SecretHash); err != nil {
		return err
	}
	if m.TimeLockDuration <= 0 {
		return errors.Wrap(errors.ErrValidation, "time lock duration must be positive")
	}
	return nil
}

// CompleteMsg reveals the secret of a swap.
type CompleteMsg struct {
	Metadata *Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	SwapID   []byte    `protobuf:"bytes,2,opt,name=swap_id,json=swapId,proto3" json:"swap_id,omitempty"`
	Secret   []byte    `protobuf:"bytes,3,opt,name=secret,proto3" json:"secret,omitempty"`
}

func (m *CompleteMsg) Reset()         { *m = CompleteMsg{} }
func (m *CompleteMsg) String() string { return proto.CompactTextString(m) }
func (*CompleteMsg) ProtoMessage()    {}
func (CompleteMsg) Path() string      { return pathComplete }

func (m *CompleteMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validateSwapID(m.SwapID); err != nil {
		return err
	}
	return hashlock.ValidateSecret(m.Secret)
}

// RefundMsg returns the escrowed legs of an expired swap.
type RefundMsg struct {
	Metadata *Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	SwapID   []byte    `protobuf:"bytes,2,opt,name=swap_id,json=swapId,proto3" json:"swap_id,omitempty"`
}

func (m *RefundMsg) Reset()         { *m = RefundMsg{} }
func (m *RefundMsg) String() string { return proto.CompactTextString(m) }
func (*RefundMsg) ProtoMessage()    {}
func (RefundMsg) Path() string      { return pathRefund }

func (m *RefundMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return validateSwapID(m.SwapID)
}

// UpdateConfigurationMsg patches the registry configuration. Only
// non-zero fields of the patch are applied.
type UpdateConfigurationMsg struct {
	Metadata *Metadata      `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Patch    *Configuration `protobuf:"bytes,2,opt,name=patch,proto3" json:"patch,omitempty"`
}

func (m *UpdateConfigurationMsg) Reset()         { *m = UpdateConfigurationMsg{} }
func (m *UpdateConfigurationMsg) String() string { return proto.CompactTextString(m) }
func (*UpdateConfigurationMsg) ProtoMessage()    {}
func (UpdateConfigurationMsg) Path() string      { return pathUpdateConfiguration }

func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Wrap(errors.ErrValidation, "patch required")
	}
	return nil
}

func validateSwapID(id []byte) error {
	if len(id) != sha256Size {
		return errors.Wrapf(errors.ErrValidation, "swap id must be %d bytes", sha256Size)
	}
	return nil
}
