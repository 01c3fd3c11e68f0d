package audit

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/orm"
	"github.com/iov-one/htlc/x/assets"
)

// Event is a swap transition that can be published.
type Event interface {
	orm.Model
	// Kind names the transition.
	Kind() string
	// GetSwapID returns the swap the transition applies to.
	GetSwapID() []byte
}

const (
	KindInitiated = "swap_initiated"
	KindCompleted = "swap_completed"
	KindRefunded  = "swap_refunded"
)

// SwapInitiated is published when a swap is created and its legs are
// escrowed.
type SwapInitiated struct {
	SwapID           []byte        `protobuf:"bytes,1,opt,name=swap_id,json=swapId,proto3" json:"swap_id,omitempty"`
	Initiator        htlc.Address  `protobuf:"bytes,2,opt,name=initiator,proto3" json:"initiator,omitempty"`
	Participant      htlc.Address  `protobuf:"bytes,3,opt,name=participant,proto3" json:"participant,omitempty"`
	LegsIn           []*assets.Leg `protobuf:"bytes,4,rep,name=legs_in,json=legsIn,proto3" json:"legs_in,omitempty"`
	LegsOut          []*assets.Leg `protobuf:"bytes,5,rep,name=legs_out,json=legsOut,proto3" json:"legs_out,omitempty"`
	SecretHash       []byte        `protobuf:"bytes,6,opt,name=secret_hash,json=secretHash,proto3" json:"secret_hash,omitempty"`
	StartTime        htlc.UnixTime `protobuf:"varint,7,opt,name=start_time,json=startTime,proto3" json:"start_time,omitempty"`
	TimeLockDuration int64         `protobuf:"varint,8,opt,name=time_lock_duration,json=timeLockDuration,proto3" json:"time_lock_duration,omitempty"`
	Operator         htlc.Address  `protobuf:"bytes,9,opt,name=operator,proto3" json:"operator,omitempty"`
}

func (m *SwapInitiated) Reset()         { *m = SwapInitiated{} }
func (m *SwapInitiated) String() string { return proto.CompactTextString(m) }
func (*SwapInitiated) ProtoMessage()    {}
func (*SwapInitiated) Kind() string     { return KindInitiated }
func (m *SwapInitiated) GetSwapID() []byte {
	return m.SwapID
}

func (m *SwapInitiated) Validate() error {
	if len(m.SwapID) == 0 {
		return errors.Wrap(errors.ErrValidation, "swap id")
	}
	if err := m.Initiator.Validate(); err != nil {
		return errors.Wrap(err, "initiator")
	}
	return errors.Wrap(m.Participant.Validate(), "participant")
}

// SwapCompleted is published when the secret was revealed and both sides
// received their legs.
type SwapCompleted struct {
	SwapID   []byte       `protobuf:"bytes,1,opt,name=swap_id,json=swapId,proto3" json:"swap_id,omitempty"`
	Revealer htlc.Address `protobuf:"bytes,2,opt,name=revealer,proto3" json:"revealer,omitempty"`
	Secret   []byte       `protobuf:"bytes,3,opt,name=secret,proto3" json:"secret,omitempty"`
	Operator htlc.Address `protobuf:"bytes,4,opt,name=operator,proto3" json:"operator,omitempty"`
}

func (m *SwapCompleted) Reset()         { *m = SwapCompleted{} }
func (m *SwapCompleted) String() string { return proto.CompactTextString(m) }
func (*SwapCompleted) ProtoMessage()    {}
func (*SwapCompleted) Kind() string     { return KindCompleted }
func (m *SwapCompleted) GetSwapID() []byte {
	return m.SwapID
}

func (m *SwapCompleted) Validate() error {
	if len(m.SwapID) == 0 {
		return errors.Wrap(errors.ErrValidation, "swap id")
	}
	if len(m.Secret) == 0 {
		return errors.Wrap(errors.ErrValidation, "secret")
	}
	return errors.Wrap(m.Revealer.Validate(), "revealer")
}

// SwapRefunded is published when escrowed legs returned to the initiator.
type SwapRefunded struct {
	SwapID    []byte       `protobuf:"bytes,1,opt,name=swap_id,json=swapId,proto3" json:"swap_id,omitempty"`
	Initiator htlc.Address `protobuf:"bytes,2,opt,name=initiator,proto3" json:"initiator,omitempty"`
	Operator  htlc.Address `protobuf:"bytes,3,opt,name=operator,proto3" json:"operator,omitempty"`
}

func (m *SwapRefunded) Reset()         { *m = SwapRefunded{} }
func (m *SwapRefunded) String() string { return proto.CompactTextString(m) }
func (*SwapRefunded) ProtoMessage()    {}
func (*SwapRefunded) Kind() string     { return KindRefunded }
func (m *SwapRefunded) GetSwapID() []byte {
	return m.SwapID
}

func (m *SwapRefunded) Validate() error {
	if len(m.SwapID) == 0 {
		return errors.Wrap(errors.ErrValidation, "swap id")
	}
	return errors.Wrap(m.Initiator.Validate(), "initiator")
}
