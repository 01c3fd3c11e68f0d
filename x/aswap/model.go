package aswap

import (
	"crypto/sha256"
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/x/assets"
	"github.com/iov-one/htlc/x/hashlock"
)

// currentSchema is the version of the Swap model written by this package.
const currentSchema = 1

// Status of a swap.
type Status int32

const (
	StatusInitiated Status = 1
	StatusCompleted Status = 2
	StatusRefunded  Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusInitiated:
		return "initiated"
	case StatusCompleted:
		return "completed"
	case StatusRefunded:
		return "refunded"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Metadata carries the schema version of a stored entity.
type Metadata struct {
	Schema int32 `protobuf:"varint,1,opt,name=schema,proto3" json:"schema,omitempty"`
}

func (m *Metadata) Reset()         { *m = Metadata{} }
func (m *Metadata) String() string { return proto.CompactTextString(m) }
func (*Metadata) ProtoMessage()    {}

// Validate returns an error unless a known schema version is declared.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrValidation, "missing metadata")
	}
	if m.Schema < 1 || m.Schema > currentSchema {
		return errors.Wrapf(errors.ErrValidation, "unsupported schema %d", m.Schema)
	}
	return nil
}

// Swap is a single exchange between an initiator and a participant.
type Swap struct {
	Metadata         *Metadata     `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Initiator        htlc.Address  `protobuf:"bytes,2,opt,name=initiator,proto3" json:"initiator,omitempty"`
	Participant      htlc.Address  `protobuf:"bytes,3,opt,name=participant,proto3" json:"participant,omitempty"`
	LegsIn           []*assets.Leg `protobuf:"bytes,4,rep,name=legs_in,json=legsIn,proto3" json:"legs_in,omitempty"`
	LegsOut          []*assets.Leg `protobuf:"bytes,5,rep,name=legs_out,json=legsOut,proto3" json:"legs_out,omitempty"`
	SecretHash       []byte        `protobuf:"bytes,6,opt,name=secret_hash,json=secretHash,proto3" json:"secret_hash,omitempty"`
	RevealedSecret   []byte        `protobuf:"bytes,7,opt,name=revealed_secret,json=revealedSecret,proto3" json:"revealed_secret,omitempty"`
	Operator         htlc.Address  `protobuf:"bytes,8,opt,name=operator,proto3" json:"operator,omitempty"`
	StartTime        htlc.UnixTime `protobuf:"varint,9,opt,name=start_time,json=startTime,proto3" json:"start_time,omitempty"`
	TimeLockDuration int64         `protobuf:"varint,10,opt,name=time_lock_duration,json=timeLockDuration,proto3" json:"time_lock_duration,omitempty"`
	Status           Status        `protobuf:"varint,11,opt,name=status,proto3" json:"status,omitempty"`
	CompletedAt      htlc.UnixTime `protobuf:"varint,12,opt,name=completed_at,json=completedAt,proto3" json:"completed_at,omitempty"`
	RefundedAt       htlc.UnixTime `protobuf:"varint,13,opt,name=refunded_at,json=refundedAt,proto3" json:"refunded_at,omitempty"`
}

func (m *Swap) Reset()         { *m = Swap{} }
func (m *Swap) String() string { return proto.CompactTextString(m) }
func (*Swap) ProtoMessage()    {}

// Deadline returns the moment from which the swap can be refunded.
func (m *Swap) Deadline() htlc.UnixTime {
	return m.StartTime.AddSeconds(m.TimeLockDuration)
}

// checkDeadline fails when start plus a positive duration does not fit in
// a UnixTime. A wrapped deadline would lie before the start and make the
// swap refundable at once.
func checkDeadline(start htlc.UnixTime, duration int64) error {
	if start.AddSeconds(duration) <= start {
		return errors.Wrapf(errors.ErrOverflow, "deadline of %d seconds after %d", duration, int64(start))
	}
	return nil
}

// Validate ensures the swap is consistent with its status.
func (m *Swap) Validate() error {
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
	if err := m.StartTime.Validate(); err != nil {
		return errors.Wrap(err, "start time")
	}
	if err := checkDeadline(m.StartTime, m.TimeLockDuration); err != nil {
		return err
	}

	switch m.Status {
	case StatusInitiated:
		if len(m.RevealedSecret) != 0 || !m.CompletedAt.IsZero() || !m.RefundedAt.IsZero() {
			return errors.Wrap(errors.ErrValidation, "initiated swap carries a final state")
		}
	case StatusCompleted:
		if len(m.RevealedSecret) == 0 || m.CompletedAt.IsZero() || !m.RefundedAt.IsZero() {
			return errors.Wrap(errors.ErrValidation, "completed swap must carry the secret and completion time only")
		}
	case StatusRefunded:
		if len(m.RevealedSecret) != 0 || m.RefundedAt.IsZero() || !m.CompletedAt.IsZero() {
			return errors.Wrap(errors.ErrValidation, "refunded swap must carry the refund time only")
		}
	default:
		return errors.Wrapf(errors.ErrValidation, "invalid status %s", m.Status)
	}
	return nil
}

const sha256Size = sha256.Size

// SwapID derives the identifier of a swap. Addresses have a fixed length
// so the concatenation is unambiguous.
func SwapID(initiator, participant htlc.Address, secretHash []byte) []byte {
	h := sha256.New()
	h.Write(initiator)
	h.Write(participant)
	h.Write(secretHash)
	return h.Sum(nil)
}
