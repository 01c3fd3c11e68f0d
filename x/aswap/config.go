package aswap

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/gconf"
)

const configPkg = "aswap"

// Compliance selects whether swap parties must be compliance verified.
type Compliance int32

const (
	ComplianceOff      Compliance = 1
	ComplianceRequired Compliance = 2
)

func (c Compliance) String() string {
	switch c {
	case ComplianceOff:
		return "off"
	case ComplianceRequired:
		return "required"
	default:
		return fmt.Sprintf("Compliance(%d)", int32(c))
	}
}

// Completion selects the temporal policy applied to Complete.
type Completion int32

const (
	// CompleteBeforeDeadline accepts a secret only while now < deadline.
	CompleteBeforeDeadline Completion = 1
	// CompleteUntilRefunded accepts a secret until the swap was refunded,
	// even after the deadline.
	CompleteUntilRefunded Completion = 2
)

func (c Completion) String() string {
	switch c {
	case CompleteBeforeDeadline:
		return "before_deadline"
	case CompleteUntilRefunded:
		return "until_refunded"
	default:
		return fmt.Sprintf("Completion(%d)", int32(c))
	}
}

// Configuration of the swap registry. Policies are enumerations rather
// than booleans so that a configuration patch can switch them in both
// directions.
type Configuration struct {
	Owner      htlc.Address `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	Compliance Compliance   `protobuf:"varint,2,opt,name=compliance,proto3" json:"compliance,omitempty"`
	Completion Completion   `protobuf:"varint,3,opt,name=completion,proto3" json:"completion,omitempty"`
	// MaxLegs limits the number of legs on each side of a swap.
	MaxLegs int32 `protobuf:"varint,4,opt,name=max_legs,json=maxLegs,proto3" json:"max_legs,omitempty"`
	// MinTimeLock and MaxTimeLock bound the time lock duration, in
	// seconds.
	MinTimeLock int64 `protobuf:"varint,5,opt,name=min_time_lock,json=minTimeLock,proto3" json:"min_time_lock,omitempty"`
	MaxTimeLock int64 `protobuf:"varint,6,opt,name=max_time_lock,json=maxTimeLock,proto3" json:"max_time_lock,omitempty"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

func (m *Configuration) Validate() error {
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return m.validatePolicy()
}

func (m *Configuration) validatePolicy() error {
	switch m.Compliance {
	case ComplianceOff, ComplianceRequired:
	default:
		return errors.Wrapf(errors.ErrValidation, "compliance %s", m.Compliance)
	}
	switch m.Completion {
	case CompleteBeforeDeadline, CompleteUntilRefunded:
	default:
		return errors.Wrapf(errors.ErrValidation, "completion %s", m.Completion)
	}
	if m.MaxLegs <= 0 {
		return errors.Wrap(errors.ErrValidation, "max legs must be positive")
	}
	if m.MinTimeLock <= 0 {
		return errors.Wrap(errors.ErrValidation, "min time lock must be positive")
	}
	if m.MaxTimeLock < m.MinTimeLock {
		return errors.Wrap(errors.ErrValidation, "max time lock lower than min time lock")
	}
	if m.MaxTimeLock > TimeLockLimit {
		return errors.Wrapf(errors.ErrValidation, "max time lock cannot exceed %d seconds", int64(TimeLockLimit))
	}
	return nil
}

func (m *Configuration) GetOwner() htlc.Address {
	return m.Owner
}

// TimeLockLimit is the longest time lock any configuration may allow, ten
// years in seconds.
const TimeLockLimit = 10 * 365 * 24 * 60 * 60

// DefaultConfiguration is used when no configuration was stored. It has
// no owner so it cannot be updated.
func DefaultConfiguration() Configuration {
	return Configuration{
		Compliance:  ComplianceOff,
		Completion:  CompleteBeforeDeadline,
		MaxLegs:     16,
		MinTimeLock: 1,
		MaxTimeLock: 365 * 24 * 60 * 60,
	}
}

// loadConfiguration returns the stored configuration or the default one.
func loadConfiguration(db htlc.ReadOnlyKVStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, configPkg, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return conf, errors.Wrap(err, "load configuration")
	}
}
