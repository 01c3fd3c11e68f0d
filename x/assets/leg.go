package assets

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc/errors"
)

// Leg is one asset movement of a swap.
type Leg struct {
	// Registry is the name of the asset registry the leg is settled with.
	Registry string `protobuf:"bytes,1,opt,name=registry,proto3" json:"registry,omitempty"`
	// AssetID identifies the asset within the registry: a token symbol, a
	// token id or a multi-token class.
	AssetID string `protobuf:"bytes,2,opt,name=asset_id,json=assetId,proto3" json:"asset_id,omitempty"`
	Amount  uint64 `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
}

func (m *Leg) Reset()      { *m = Leg{} }
func (*Leg) ProtoMessage() {}

func (m *Leg) String() string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%d %s@%s", m.Amount, m.AssetID, m.Registry)
}

var _ proto.Message = (*Leg)(nil)

// Validate performs stateless checks of the leg.
func (m *Leg) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrValidation, "nil leg")
	}
	if m.Registry == "" {
		return errors.Wrap(errors.ErrValidation, "registry is required")
	}
	if m.Amount == 0 {
		return errors.Wrapf(errors.ErrValidation, "leg %s: amount must be positive", m)
	}
	return nil
}

// ValidateLegs validates a non-empty list of at most max legs. A zero max
// disables the length check.
func ValidateLegs(legs []*Leg, max int) error {
	if len(legs) == 0 {
		return errors.Wrap(errors.ErrValidation, "no legs")
	}
	if max > 0 && len(legs) > max {
		return errors.Wrapf(errors.ErrValidation, "%d legs exceed the limit of %d", len(legs), max)
	}
	for i, l := range legs {
		if err := l.Validate(); err != nil {
			return errors.Wrapf(err, "leg %d", i)
		}
	}
	return nil
}

// ZipLegs builds legs settled with a single registry out of parallel
// asset and amount lists. Lists of different length are rejected.
func ZipLegs(registry string, assetIDs []string, amounts []uint64) ([]*Leg, error) {
	if len(assetIDs) != len(amounts) {
		return nil, errors.Wrapf(errors.ErrValidation, "%d assets but %d amounts", len(assetIDs), len(amounts))
	}
	legs := make([]*Leg, len(assetIDs))
	for i := range assetIDs {
		legs[i] = &Leg{Registry: registry, AssetID: assetIDs[i], Amount: amounts[i]}
	}
	return legs, nil
}
