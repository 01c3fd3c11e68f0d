package assets

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// Capability describes what kind of assets a registry manages.
type Capability int32

const (
	// Fungible registries manage a single divisible token.
	Fungible Capability = 1
	// NonFungible registries manage unique tokens. Every leg moves exactly
	// one token.
	NonFungible Capability = 2
	// MultiAsset registries manage many token classes, each divisible.
	MultiAsset Capability = 3
)

func (c Capability) String() string {
	switch c {
	case Fungible:
		return "fungible"
	case NonFungible:
		return "non-fungible"
	case MultiAsset:
		return "multi-asset"
	default:
		return fmt.Sprintf("Capability(%d)", int32(c))
	}
}

// Registry is an asset ledger that legs are settled with.
type Registry interface {
	// Capability declares the kind of assets managed.
	Capability() Capability

	// ValidateAsset returns an error if assetID cannot be managed by this
	// registry.
	ValidateAsset(assetID string) error

	// Transfer moves amount of given asset between two accounts. It may
	// leave partial writes in db when failing, callers are expected to
	// discard them.
	Transfer(ctx context.Context, db htlc.CacheableKVStore, from, to htlc.Address, assetID string, amount uint64) error
}

// Adapter locks legs into escrow and releases them from it.
type Adapter interface {
	// ValidateLeg checks that a leg can be settled, without moving
	// anything.
	ValidateLeg(leg *Leg) error

	LockFrom(ctx context.Context, db htlc.CacheableKVStore, owner htlc.Address, leg *Leg) error
	ReleaseTo(ctx context.Context, db htlc.CacheableKVStore, recipient htlc.Address, leg *Leg) error

	// LockFromBatch moves all legs from owner into escrow. Either all legs
	// are moved or none and ErrTransfer is returned.
	LockFromBatch(ctx context.Context, db htlc.CacheableKVStore, owner htlc.Address, legs []*Leg) error

	// ReleaseToBatch moves all legs from escrow to the recipient. Either
	// all legs are moved or none and ErrTransfer is returned.
	ReleaseToBatch(ctx context.Context, db htlc.CacheableKVStore, recipient htlc.Address, legs []*Leg) error
}

var isRegistryName = regexp.MustCompile(`^[a-zA-Z0-9_\-]{2,32}$`).MatchString

// CustodyCondition is the condition that owns the escrow account. No key
// can sign for it, only the Router moves assets out of it.
var CustodyCondition = htlc.NewCondition("assets", "escrow", []byte("custody"))

// Router implements Adapter by dispatching legs to named registries.
type Router struct {
	registries map[string]Registry
	custody    htlc.Address
}

var _ Adapter = (*Router)(nil)

// NewRouter returns a router holding escrowed legs under the
// CustodyCondition address.
func NewRouter() *Router {
	return &Router{
		registries: make(map[string]Registry),
		custody:    CustodyCondition.Address(),
	}
}

// Register binds a registry to a name used by legs. Registering the same
// name twice panics.
func (r *Router) Register(name string, reg Registry) {
	if !isRegistryName(name) {
		panic(fmt.Sprintf("invalid registry name %q", name))
	}
	if _, ok := r.registries[name]; ok {
		panic(fmt.Sprintf("registry %q already registered", name))
	}
	r.registries[name] = reg
}

// Registry returns the registry registered under given name or nil.
func (r *Router) Registry(name string) Registry {
	return r.registries[name]
}

// Names returns all registry names in alphabetical order.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.registries))
	for n := range r.registries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Custody returns the address holding escrowed legs.
func (r *Router) Custody() htlc.Address {
	return r.custody
}

// ValidateLeg ensures the leg is well formed, its registry is known and
// the leg agrees with the registry capability.
func (r *Router) ValidateLeg(leg *Leg) error {
	if err := leg.Validate(); err != nil {
		return err
	}
	reg, ok := r.registries[leg.Registry]
	if !ok {
		return errors.Wrapf(errors.ErrValidation, "unknown registry %q", leg.Registry)
	}
	switch reg.Capability() {
	case NonFungible:
		if leg.Amount != 1 {
			return errors.Wrapf(errors.ErrValidation, "non-fungible leg %s must move exactly one token", leg)
		}
	case MultiAsset, Fungible:
	default:
		return errors.Wrapf(errors.ErrHuman, "registry %q declares %s", leg.Registry, reg.Capability())
	}
	if err := reg.ValidateAsset(leg.AssetID); err != nil {
		return errors.Wrapf(err, "leg %s", leg)
	}
	return nil
}

func (r *Router) LockFrom(ctx context.Context, db htlc.CacheableKVStore, owner htlc.Address, leg *Leg) error {
	return r.LockFromBatch(ctx, db, owner, []*Leg{leg})
}

func (r *Router) ReleaseTo(ctx context.Context, db htlc.CacheableKVStore, recipient htlc.Address, leg *Leg) error {
	return r.ReleaseToBatch(ctx, db, recipient, []*Leg{leg})
}

func (r *Router) LockFromBatch(ctx context.Context, db htlc.CacheableKVStore, owner htlc.Address, legs []*Leg) error {
	return r.batch(ctx, db, owner, r.custody, legs)
}

func (r *Router) ReleaseToBatch(ctx context.Context, db htlc.CacheableKVStore, recipient htlc.Address, legs []*Leg) error {
	return r.batch(ctx, db, r.custody, recipient, legs)
}

// batch applies all legs on a cache-wrap of db. The wrap is written only
// when every leg succeeded.
func (r *Router) batch(ctx context.Context, db htlc.CacheableKVStore, from, to htlc.Address, legs []*Leg) error {
	if len(legs) == 0 {
		return errors.Wrap(errors.ErrTransfer, "empty batch")
	}
	cache := db.CacheWrap()
	for k, leg := range legs {
		if err := r.move(ctx, cache, from, to, leg); err != nil {
			cache.Discard()
			return errors.WithKind(errors.ErrTransfer, err, fmt.Sprintf("leg %d of %d (%s)", k+1, len(legs), leg))
		}
	}
	if err := cache.Write(); err != nil {
		return errors.WithKind(errors.ErrTransfer, err, "write batch")
	}
	return nil
}

func (r *Router) move(ctx context.Context, db htlc.CacheableKVStore, from, to htlc.Address, leg *Leg) error {
	if err := r.ValidateLeg(leg); err != nil {
		return err
	}
	return r.registries[leg.Registry].Transfer(ctx, db, from, to, leg.AssetID, leg.Amount)
}
