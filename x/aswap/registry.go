package aswap

import (
	"context"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/orm"
	"github.com/iov-one/htlc/x"
	"github.com/iov-one/htlc/x/access"
	"github.com/iov-one/htlc/x/assets"
	"github.com/iov-one/htlc/x/audit"
	"github.com/iov-one/htlc/x/hashlock"
)

const bucketName = "swap"

// Registry owns swap records and drives their state machine.
type Registry struct {
	bucket     orm.ModelBucket
	commitment hashlock.Commitment
	assets     assets.Adapter
	gate       access.Gate
	clock      htlc.Clock
	feed       audit.Feed
	auth       x.Authenticator
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces the system clock. The clock is wrapped so that it
// never goes backwards.
func WithClock(c htlc.Clock) Option {
	return func(r *Registry) {
		r.clock = htlc.NewMonotonicClock(c)
	}
}

// WithCommitment selects the hash algorithm used to verify secrets.
func WithCommitment(c hashlock.Commitment) Option {
	return func(r *Registry) {
		r.commitment = c
	}
}

// WithFeed replaces the audit feed records are published to.
func WithFeed(f audit.Feed) Option {
	return func(r *Registry) {
		r.feed = f
	}
}

// NewRegistry returns a registry moving assets through adapter.
func NewRegistry(auth x.Authenticator, adapter assets.Adapter, gate access.Gate, opts ...Option) *Registry {
	r := &Registry{
		bucket: orm.NewModelBucket(bucketName,
			orm.WithIndex("initiator", initiatorIndexer),
			orm.WithIndex("participant", participantIndexer),
			orm.WithIndex("secret_hash", secretHashIndexer),
		),
		assets: adapter,
		gate:   gate,
		clock:  htlc.NewMonotonicClock(nil),
		feed:   audit.NewFeed(),
		auth:   auth,
	}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

func asSwap(m orm.Model) (*Swap, error) {
	s, ok := m.(*Swap)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return s, nil
}

func initiatorIndexer(m orm.Model) ([][]byte, error) {
	s, err := asSwap(m)
	if err != nil {
		return nil, err
	}
	return [][]byte{s.Initiator}, nil
}

func participantIndexer(m orm.Model) ([][]byte, error) {
	s, err := asSwap(m)
	if err != nil {
		return nil, err
	}
	return [][]byte{s.Participant}, nil
}

func secretHashIndexer(m orm.Model) ([][]byte, error) {
	s, err := asSwap(m)
	if err != nil {
		return nil, err
	}
	return [][]byte{s.SecretHash}, nil
}

// Register exposes swaps to queries under "/swaps" and one path per
// index.
func (r *Registry) Register(qr htlc.QueryRegistry) {
	r.bucket.Register("swaps", qr)
}

// Get returns the swap with given id or ErrNotFound.
func (r *Registry) Get(db htlc.ReadOnlyKVStore, id []byte) (*Swap, error) {
	var s Swap
	if err := r.bucket.One(db, id, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Registry) ByInitiator(db htlc.ReadOnlyKVStore, addr htlc.Address) ([]*Swap, error) {
	return r.byIndex(db, "initiator", addr)
}

func (r *Registry) ByParticipant(db htlc.ReadOnlyKVStore, addr htlc.Address) ([]*Swap, error) {
	return r.byIndex(db, "participant", addr)
}

func (r *Registry) BySecretHash(db htlc.ReadOnlyKVStore, hash []byte) ([]*Swap, error) {
	return r.byIndex(db, "secret_hash", hash)
}

func (r *Registry) byIndex(db htlc.ReadOnlyKVStore, index string, value []byte) ([]*Swap, error) {
	var swaps []*Swap
	if _, err := r.bucket.ByIndex(db, index, value, &swaps); err != nil {
		return nil, err
	}
	return swaps, nil
}

// now returns the current ledger time with seconds precision.
func (r *Registry) now() htlc.UnixTime {
	return htlc.AsUnixTime(r.clock.Now())
}

// Initiate creates a swap and escrows its legsIn. It returns the swap id.
func (r *Registry) Initiate(ctx context.Context, db htlc.CacheableKVStore, msg *InitiateMsg) ([]byte, error) {
	swap, err := r.checkInitiate(ctx, db, msg)
	if err != nil {
		htlc.GetLogger(ctx).Debug("initiate rejected", "err", err)
		return nil, err
	}
	id := SwapID(swap.Initiator, swap.Participant, swap.SecretHash)

	cache := db.CacheWrap()
	if err := r.initiate(ctx, cache, id, swap); err != nil {
		cache.Discard()
		htlc.GetLogger(ctx).Debug("initiate failed", "swap", id, "err", err)
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write")
	}
	htlc.GetLogger(ctx).Info("swap initiated",
		"swap", id,
		"initiator", swap.Initiator,
		"participant", swap.Participant,
		"deadline", swap.Deadline())
	return id, nil
}

func (r *Registry) initiate(ctx context.Context, db htlc.KVCacheWrap, id []byte, swap *Swap) error {
	if err := r.assets.LockFromBatch(ctx, db, swap.Initiator, swap.LegsIn); err != nil {
		return err
	}
	// Locking runs foreign registry code which may have created the same
	// swap meanwhile.
	if err := r.requireUnused(db, id); err != nil {
		return err
	}
	if err := r.bucket.Put(db, id, swap); err != nil {
		return errors.Wrap(err, "store swap")
	}
	_, err := r.feed.Publish(ctx, db, &audit.SwapInitiated{
		SwapID:           id,
		Initiator:        swap.Initiator,
		Participant:      swap.Participant,
		LegsIn:           swap.LegsIn,
		LegsOut:          swap.LegsOut,
		SecretHash:       swap.SecretHash,
		StartTime:        swap.StartTime,
		TimeLockDuration: swap.TimeLockDuration,
		Operator:         swap.Operator,
	})
	return err
}

func (r *Registry) requireUnused(db htlc.ReadOnlyKVStore, id []byte) error {
	switch err := r.bucket.Has(db, id); {
	case err == nil:
		return errors.Wrap(errors.ErrState, "swap already exists")
	case errors.ErrNotFound.Is(err):
		return nil
	default:
		return err
	}
}

// checkInitiate runs every precondition of Initiate without touching the
// store and returns the swap to be created.
func (r *Registry) checkInitiate(ctx context.Context, db htlc.ReadOnlyKVStore, msg *InitiateMsg) (*Swap, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	conf, err := loadConfiguration(db)
	if err != nil {
		return nil, err
	}
	if err := assets.ValidateLegs(msg.LegsIn, int(conf.MaxLegs)); err != nil {
		return nil, errors.Wrap(err, "legs in")
	}
	if err := assets.ValidateLegs(msg.LegsOut, int(conf.MaxLegs)); err != nil {
		return nil, errors.Wrap(err, "legs out")
	}
	if msg.TimeLockDuration < conf.MinTimeLock || msg.TimeLockDuration > conf.MaxTimeLock {
		return nil, errors.Wrapf(errors.ErrValidation,
			"time lock duration must be within [%d, %d]", conf.MinTimeLock, conf.MaxTimeLock)
	}
	if err := r.gate.RequireNotPaused(db); err != nil {
		return nil, err
	}
	if err := x.RequireSigner(ctx, r.auth, msg.Initiator, "initiator"); err != nil {
		return nil, err
	}
	if len(msg.Operator) != 0 {
		if err := r.requireOperator(db, msg.Operator); err != nil {
			return nil, err
		}
	}
	if conf.Compliance == ComplianceRequired {
		for _, party := range []htlc.Address{msg.Initiator, msg.Participant} {
			ok, err := r.gate.IsComplianceVerified(db, party)
			if err != nil {
				return nil, errors.Wrap(err, "compliance")
			}
			if !ok {
				return nil, errors.Wrapf(errors.ErrUnauthorized, "%s is not compliance verified", party)
			}
		}
	}
	for _, legs := range [][]*assets.Leg{msg.LegsIn, msg.LegsOut} {
		for i, leg := range legs {
			if err := r.assets.ValidateLeg(leg); err != nil {
				return nil, errors.Wrapf(err, "leg %d", i)
			}
		}
	}
	id := SwapID(msg.Initiator, msg.Participant, msg.SecretHash)
	if err := r.requireUnused(db, id); err != nil {
		return nil, err
	}
	start := r.now()
	if err := checkDeadline(start, msg.TimeLockDuration); err != nil {
		return nil, err
	}

	return &Swap{
		Metadata:         &Metadata{Schema: currentSchema},
		Initiator:        msg.Initiator,
		Participant:      msg.Participant,
		LegsIn:           msg.LegsIn,
		LegsOut:          msg.LegsOut,
		SecretHash:       msg.SecretHash,
		Operator:         msg.Operator,
		StartTime:        start,
		TimeLockDuration: msg.TimeLockDuration,
		Status:           StatusInitiated,
	}, nil
}

func (r *Registry) requireOperator(db htlc.ReadOnlyKVStore, addr htlc.Address) error {
	ok, err := r.gate.IsOperator(db, addr)
	if err != nil {
		return errors.Wrap(err, "operator")
	}
	if !ok {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not an operator", addr)
	}
	return nil
}

// Complete reveals the secret and settles both sides of the swap.
func (r *Registry) Complete(ctx context.Context, db htlc.CacheableKVStore, msg *CompleteMsg) error {
	swap, revealer, err := r.checkComplete(ctx, db, msg)
	if err != nil {
		htlc.GetLogger(ctx).Debug("complete rejected", "swap", msg.SwapID, "err", err)
		return err
	}

	cache := db.CacheWrap()
	if err := r.complete(ctx, cache, msg, swap, revealer); err != nil {
		cache.Discard()
		htlc.GetLogger(ctx).Debug("complete failed", "swap", msg.SwapID, "err", err)
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write")
	}
	htlc.GetLogger(ctx).Info("swap completed", "swap", msg.SwapID, "revealer", revealer)
	return nil
}

func (r *Registry) complete(ctx context.Context, db htlc.KVCacheWrap, msg *CompleteMsg, swap *Swap, revealer htlc.Address) error {
	// The terminal status is stored before any registry code runs.
	swap.Status = StatusCompleted
	swap.RevealedSecret = msg.Secret
	swap.CompletedAt = r.now()
	if err := r.bucket.Put(db, msg.SwapID, swap); err != nil {
		return errors.Wrap(err, "store swap")
	}

	if err := r.assets.LockFromBatch(ctx, db, swap.Participant, swap.LegsOut); err != nil {
		return errors.Wrap(err, "lock legs out")
	}
	if err := r.assets.ReleaseToBatch(ctx, db, swap.Initiator, swap.LegsOut); err != nil {
		return errors.Wrap(err, "release legs out")
	}
	if err := r.assets.ReleaseToBatch(ctx, db, swap.Participant, swap.LegsIn); err != nil {
		return errors.Wrap(err, "release legs in")
	}

	_, err := r.feed.Publish(ctx, db, &audit.SwapCompleted{
		SwapID:   msg.SwapID,
		Revealer: revealer,
		Secret:   msg.Secret,
		Operator: swap.Operator,
	})
	return err
}

// checkComplete returns the swap to complete and the address revealing
// the secret.
func (r *Registry) checkComplete(ctx context.Context, db htlc.ReadOnlyKVStore, msg *CompleteMsg) (*Swap, htlc.Address, error) {
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}
	swap, err := r.loadInitiated(db, msg.SwapID)
	if err != nil {
		return nil, nil, err
	}
	if err := r.gate.RequireNotPaused(db); err != nil {
		return nil, nil, err
	}
	revealer, err := r.caller(ctx, db, swap, swap.Participant)
	if err != nil {
		return nil, nil, err
	}
	if !r.commitment.Verify(msg.Secret, swap.SecretHash) {
		return nil, nil, errors.Wrap(errors.ErrSecret, "secret does not match the hash")
	}
	conf, err := loadConfiguration(db)
	if err != nil {
		return nil, nil, err
	}
	if r.now().Reached(swap.Deadline()) && conf.Completion != CompleteUntilRefunded {
		return nil, nil, errors.Wrapf(errors.ErrTemporal, "deadline %s passed", swap.Deadline())
	}
	return swap, revealer, nil
}

// Refund returns the escrowed legs to the initiator once the deadline
// was reached. Pausing the registry does not prevent refunds.
func (r *Registry) Refund(ctx context.Context, db htlc.CacheableKVStore, msg *RefundMsg) error {
	swap, err := r.checkRefund(ctx, db, msg)
	if err != nil {
		htlc.GetLogger(ctx).Debug("refund rejected", "swap", msg.SwapID, "err", err)
		return err
	}

	cache := db.CacheWrap()
	if err := r.refund(ctx, cache, msg, swap); err != nil {
		cache.Discard()
		htlc.GetLogger(ctx).Debug("refund failed", "swap", msg.SwapID, "err", err)
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write")
	}
	htlc.GetLogger(ctx).Info("swap refunded", "swap", msg.SwapID, "initiator", swap.Initiator)
	return nil
}

func (r *Registry) refund(ctx context.Context, db htlc.KVCacheWrap, msg *RefundMsg, swap *Swap) error {
	swap.Status = StatusRefunded
	swap.RefundedAt = r.now()
	if err := r.bucket.Put(db, msg.SwapID, swap); err != nil {
		return errors.Wrap(err, "store swap")
	}
	if err := r.assets.ReleaseToBatch(ctx, db, swap.Initiator, swap.LegsIn); err != nil {
		return errors.Wrap(err, "release legs in")
	}
	_, err := r.feed.Publish(ctx, db, &audit.SwapRefunded{
		SwapID:    msg.SwapID,
		Initiator: swap.Initiator,
		Operator:  swap.Operator,
	})
	return err
}

func (r *Registry) checkRefund(ctx context.Context, db htlc.ReadOnlyKVStore, msg *RefundMsg) (*Swap, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	swap, err := r.loadInitiated(db, msg.SwapID)
	if err != nil {
		return nil, err
	}
	if _, err := r.caller(ctx, db, swap, swap.Initiator); err != nil {
		return nil, err
	}
	if !r.now().Reached(swap.Deadline()) {
		return nil, errors.Wrapf(errors.ErrTemporal, "deadline %s not reached", swap.Deadline())
	}
	return swap, nil
}

func (r *Registry) loadInitiated(db htlc.ReadOnlyKVStore, id []byte) (*Swap, error) {
	swap, err := r.Get(db, id)
	if err != nil {
		return nil, err
	}
	if swap.Status != StatusInitiated {
		return nil, errors.Wrapf(errors.ErrState, "swap is %s", swap.Status)
	}
	return swap, nil
}

// caller returns the authenticated address acting on the swap. That is
// either the party or the operator designated by the swap, provided the
// operator still holds the operator role.
func (r *Registry) caller(ctx context.Context, db htlc.ReadOnlyKVStore, swap *Swap, party htlc.Address) (htlc.Address, error) {
	signer, ok := x.FirstSigner(ctx, r.auth, party, swap.Operator)
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s signature required", party)
	}
	if signer.Equals(party) {
		return party, nil
	}
	if err := r.requireOperator(db, signer); err != nil {
		return nil, err
	}
	return signer, nil
}
