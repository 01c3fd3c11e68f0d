package aswap

import (
	"context"
	"math/rand"
	"testing"
	"time"

	fuzz "github.com/google/gofuzz"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/htlctest/assert"
	"github.com/iov-one/htlc/x/access"
	"github.com/iov-one/htlc/x/assets"
)

// reentrantRegistry calls back into the swap registry from within a
// transfer, once.
type reentrantRegistry struct {
	assets.Registry
	reenter func(ctx context.Context, db htlc.CacheableKVStore) []error
	errs    []error
}

func (r *reentrantRegistry) Transfer(ctx context.Context, db htlc.CacheableKVStore, from, to htlc.Address, assetID string, amount uint64) error {
	if fn := r.reenter; fn != nil {
		r.reenter = nil
		r.errs = append(r.errs, fn(ctx, db)...)
	}
	return r.Registry.Transfer(ctx, db, from, to, assetID, amount)
}

func TestReentrantCompletion(t *testing.T) {
	f := newFixture(t)
	evil := &reentrantRegistry{Registry: f.tokenB}
	f.router.Register("evil_b", evil)

	msg := f.initiateMsg()
	msg.LegsOut[0].Registry = "evil_b"
	id := f.initiate(t, msg)

	f.at(time.Minute)
	evil.reenter = func(ctx context.Context, db htlc.CacheableKVStore) []error {
		return []error{
			f.reg.Complete(ctx, db, &CompleteMsg{Metadata: &Metadata{Schema: 1}, SwapID: id, Secret: secret}),
			f.reg.Refund(ctx, db, &RefundMsg{Metadata: &Metadata{Schema: 1}, SwapID: id}),
		}
	}
	assert.Nil(t, f.complete(f.participant, id, secret))

	assert.Equal(t, 2, len(evil.errs))
	for _, err := range evil.errs {
		assert.IsErr(t, errors.ErrState, err)
	}
	// Assets moved exactly once.
	assert.Equal(t, uint64(100), f.balance(t, f.tokenA, f.participant.Address()))
	assert.Equal(t, uint64(50), f.balance(t, f.tokenB, f.initiator.Address()))
	assert.Equal(t, uint64(0), f.balance(t, f.tokenA, f.router.Custody()))
}

func TestReentrantRefund(t *testing.T) {
	f := newFixture(t)
	evil := &reentrantRegistry{Registry: f.tokenA}
	f.router.Register("evil_a", evil)

	msg := f.initiateMsg()
	msg.LegsIn[0].Registry = "evil_a"
	msg.LegsIn[0].Amount = 60
	id := f.initiate(t, msg)

	f.at(2 * time.Hour)
	evil.reenter = func(ctx context.Context, db htlc.CacheableKVStore) []error {
		return []error{f.reg.Refund(ctx, db, &RefundMsg{Metadata: &Metadata{Schema: 1}, SwapID: id})}
	}
	assert.Nil(t, f.refund(f.initiator, id))

	assert.Equal(t, 1, len(evil.errs))
	assert.IsErr(t, errors.ErrState, evil.errs[0])
	assert.Equal(t, uint64(100), f.balance(t, f.tokenA, f.initiator.Address()))
	assert.Equal(t, uint64(0), f.balance(t, f.tokenA, f.router.Custody()))
}

func TestReentrantInitiation(t *testing.T) {
	f := newFixture(t)
	evil := &reentrantRegistry{Registry: f.tokenA}
	f.router.Register("evil_a", evil)

	msg := f.initiateMsg()
	msg.LegsIn[0].Registry = "evil_a"
	id := SwapID(msg.Initiator, msg.Participant, msg.SecretHash)

	evil.reenter = func(ctx context.Context, db htlc.CacheableKVStore) []error {
		pctx := f.signed(f.participant)
		return []error{f.reg.Complete(pctx, db, &CompleteMsg{Metadata: &Metadata{Schema: 1}, SwapID: id, Secret: secret})}
	}
	assert.Equal(t, id, f.initiate(t, msg))

	// The swap does not exist before its legs are escrowed.
	assert.Equal(t, 1, len(evil.errs))
	assert.IsErr(t, errors.ErrNotFound, evil.errs[0])
	assert.Equal(t, StatusInitiated, f.status(t, id))
}

// step is a single fuzzed call against a swap.
type step struct {
	Op      uint8
	Signer  uint8
	Advance uint16
}

func TestMutualExclusionFuzz(t *testing.T) {
	fz := fuzz.New().NilChance(0).NumElements(1, 16).RandSource(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		var steps []step
		fz.Fuzz(&steps)

		f := newFixture(t)
		assert.Nil(t, f.roles.Grant(f.db, f.operator.Address(), access.RoleOperator))
		msg := f.initiateMsg()
		msg.Operator = f.operator.Address()
		id := f.initiate(t, msg)

		if steps[0].Op%7 == 0 {
			assert.Nil(t, f.gate.SetPaused(f.db, true))
		}

		signers := []htlc.Condition{f.initiator, f.participant, f.operator, f.stranger}
		var completed, refunded int
		var offset time.Duration
		for _, s := range steps {
			offset += time.Duration(s.Advance%1200) * time.Second
			f.at(offset)
			signer := signers[int(s.Signer)%len(signers)]

			var err error
			switch s.Op % 3 {
			case 0:
				if err = f.complete(signer, id, secret); err == nil {
					completed++
				}
			case 1:
				if err = f.refund(signer, id); err == nil {
					refunded++
				}
			case 2:
				err = f.complete(signer, id, []byte("not the secret"))
				if err == nil {
					t.Fatal("completed with a wrong secret")
				}
			}
			if err != nil && !expectedRejection(err) {
				t.Fatalf("round %d: unexpected error %+v", round, err)
			}
		}

		if completed+refunded > 1 {
			t.Fatalf("round %d: %d completions and %d refunds", round, completed, refunded)
		}

		i, p, c := f.initiator.Address(), f.participant.Address(), f.router.Custody()
		totalA := f.balance(t, f.tokenA, i) + f.balance(t, f.tokenA, p) + f.balance(t, f.tokenA, c)
		totalB := f.balance(t, f.tokenB, i) + f.balance(t, f.tokenB, p) + f.balance(t, f.tokenB, c)
		assert.Equal(t, uint64(100), totalA)
		assert.Equal(t, uint64(50), totalB)

		switch {
		case completed == 1:
			assert.Equal(t, StatusCompleted, f.status(t, id))
			assert.Equal(t, uint64(100), f.balance(t, f.tokenA, p))
			assert.Equal(t, uint64(50), f.balance(t, f.tokenB, i))
		case refunded == 1:
			assert.Equal(t, StatusRefunded, f.status(t, id))
			assert.Equal(t, uint64(100), f.balance(t, f.tokenA, i))
			assert.Equal(t, uint64(50), f.balance(t, f.tokenB, p))
		default:
			assert.Equal(t, StatusInitiated, f.status(t, id))
			assert.Equal(t, uint64(100), f.balance(t, f.tokenA, c))
		}

		records, err := f.feed.BySwap(f.db, id)
		assert.Nil(t, err)
		assert.Equal(t, 1+completed+refunded, len(records))
	}
}

func expectedRejection(err error) bool {
	for _, e := range []*errors.Error{errors.ErrState, errors.ErrTemporal, errors.ErrUnauthorized, errors.ErrSecret, errors.ErrPaused} {
		if e.Is(err) {
			return true
		}
	}
	return false
}
