package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/htlctest"
	"github.com/iov-one/htlc/orm"
	"github.com/iov-one/htlc/store"
	"github.com/iov-one/htlc/x/access"
	"github.com/iov-one/htlc/x/assets"
	"github.com/iov-one/htlc/x/aswap"
	"github.com/iov-one/htlc/x/audit"
	"github.com/iov-one/htlc/x/hashlock"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

type ledgerFixture struct {
	auth        *htlctest.CtxAuth
	clock       *clock.TestClock
	admin       htlc.Condition
	initiator   htlc.Condition
	participant htlc.Condition
	tokenA      *assets.FungibleToken
	tokenB      *assets.FungibleToken
	stack       *Stack
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		auth:        &htlctest.CtxAuth{Key: "auth"},
		clock:       clock.NewTestClock(time.Unix(1600000000, 0)),
		admin:       htlctest.NewCondition(),
		initiator:   htlctest.NewCondition(),
		participant: htlctest.NewCondition(),
		tokenA:      assets.NewFungibleToken("A"),
		tokenB:      assets.NewFungibleToken("B"),
	}
	adapter := assets.NewRouter()
	adapter.Register("ft_a", f.tokenA)
	adapter.Register("ft_b", f.tokenB)
	f.stack = NewStack(f.auth, adapter, aswap.WithClock(f.clock))
	return f
}

func (f *ledgerFixture) ledger(t testing.TB, db *store.DBStore) *Ledger {
	t.Helper()
	l, err := NewLedger(db, f.stack.Handler(), f.stack.Queries(), f.stack.Initializer())
	require.NoError(t, err)
	return l.WithLogger(log.NewNopLogger())
}

func (f *ledgerFixture) genesis(t testing.TB) Genesis {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"conf": map[string]interface{}{
			"access": map[string]interface{}{"admin": f.admin.Address()},
			"aswap": map[string]interface{}{
				"owner":         f.admin.Address(),
				"compliance":    aswap.ComplianceOff,
				"completion":    aswap.CompleteBeforeDeadline,
				"max_legs":      8,
				"min_time_lock": 60,
				"max_time_lock": 86400,
			},
		},
		"assets": []interface{}{
			map[string]interface{}{"registry": "ft_a", "owner": f.initiator.Address(), "asset_id": "A", "amount": 100},
			map[string]interface{}{"registry": "ft_b", "owner": f.participant.Address(), "asset_id": "B", "amount": 50},
		},
	})
	require.NoError(t, err)
	var opts htlc.Options
	require.NoError(t, json.Unmarshal(raw, &opts))
	return Genesis{ChainID: "swap-test-1", AppState: opts}
}

func (f *ledgerFixture) initiateMsg(secret []byte) *aswap.InitiateMsg {
	return &aswap.InitiateMsg{
		Metadata:         &aswap.Metadata{Schema: 1},
		Initiator:        f.initiator.Address(),
		Participant:      f.participant.Address(),
		LegsIn:           []*assets.Leg{{Registry: "ft_a", AssetID: "A", Amount: 100}},
		LegsOut:          []*assets.Leg{{Registry: "ft_b", AssetID: "B", Amount: 50}},
		SecretHash:       hashlock.Commitment{}.Commit(secret),
		TimeLockDuration: 3600,
	}
}

func (f *ledgerFixture) signed(c htlc.Condition) context.Context {
	return f.auth.SetConditions(context.Background(), c)
}

func TestLedgerSwapLifecycle(t *testing.T) {
	f := newLedgerFixture()
	db := store.NewMemDBStore()
	l := f.ledger(t, db)

	require.NoError(t, l.InitChain(f.genesis(t)))
	assert.True(t, errors.ErrState.Is(l.InitChain(f.genesis(t))))
	_, err := l.Commit()
	require.NoError(t, err)

	secret := []byte("abc123")
	msg := f.initiateMsg(secret)
	require.NoError(t, l.Check(f.signed(f.initiator), msg))
	id, err := l.Deliver(f.signed(f.initiator), msg)
	require.NoError(t, err)

	// Not committed yet.
	models, err := l.Query("/swaps", id)
	require.NoError(t, err)
	assert.Len(t, models, 0)

	height, err := l.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(2), height)

	models, err = l.Query("/swaps", id)
	require.NoError(t, err)
	require.Len(t, models, 1)
	var swap aswap.Swap
	require.NoError(t, orm.Unmarshal(models[0].Value, &swap))
	assert.Equal(t, aswap.StatusInitiated, swap.Status)

	// A failing call leaves no trace.
	bad := &aswap.CompleteMsg{Metadata: &aswap.Metadata{Schema: 1}, SwapID: id, Secret: []byte("wrong")}
	_, err = l.Deliver(f.signed(f.participant), bad)
	assert.True(t, errors.ErrSecret.Is(err))

	f.clock.SetTime(f.clock.Now().Add(30 * time.Minute))
	complete := &aswap.CompleteMsg{Metadata: &aswap.Metadata{Schema: 1}, SwapID: id, Secret: secret}
	_, err = l.Deliver(f.signed(f.participant), complete)
	require.NoError(t, err)
	_, err = l.Deliver(f.signed(f.participant), complete)
	assert.True(t, errors.ErrState.Is(err))
	_, err = l.Commit()
	require.NoError(t, err)

	a, err := f.tokenA.Balance(db, f.participant.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), a.Uint64())
	b, err := f.tokenB.Balance(db, f.initiator.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(50), b.Uint64())

	entries, err := f.stack.Feed.List(db, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.KindInitiated, entries[0].Record.Kind)
	assert.Equal(t, audit.KindCompleted, entries[1].Record.Kind)
	assert.Equal(t, int64(2), entries[0].Record.Height)
	assert.Equal(t, int64(3), entries[1].Record.Height)

	models, err = l.Query("/swaps/participant", f.participant.Address())
	require.NoError(t, err)
	assert.Len(t, models, 1)

	_, err = l.Query("/nothing", nil)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestLedgerPauseViaAdmin(t *testing.T) {
	f := newLedgerFixture()
	l := f.ledger(t, store.NewMemDBStore())
	require.NoError(t, l.InitChain(f.genesis(t)))

	secret := []byte("paused swap")
	id, err := l.Deliver(f.signed(f.initiator), f.initiateMsg(secret))
	require.NoError(t, err)

	_, err = l.Deliver(f.signed(f.initiator), &access.PauseMsg{Paused: true})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	_, err = l.Deliver(f.signed(f.admin), &access.PauseMsg{Paused: true})
	require.NoError(t, err)

	complete := &aswap.CompleteMsg{Metadata: &aswap.Metadata{Schema: 1}, SwapID: id, Secret: secret}
	_, err = l.Deliver(f.signed(f.participant), complete)
	assert.True(t, errors.ErrPaused.Is(err))

	// Refund stays available once the deadline passed.
	f.clock.SetTime(f.clock.Now().Add(2 * time.Hour))
	refund := &aswap.RefundMsg{Metadata: &aswap.Metadata{Schema: 1}, SwapID: id}
	_, err = l.Deliver(f.signed(f.initiator), refund)
	require.NoError(t, err)
}

func TestLedgerPersistence(t *testing.T) {
	dir := t.TempDir()
	f := newLedgerFixture()

	db, err := store.OpenGoLevelDB("ledger", dir)
	require.NoError(t, err)
	l := f.ledger(t, db)
	require.NoError(t, l.InitChain(f.genesis(t)))
	id, err := l.Deliver(f.signed(f.initiator), f.initiateMsg([]byte("persisted")))
	require.NoError(t, err)
	_, err = l.Commit()
	require.NoError(t, err)

	// Pending writes are lost on restart.
	_, err = l.Deliver(f.signed(f.initiator), f.initiateMsg([]byte("lost")))
	assert.True(t, errors.ErrTransfer.Is(err), "initiator has no funds left: %+v", err)
	require.NoError(t, db.Close())

	db, err = store.OpenGoLevelDB("ledger", dir)
	require.NoError(t, err)
	defer db.Close()
	l = f.ledger(t, db)
	assert.Equal(t, "swap-test-1", l.ChainID())
	assert.Equal(t, int64(1), l.Height())

	models, err := l.Query("/swaps", id)
	require.NoError(t, err)
	assert.Len(t, models, 1)
	assert.True(t, errors.ErrState.Is(l.InitChain(f.genesis(t))))
}

func TestLedgerUnknownMessage(t *testing.T) {
	f := newLedgerFixture()
	l := f.ledger(t, store.NewMemDBStore())
	_, err := l.Deliver(context.Background(), testMsg{"nowhere/msg"})
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.True(t, errors.ErrNotFound.Is(l.Check(context.Background(), testMsg{"nowhere/msg"})))
}
