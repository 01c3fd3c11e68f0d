package audit

import (
	"context"
	"testing"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/htlctest"
	"github.com/iov-one/htlc/store"
	"github.com/iov-one/htlc/x/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedPublishAndList(t *testing.T) {
	ctx := htlc.WithHeight(context.Background(), 7)
	db := store.MemStore()
	feed := NewFeed()

	initiator := htlctest.NewCondition().Address()
	participant := htlctest.NewCondition().Address()
	swapA, swapB := []byte("swap-a"), []byte("swap-b")

	events := []Event{
		&SwapInitiated{
			SwapID:           swapA,
			Initiator:        initiator,
			Participant:      participant,
			LegsIn:           []*assets.Leg{{Registry: "ft_a", AssetID: "A", Amount: 100}},
			LegsOut:          []*assets.Leg{{Registry: "ft_b", AssetID: "B", Amount: 50}},
			SecretHash:       []byte("0123456789abcdef0123456789abcdef"),
			StartTime:        1000,
			TimeLockDuration: 3600,
		},
		&SwapInitiated{SwapID: swapB, Initiator: initiator, Participant: participant},
		&SwapCompleted{SwapID: swapA, Revealer: participant, Secret: []byte("abc123")},
		&SwapRefunded{SwapID: swapB, Initiator: initiator},
	}
	for i, e := range events {
		seq, err := feed.Publish(ctx, db, e)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}

	all, err := feed.List(db, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, entry := range all {
		assert.Equal(t, int64(i+1), entry.Sequence)
		assert.Equal(t, int64(7), entry.Record.Height)
		got, err := entry.Record.Event()
		require.NoError(t, err)
		assert.Equal(t, events[i], got)
	}

	page, err := feed.List(db, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(3), page[0].Sequence)
	assert.Equal(t, KindCompleted, page[0].Record.Kind)

	records, err := feed.BySwap(db, swapB)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, KindInitiated, records[0].Kind)
	assert.Equal(t, KindRefunded, records[1].Kind)

	latest, err := feed.Latest(db)
	require.NoError(t, err)
	assert.Equal(t, int64(4), latest)
}

func TestFeedRollback(t *testing.T) {
	ctx := context.Background()
	db := store.MemStore()
	feed := NewFeed()
	initiator := htlctest.NewCondition().Address()

	cache := db.CacheWrap()
	_, err := feed.Publish(ctx, cache, &SwapRefunded{SwapID: []byte("x"), Initiator: initiator})
	require.NoError(t, err)
	cache.Discard()

	all, err := feed.List(db, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 0)

	// the sequence is rolled back together with the record
	seq, err := feed.Publish(ctx, db, &SwapRefunded{SwapID: []byte("x"), Initiator: initiator})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestFeedRejectsInvalidEvents(t *testing.T) {
	db := store.MemStore()
	_, err := NewFeed().Publish(context.Background(), db, &SwapCompleted{SwapID: []byte("x")})
	assert.True(t, errors.ErrValidation.Is(err), "got %+v", err)
}
