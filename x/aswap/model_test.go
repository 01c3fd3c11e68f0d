package aswap

import (
	"math"
	"testing"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/htlctest"
	"github.com/iov-one/htlc/htlctest/assert"
	"github.com/iov-one/htlc/x/assets"
	"github.com/iov-one/htlc/x/hashlock"
)

func TestSwapValidation(t *testing.T) {
	initiator := htlctest.NewCondition().Address()
	participant := htlctest.NewCondition().Address()

	valid := func() *Swap {
		return &Swap{
			Metadata:         &Metadata{Schema: 1},
			Initiator:        initiator,
			Participant:      participant,
			LegsIn:           []*assets.Leg{{Registry: "ft_a", AssetID: "A", Amount: 1}},
			LegsOut:          []*assets.Leg{{Registry: "ft_b", AssetID: "B", Amount: 2}},
			SecretHash:       hashlock.Commitment{}.Commit(secret),
			StartTime:        1000,
			TimeLockDuration: 60,
			Status:           StatusInitiated,
		}
	}

	cases := map[string]struct {
		mutate  func(s *Swap)
		wantErr *errors.Error
	}{
		"initiated": {
			mutate: func(s *Swap) {},
		},
		"completed": {
			mutate: func(s *Swap) {
				s.Status = StatusCompleted
				s.RevealedSecret = secret
				s.CompletedAt = 1010
			},
		},
		"refunded": {
			mutate: func(s *Swap) {
				s.Status = StatusRefunded
				s.RefundedAt = 1060
			},
		},
		"completed without secret": {
			mutate: func(s *Swap) {
				s.Status = StatusCompleted
				s.CompletedAt = 1010
			},
			wantErr: errors.ErrValidation,
		},
		"initiated with secret": {
			mutate:  func(s *Swap) { s.RevealedSecret = secret },
			wantErr: errors.ErrValidation,
		},
		"refunded with secret": {
			mutate: func(s *Swap) {
				s.Status = StatusRefunded
				s.RefundedAt = 1060
				s.RevealedSecret = secret
			},
			wantErr: errors.ErrValidation,
		},
		"unknown status": {
			mutate:  func(s *Swap) { s.Status = 0 },
			wantErr: errors.ErrValidation,
		},
		"unsupported schema": {
			mutate:  func(s *Swap) { s.Metadata.Schema = 2 },
			wantErr: errors.ErrValidation,
		},
		"same parties": {
			mutate:  func(s *Swap) { s.Participant = s.Initiator },
			wantErr: errors.ErrValidation,
		},
		"invalid operator": {
			mutate:  func(s *Swap) { s.Operator = htlc.Address{1, 2, 3} },
			wantErr: errors.ErrValidation,
		},
		"no time lock": {
			mutate:  func(s *Swap) { s.TimeLockDuration = 0 },
			wantErr: errors.ErrValidation,
		},
		"deadline wraps around": {
			mutate:  func(s *Swap) { s.TimeLockDuration = math.MaxInt64 - 10 },
			wantErr: errors.ErrOverflow,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s := valid()
			tc.mutate(s)
			assert.IsErr(t, tc.wantErr, s.Validate())
		})
	}
}

func TestSwapID(t *testing.T) {
	a := htlctest.NewCondition().Address()
	b := htlctest.NewCondition().Address()
	h1 := hashlock.Commitment{}.Commit([]byte("one"))
	h2 := hashlock.Commitment{}.Commit([]byte("two"))

	id := SwapID(a, b, h1)
	assert.Equal(t, sha256Size, len(id))
	assert.Equal(t, id, SwapID(a, b, h1))

	others := [][]byte{SwapID(b, a, h1), SwapID(a, b, h2), SwapID(a, a, h1)}
	for _, other := range others {
		if string(other) == string(id) {
			t.Fatal("different inputs produced the same swap id")
		}
	}
}

func TestDeadline(t *testing.T) {
	s := Swap{StartTime: 1000, TimeLockDuration: 3600}
	assert.Equal(t, htlc.UnixTime(4600), s.Deadline())
}
