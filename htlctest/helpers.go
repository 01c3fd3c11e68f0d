package htlctest

import (
	"crypto/rand"

	"github.com/iov-one/htlc"
)

// NewCondition returns a signature condition for a random key. Every call
// returns a different condition.
func NewCondition() htlc.Condition {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return htlc.NewCondition("sigs", "ed25519", key)
}
