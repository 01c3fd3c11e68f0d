package hashlock

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/iov-one/htlc/errors"
	"golang.org/x/crypto/blake2b"
)

// Size is the length in bytes of every commitment.
const Size = 32

// MaxSecretSize limits the length of a revealed preimage.
const MaxSecretSize = 256

// Algorithm selects the one-way function used to build commitments.
type Algorithm int32

const (
	// SHA256 is compatible with hash time locked contracts on Bitcoin
	// family chains.
	SHA256 Algorithm = 1
	// BLAKE2b256 is BLAKE2b with a 32 byte digest.
	BLAKE2b256 Algorithm = 2
)

func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case BLAKE2b256:
		return "blake2b-256"
	default:
		return fmt.Sprintf("Algorithm(%d)", int32(a))
	}
}

// Validate returns an error if the algorithm is not supported.
func (a Algorithm) Validate() error {
	switch a {
	case SHA256, BLAKE2b256:
		return nil
	default:
		return errors.Wrapf(errors.ErrValidation, "unsupported hash algorithm %d", int32(a))
	}
}

// Commitment computes and verifies commitments with a single algorithm.
// The zero value uses SHA256.
type Commitment struct {
	alg Algorithm
}

// New returns a commitment scheme using given algorithm.
func New(alg Algorithm) (Commitment, error) {
	if err := alg.Validate(); err != nil {
		return Commitment{}, err
	}
	return Commitment{alg: alg}, nil
}

// Algorithm returns the one-way function in use.
func (c Commitment) Algorithm() Algorithm {
	if c.alg == 0 {
		return SHA256
	}
	return c.alg
}

// Commit returns the commitment of given secret.
func (c Commitment) Commit(secret []byte) []byte {
	switch c.Algorithm() {
	case BLAKE2b256:
		h := blake2b.Sum256(secret)
		return h[:]
	default:
		h := sha256.Sum256(secret)
		return h[:]
	}
}

// Verify reports whether secret is the preimage of hash. The comparison
// runs in constant time.
func (c Commitment) Verify(secret, hash []byte) bool {
	if len(hash) != Size {
		return false
	}
	return subtle.ConstantTimeCompare(c.Commit(secret), hash) == 1
}

// ValidateHash returns an error unless hash has the commitment size and at
// least one non-zero byte.
func ValidateHash(hash []byte) error {
	if len(hash) != Size {
		return errors.Wrapf(errors.ErrValidation, "secret hash must be %d bytes, got %d", Size, len(hash))
	}
	for _, b := range hash {
		if b != 0 {
			return nil
		}
	}
	return errors.Wrap(errors.ErrValidation, "secret hash is zero")
}

// ValidateSecret returns an error if the secret cannot be a preimage
// accepted at completion.
func ValidateSecret(secret []byte) error {
	switch n := len(secret); {
	case n == 0:
		return errors.Wrap(errors.ErrValidation, "empty secret")
	case n > MaxSecretSize:
		return errors.Wrapf(errors.ErrValidation, "secret longer than %d bytes", MaxSecretSize)
	}
	return nil
}

// GenerateSecret returns a random 32 byte preimage.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Wrapf(errors.ErrHuman, "read random: %s", err)
	}
	return secret, nil
}
