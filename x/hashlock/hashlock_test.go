package hashlock

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/htlc/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitKnownDigests(t *testing.T) {
	cases := map[string]struct {
		alg  Algorithm
		want string
	}{
		"sha256": {
			alg:  SHA256,
			want: "6ca13d52ca70c883e0f0bb101e425a89e8624de51db2d2392593af6a84118090",
		},
		"blake2b": {
			alg: BLAKE2b256,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c, err := New(tc.alg)
			require.NoError(t, err)
			hash := c.Commit([]byte("abc123"))
			assert.Len(t, hash, Size)
			if tc.want != "" {
				assert.Equal(t, tc.want, hex.EncodeToString(hash))
			}
			assert.True(t, c.Verify([]byte("abc123"), hash))
			assert.False(t, c.Verify([]byte("abc124"), hash))
			assert.False(t, c.Verify([]byte("abc123"), hash[:31]))
		})
	}
}

func TestZeroValueUsesSHA256(t *testing.T) {
	var c Commitment
	sha, err := New(SHA256)
	require.NoError(t, err)
	blake, err := New(BLAKE2b256)
	require.NoError(t, err)

	assert.Equal(t, SHA256, c.Algorithm())
	assert.Equal(t, sha.Commit([]byte("x")), c.Commit([]byte("x")))
	assert.False(t, bytes.Equal(sha.Commit([]byte("x")), blake.Commit([]byte("x"))))

	_, err = New(Algorithm(7))
	assert.True(t, errors.ErrValidation.Is(err))
}

func TestValidateHash(t *testing.T) {
	cases := map[string]struct {
		hash    []byte
		wantErr *errors.Error
	}{
		"valid":     {hash: bytes.Repeat([]byte{1}, Size)},
		"zero":      {hash: make([]byte, Size), wantErr: errors.ErrValidation},
		"too short": {hash: []byte{1, 2, 3}, wantErr: errors.ErrValidation},
		"missing":   {hash: nil, wantErr: errors.ErrValidation},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := ValidateHash(tc.hash)
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)
		})
	}
}

func TestValidateSecret(t *testing.T) {
	assert.NoError(t, ValidateSecret([]byte("abc123")))
	assert.True(t, errors.ErrValidation.Is(ValidateSecret(nil)))
	assert.True(t, errors.ErrValidation.Is(ValidateSecret(make([]byte, MaxSecretSize+1))))
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)

	var c Commitment
	assert.True(t, c.Verify(a, c.Commit(a)))
}
