package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("s3cret!pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!pass", hash)

	require.NoError(t, hasher.Compare(hash, "s3cret!pass"))
	require.Error(t, hasher.Compare(hash, "wrong"))

	// Same input yields a distinct hash thanks to the embedded salt.
	again, err := hasher.Hash("s3cret!pass")
	require.NoError(t, err)
	require.NotEqual(t, hash, again)
}
