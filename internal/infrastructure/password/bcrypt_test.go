package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("Sup3rSecret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, hasher.Verify("Sup3rSecret", hash))
	assert.False(t, hasher.Verify("sup3rsecret", hash))
	assert.False(t, hasher.Verify("", hash))
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same-input")
	require.NoError(t, err)
	second, err := hasher.Hash("same-input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("same-input", first))
	assert.True(t, hasher.Verify("same-input", second))
}

func TestVerify_MalformedCredential(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(bcrypt.MinCost)

	for _, credential := range []string{
		"",
		"not-a-bcrypt-hash",
		"$1$legacy$aborted",
		"$2a$10$truncated",
	} {
		assert.False(t, hasher.Verify("anything", credential), "credential %q", credential)
	}
}

func TestNewBcryptHasher_CostOutOfRange(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(500)

	hash, err := hasher.Hash("Sup3rSecret")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("Sup3rSecret", hash))
}
