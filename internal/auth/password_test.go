package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trailtracker/trailtracker/internal/errors"
)

func TestHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	hash, err := h.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	require.NoError(t, h.CheckPassword(hash, "s3cret"))
	require.ErrorIs(t, h.CheckPassword(hash, "wrong"), ErrPasswordMismatch)
}

func TestHasher_MalformedHash(t *testing.T) {
	t.Parallel()

	err := NewHasher(bcrypt.MinCost).CheckPassword("not-a-hash", "s3cret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
	assert.True(t, errors.IsCategory(err, errors.CategoryAuth))
}

func TestNewHasher_CostBounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultCost, NewHasher(0).cost)
	assert.Equal(t, DefaultCost, NewHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}

func TestHashPassword_UsesDefaultCost(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
	require.NoError(t, CheckPassword(hash, "pw"))
}

func TestHashPassword_TooLong(t *testing.T) {
	t.Parallel()

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err := NewHasher(bcrypt.MinCost).HashPassword(string(long))
	require.Error(t, err)
}
