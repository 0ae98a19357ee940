package security

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetops/auth-service/internal/core/domain"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)
	ctx := context.Background()

	digest, err := h.Hash(ctx, "pw")
	require.NoError(t, err)
	require.NotEqual(t, "pw", digest)

	ok, err := h.Verify(ctx, "pw", digest)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify(ctx, "wrong", digest)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash(context.Background(), "same")
	require.NoError(t, err)
	b, err := h.Hash(context.Background(), "same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, digest := range []string{"", "plain", "$2a$99$garbage", "$argon2id$v=19$m=1,t=1,p=1$a$b"} {
		ok, err := h.Verify(context.Background(), "pw", digest)
		require.NoError(t, err, digest)
		require.False(t, ok, digest)
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(context.Background(), strings.Repeat("a", 73))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewBcryptHasher_CostBounds(t *testing.T) {
	t.Parallel()
	require.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	require.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	require.Equal(t, 12, NewBcryptHasher(12).cost)
}

func TestRandomSecret(t *testing.T) {
	t.Parallel()
	a, err := RandomSecret()
	require.NoError(t, err)
	b, err := RandomSecret()
	require.NoError(t, err)
	require.Len(t, a, 43)
	require.NotEqual(t, a, b)
}
