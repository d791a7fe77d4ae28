package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/donations/internal/model"
)

var admin = &model.User{ID: 1, Email: "admin@example.org", Role: model.RoleAdmin}

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("test-secret-key")

	signed, issued, err := tokens.Issue(admin)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "admin@example.org", claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Len(t, claims.ID, 32)
}

func TestTokenIDsAreUnique(t *testing.T) {
	tokens := NewTokens("secret")
	_, a, err := tokens.Issue(admin)
	require.NoError(t, err)
	_, b, err := tokens.Issue(admin)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseRejects(t *testing.T) {
	tokens := NewTokens("secret1")
	signed, _, err := tokens.Issue(admin)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokens("secret2").Parse(signed)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not-a-token")
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokens("secret1")
		later.now = func() time.Time { return time.Now().Add(TokenExpiry + time.Hour) }
		_, err := later.Parse(signed)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID: 1, Role: model.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				ID: "x", Issuer: Issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.Parse(unsigned)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})
}

func TestTokenExpiry(t *testing.T) {
	tokens := NewTokens("test")
	signed, _, err := tokens.Issue(admin)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TokenExpiry), claims.ExpiresAt.Time, 5*time.Second)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
	assert.False(t, CheckPassword("", ""))
}
