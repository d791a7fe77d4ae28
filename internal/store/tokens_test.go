package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/donations/internal/db"
)

func TestRevokeToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	revoked, err := IsTokenRevoked(ctx, database, "jti-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, database, "jti-a", expires))
	require.NoError(t, RevokeToken(ctx, database, "jti-a", expires), "revoking twice is not an error")

	revoked, err = IsTokenRevoked(ctx, database, "jti-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = IsTokenRevoked(ctx, database, "jti-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestPurgeRevokedTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, RevokeToken(ctx, database, "expired", now.Add(-time.Minute)))
	require.NoError(t, RevokeToken(ctx, database, "live", now.Add(time.Hour)))

	n, err := PurgeRevokedTokens(ctx, database, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revoked, _ := IsTokenRevoked(ctx, database, "expired")
	assert.False(t, revoked)
	revoked, _ = IsTokenRevoked(ctx, database, "live")
	assert.True(t, revoked)
}
