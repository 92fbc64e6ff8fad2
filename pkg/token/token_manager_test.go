package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", 15*time.Minute, 7*24*time.Hour, NewMemoryStore())
	require.NoError(t, err)
	return m
}

func TestNewManager(t *testing.T) {
	t.Run("RequiresSecret", func(t *testing.T) {
		_, err := NewManager("", time.Minute, time.Hour, NewMemoryStore())
		assert.Error(t, err)
	})

	t.Run("DefaultsZeroTTLs", func(t *testing.T) {
		m, err := NewManager("s", 0, 0, NewMemoryStore())
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, m.AccessTTL())
		assert.Equal(t, 7*24*time.Hour, m.RefreshTTL())
	})
}

func TestIssueAndValidate(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	pair, err := m.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	t.Run("AccessToken", func(t *testing.T) {
		claims, err := m.ValidateAccess(pair.Access)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, UsageAccess, claims.Usage)
	})

	t.Run("RefreshToken", func(t *testing.T) {
		claims, err := m.ValidateRefresh(ctx, pair.Refresh)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, UsageRefresh, claims.Usage)
	})

	t.Run("RefreshRejectedAsAccess", func(t *testing.T) {
		_, err := m.ValidateAccess(pair.Refresh)
		assert.ErrorIs(t, err, ErrWrongUsage)
	})

	t.Run("AccessRejectedAsRefresh", func(t *testing.T) {
		_, err := m.ValidateRefresh(ctx, pair.Access)
		assert.ErrorIs(t, err, ErrWrongUsage)
	})

	t.Run("GarbageRejected", func(t *testing.T) {
		_, err := m.ValidateAccess("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ForeignSignatureRejected", func(t *testing.T) {
		other, err := NewManager("other-secret", time.Minute, time.Hour, NewMemoryStore())
		require.NoError(t, err)
		foreign, err := other.IssueAccess(42)
		require.NoError(t, err)

		_, err = m.ValidateAccess(foreign)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExpiredTokenRejected(t *testing.T) {
	m, err := NewManager("test-secret", -time.Minute, time.Hour, NewMemoryStore())
	require.NoError(t, err)
	// negative TTL falls back to the default, so sign a short-lived one manually
	short, err := NewManager("test-secret", time.Millisecond, time.Hour, NewMemoryStore())
	require.NoError(t, err)
	access, err := short.IssueAccess(1)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = m.ValidateAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeRefresh(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	pair, err := m.Issue(7)
	require.NoError(t, err)

	t.Run("ValidBeforeRevocation", func(t *testing.T) {
		_, err := m.ValidateRefresh(ctx, pair.Refresh)
		assert.NoError(t, err)
	})

	t.Run("RejectedAfterRevocation", func(t *testing.T) {
		require.NoError(t, m.RevokeRefresh(ctx, pair.Refresh))
		_, err := m.ValidateRefresh(ctx, pair.Refresh)
		assert.ErrorIs(t, err, ErrRevokedToken)
	})

	t.Run("UnparseableTokenIgnored", func(t *testing.T) {
		assert.NoError(t, m.RevokeRefresh(ctx, "garbage"))
	})

	t.Run("AccessTokenIgnored", func(t *testing.T) {
		assert.NoError(t, m.RevokeRefresh(ctx, pair.Access))
		_, err := m.ValidateAccess(pair.Access)
		assert.NoError(t, err)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	t.Run("UnknownNotRevoked", func(t *testing.T) {
		revoked, err := store.IsRevoked(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("RevokedWithinTTL", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))
		revoked, err := store.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("ExpiredEntryForgotten", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "jti-2", time.Millisecond))
		time.Sleep(10 * time.Millisecond)
		revoked, err := store.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("NonPositiveTTLIgnored", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "jti-3", -time.Minute))
		revoked, err := store.IsRevoked(ctx, "jti-3")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
