package revocation

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRevokeExpiresWithToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	l := New(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	ctx := context.Background()
	token := "access-token-1"

	require.NoError(t, l.Revoke(ctx, token, 2*time.Second))
	ok, err := l.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	// the raw token is never stored
	for _, k := range m.Keys() {
		require.NotContains(t, k, token)
	}

	m.FastForward(3 * time.Second)
	ok, err = l.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRevokeWithoutRedisIsNoop(t *testing.T) {
	l := New(nil)
	require.False(t, l.Enabled())
	require.NoError(t, l.Revoke(context.Background(), "t", time.Second))
	ok, err := l.IsRevoked(context.Background(), "t")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRevokeIgnoresExpiredTokens(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	l := New(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	require.NoError(t, l.Revoke(context.Background(), "old", 0))
	require.Empty(t, m.Keys())
}
