package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(NewClient(mr.Addr(), "", 0))

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "tok1", []byte("ACME"), time.Minute))

	b, ok, err := c.Get(ctx, "tok1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("ACME"), b)
}

func TestRedisCache_MissingAndExpired(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(NewClient(mr.Addr(), "", 0))
	ctx := context.Background()

	b, ok, err := c.Get(ctx, "nope")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, b)

	require.NoError(t, c.Set(ctx, "short", []byte("ACME"), time.Second))
	mr.FastForward(2 * time.Second)
	_, ok, err = c.Get(ctx, "short")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(NewClient(mr.Addr(), "", 0))
	mr.Close()

	_, ok, err := c.Get(context.Background(), "tok1")
	require.Error(t, err)
	require.False(t, ok)
	require.Error(t, c.Ping(context.Background()))
}

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(NewClient(mr.Addr(), "", 0))

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.False(t, ok)
	require.Equal(t, int64(3), n)
}
