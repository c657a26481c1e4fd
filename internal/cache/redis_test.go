package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), RedisOptions{Addr: server.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, server
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, server := newTestRedis(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "catalog:movies")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "catalog:movies", []byte(`[{"id":1}]`), time.Minute))
	got, err := c.Get(ctx, "catalog:movies")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))
	assert.Equal(t, time.Minute, server.TTL("catalog:movies"))

	require.NoError(t, c.Delete(ctx, "catalog:movies"))
	_, err = c.Get(ctx, "catalog:movies")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCacheExpires(t *testing.T) {
	c, server := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))
	assert.Zero(t, server.TTL("forever"))

	server.FastForward(2 * time.Minute)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	got, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestNewRedisFailsWhenServerIsDown(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err := NewRedis(context.Background(), RedisOptions{Addr: addr})
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestRedisCacheReportsServerErrors(t *testing.T) {
	c, server := newTestRedis(t)
	server.SetError("ERR simulated failure")

	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
