package adminguard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCache(rdb), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "k1")
	assert.False(t, ok)

	checked := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.Set(ctx, "k1", Status{IsAdmin: true, CheckedAt: checked, TTL: 90 * time.Second, Source: "verify"})

	require.True(t, mr.Exists(CacheKeyPrefix+"k1"))
	assert.Equal(t, 90*time.Second, mr.TTL(CacheKeyPrefix+"k1"))

	s, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.True(t, s.IsAdmin)
	assert.True(t, checked.Equal(s.CheckedAt))
	assert.Equal(t, 90*time.Second, s.TTL)

	mr.FastForward(91 * time.Second)
	_, ok = c.Get(ctx, "k1")
	assert.False(t, ok)
}

func TestRedisCacheIgnoresCorruptValue(t *testing.T) {
	c, mr := newRedisCache(t)
	require.NoError(t, mr.Set(CacheKeyPrefix+"k2", "{not json"))
	_, ok := c.Get(context.Background(), "k2")
	assert.False(t, ok)
}

func TestGuardWithRedisCache(t *testing.T) {
	stub := &verifyStub{isAdmin: true}
	now := time.Now()
	g := newGuard(stub.server(t).URL, &now)
	c, _ := newRedisCache(t)
	g.Cache = c

	g.Check(adminReq("/admin/"))
	d, s := g.Check(adminReq("/admin/"))
	assert.Equal(t, Allow, d)
	assert.Equal(t, "cache", s.Source)
	assert.EqualValues(t, 1, stub.calls.Load())
}
