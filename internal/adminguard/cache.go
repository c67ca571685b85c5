package adminguard

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ph-address/internal/logger"
	"ph-address/internal/metrics"
)

// Cache 正向状态缓存
type Cache interface {
	Get(ctx context.Context, key string) (Status, bool)
	Set(ctx context.Context, key string, s Status)
}

// MemoryCache 进程内 LRU，条目按 Status.TTL 过期
type MemoryCache struct {
	mu   sync.Mutex
	cap  int
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type entry struct {
	k string
	v Status
}

func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryCache{cap: capacity, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, k string) (Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(entry)
		if it.v.Fresh(c.now()) {
			c.lst.MoveToFront(e)
			metrics.AdminCacheHitsTotal.Inc()
			return it.v, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	metrics.AdminCacheMissesTotal.Inc()
	return Status{}, false
}

func (c *MemoryCache) Set(_ context.Context, k string, s Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		e.Value = entry{k: k, v: s}
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(entry{k: k, v: s})
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		if back == nil {
			break
		}
		delete(c.dict, back.Value.(entry).k)
		c.lst.Remove(back)
	}
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

// RedisCache 多实例共享的缓存；键为 CacheKeyPrefix+key，值为 JSON，过期交给 Redis
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache rdb 为 nil 时返回 nil，调用方应回退到 MemoryCache
func NewRedisCache(rdb *redis.Client) *RedisCache {
	if rdb == nil {
		return nil
	}
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, k string) (Status, bool) {
	b, err := c.rdb.Get(ctx, CacheKeyPrefix+k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warn("admin_cache_redis_get_error", "err", err)
		}
		metrics.AdminCacheMissesTotal.Inc()
		return Status{}, false
	}
	var s Status
	if err := json.Unmarshal(b, &s); err != nil {
		metrics.AdminCacheMissesTotal.Inc()
		return Status{}, false
	}
	metrics.AdminCacheHitsTotal.Inc()
	return s, true
}

func (c *RedisCache) Set(ctx context.Context, k string, s Status) {
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, CacheKeyPrefix+k, b, s.TTL).Err(); err != nil {
		logger.L().Warn("admin_cache_redis_set_error", "err", err)
	}
}
