// Package cache 是推荐结果的缓存层：所有召回在计算前先查缓存，miss 后回填。
//
// key 格式为 rec:<kind>[:<param>...]，由 kind 和参数按顺序拼接，确定且顺序敏感。
// 后端不可达（或熔断器打开）时一律按 miss 处理，缓存故障不会让推荐请求失败。
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/metrics"
)

// Kind 是缓存条目的类别。
type Kind string

const (
	KindPersonalized Kind = "personalized"
	KindSimilar      Kind = "similar"
	KindTrending     Kind = "trending"
	KindColdStart    Kind = "cold_start"
)

const keyPrefix = "rec"

// Key 拼接缓存 key：rec:<kind>[:<param>...]。
func Key(kind Kind, params ...string) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteByte(':')
	b.WriteString(string(kind))
	for _, p := range params {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// Entry 是缓存的值：计算时使用的 limit 和结果。
type Entry struct {
	Limit int          `json:"limit"`
	Items []*core.Item `json:"items"`
}

// Cache 是推荐结果缓存。backend 为 nil 时缓存关闭：Get 恒 miss，Set/Invalidate 为空操作。
type Cache struct {
	backend core.Store
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     zerolog.Logger
}

// New 创建缓存层。cfg 为空时使用默认配置。
func New(backend core.Store, cfg *core.Config, log zerolog.Logger) *Cache {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	c := &Cache{
		backend: backend,
		ttl:     cfg.CacheTTL,
		log:     log.With().Str("component", "cache").Logger(),
	}
	if backend == nil {
		return c
	}

	bc := cfg.Breaker
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "cache-" + backend.Name(),
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return bc.FailureThreshold > 0 && counts.ConsecutiveFailures >= bc.FailureThreshold
		},
		// key 不存在是正常的 miss，不计入失败
		IsSuccessful: func(err error) bool {
			return err == nil || core.IsStoreNotFound(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache circuit breaker state changed")
		},
	})
	return c
}

// Enabled 缓存是否开启。
func (c *Cache) Enabled() bool {
	return c != nil && c.backend != nil
}

// Get 读取缓存条目。miss、后端错误、熔断、解码失败都返回 (nil, false)。
func (c *Cache) Get(ctx context.Context, kind Kind, params ...string) (*Entry, bool) {
	if !c.Enabled() {
		return nil, false
	}
	key := Key(kind, params...)

	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.backend.Get(ctx, key)
	})
	if err != nil {
		if !core.IsStoreNotFound(err) {
			c.degraded("get", key, err)
		}
		metrics.CacheMisses.WithLabelValues(string(kind)).Inc()
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// 旧格式或损坏的数据按 miss 处理，下次写入覆盖
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry undecodable, treating as miss")
		metrics.CacheMisses.WithLabelValues(string(kind)).Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(string(kind)).Inc()
	c.log.Debug().Str("key", key).Int("items", len(entry.Items)).Msg("cache hit")
	return &entry, true
}

// Lookup 按请求的 limit 读取：缓存条目的 limit >= 请求 limit 时返回前 limit 个，
// 否则按 miss 处理（缓存的结果可能比请求的少）。
func (c *Cache) Lookup(ctx context.Context, kind Kind, limit int, params ...string) ([]*core.Item, bool) {
	entry, ok := c.Get(ctx, kind, params...)
	if !ok {
		return nil, false
	}
	if entry.Limit < limit {
		c.log.Debug().Str("key", Key(kind, params...)).
			Int("cached_limit", entry.Limit).
			Int("limit", limit).
			Msg("cached result computed for a smaller limit")
		return nil, false
	}
	return core.Truncate(entry.Items, limit), true
}

// Set 写入缓存条目，ttl 为空时使用默认 TTL。写失败只记录日志。
func (c *Cache) Set(ctx context.Context, kind Kind, params []string, entry *Entry, ttl ...time.Duration) {
	if !c.Enabled() || entry == nil {
		return
	}
	key := Key(kind, params...)

	expire := c.ttl
	if len(ttl) > 0 && ttl[0] > 0 {
		expire = ttl[0]
	}
	seconds := int(expire / time.Second)
	if seconds <= 0 {
		seconds = 1
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("cache entry encode failed")
		return
	}
	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.backend.Set(ctx, key, data, seconds)
	})
	if err != nil {
		c.degraded("set", key, err)
	}
}

// Invalidate 删除一个缓存条目。
func (c *Cache) Invalidate(ctx context.Context, kind Kind, params ...string) {
	if !c.Enabled() {
		return
	}
	key := Key(kind, params...)
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.backend.Delete(ctx, key)
	})
	if err != nil {
		c.degraded("delete", key, err)
		return
	}
	metrics.CacheInvalidations.WithLabelValues(string(kind)).Inc()
	c.log.Debug().Str("key", key).Msg("cache invalidated")
}

// InvalidateUser 用户行为变化：失效该用户的个性化推荐。
func (c *Cache) InvalidateUser(ctx context.Context, userID string) {
	c.Invalidate(ctx, KindPersonalized, userID)
}

// InvalidateProduct 商品变化：失效该商品的相似推荐，以及所有窗口的热门榜
// （热门聚合不按商品分 key，只能整体失效）。
func (c *Cache) InvalidateProduct(ctx context.Context, productID string) {
	c.Invalidate(ctx, KindSimilar, productID)
	for _, w := range core.Windows() {
		c.Invalidate(ctx, KindTrending, string(w))
	}
}

// State 返回熔断器状态（closed / half-open / open），缓存关闭时为 "disabled"。
func (c *Cache) State() string {
	if !c.Enabled() {
		return "disabled"
	}
	return c.breaker.State().String()
}

func (c *Cache) degraded(op, key string, err error) {
	metrics.CacheErrors.WithLabelValues(op).Inc()
	ev := c.log.Warn()
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		// 熔断期间每次访问都会走到这里，降到 debug 避免刷屏
		ev = c.log.Debug()
	}
	ev.Err(err).Str("op", op).Str("key", key).Msg("cache backend unavailable, degrading to miss")
}
