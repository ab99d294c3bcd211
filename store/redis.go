package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/shoprec/core"
)

// RedisStore 是 Redis 实现的 Store，生产环境的推荐结果缓存后端。
//
// 连接是惰性的：构造时不要求 Redis 可达，不可达时每次访问返回 UNAVAILABLE，
// 由缓存层降级为 miss。
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 使用地址和 DB 创建 RedisStore。
func NewRedisStore(addr string, db int) *RedisStore {
	return NewRedisStoreWithOptions(DefaultRedisOptions(addr, db))
}

// DefaultRedisOptions 缓存场景的连接参数：超时短、只重试一次，后端故障尽快降级为 miss。
func DefaultRedisOptions(addr string, db int) *redis.Options {
	return &redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  300 * time.Millisecond,
		WriteTimeout: 300 * time.Millisecond,
		MaxRetries:   1,
	}
}

// NewRedisStoreWithOptions 使用完整的 redis.Options 创建 RedisStore。
func NewRedisStoreWithOptions(opts *redis.Options) *RedisStore {
	return &RedisStore{client: redis.NewClient(opts)}
}

func (r *RedisStore) Name() string { return "redis" }

// Ping 检查连接。
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return core.Unavailable(core.ModuleStore, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, core.Unavailable(core.ModuleStore, err)
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}
	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return core.Unavailable(core.ModuleStore, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return core.Unavailable(core.ModuleStore, err)
	}
	return nil
}

func (r *RedisStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return make(map[string][]byte), nil
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, core.Unavailable(core.ModuleStore, err)
	}

	result := make(map[string][]byte, len(keys))
	for i, k := range keys {
		if vals[i] != nil {
			if s, ok := vals[i].(string); ok {
				result[k] = []byte(s)
			}
		}
	}
	return result, nil
}

func (r *RedisStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	pipe := r.client.Pipeline()
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}

	for k, v := range kvs {
		pipe.Set(ctx, k, v, expiration)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return core.Unavailable(core.ModuleStore, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ core.Store = (*RedisStore)(nil)
