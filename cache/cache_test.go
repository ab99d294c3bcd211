package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/store"
)

func entry(limit int, ids ...string) *Entry {
	e := &Entry{Limit: limit}
	for _, id := range ids {
		e.Items = append(e.Items, core.NewProductItem(core.Product{ID: id, Rating: 4}, 1))
	}
	return e
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestKey(t *testing.T) {
	assert.Equal(t, "rec:personalized:u1", Key(KindPersonalized, "u1"))
	assert.Equal(t, "rec:trending:week", Key(KindTrending, "week"))
	assert.Equal(t, "rec:cold_start", Key(KindColdStart))
	assert.NotEqual(t, Key(KindSimilar, "a", "b"), Key(KindSimilar, "b", "a"))
}

func TestCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	defer backend.Close()
	c := New(backend, core.DefaultConfig(), zerolog.Nop())

	_, ok := c.Get(ctx, KindSimilar, "p1")
	assert.False(t, ok)

	c.Set(ctx, KindSimilar, []string{"p1"}, entry(5, "p2", "p3"))
	got, ok := c.Get(ctx, KindSimilar, "p1")
	require.True(t, ok)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, []string{"p2", "p3"}, itemIDs(got.Items))
	assert.Equal(t, 4.0, got.Items[0].Product.Rating)

	c.Invalidate(ctx, KindSimilar, "p1")
	_, ok = c.Get(ctx, KindSimilar, "p1")
	assert.False(t, ok)
}

func TestCache_Lookup(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	defer backend.Close()
	c := New(backend, nil, zerolog.Nop())

	c.Set(ctx, KindTrending, []string{"day"}, entry(3, "a", "b", "c"))

	items, ok := c.Lookup(ctx, KindTrending, 2, "day")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, itemIDs(items))

	_, ok = c.Lookup(ctx, KindTrending, 10, "day")
	assert.False(t, ok, "entry computed for a smaller limit is a miss")

	// 结果本身不足 limit 但计算时的 limit 足够：仍然命中
	c.Set(ctx, KindTrending, []string{"week"}, entry(10, "a"))
	items, ok = c.Lookup(ctx, KindTrending, 10, "week")
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestCache_InvalidationRules(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	defer backend.Close()
	c := New(backend, nil, zerolog.Nop())

	c.Set(ctx, KindPersonalized, []string{"u1"}, entry(10, "p1"))
	c.Set(ctx, KindPersonalized, []string{"u2"}, entry(10, "p1"))
	c.Set(ctx, KindSimilar, []string{"p1"}, entry(5, "p2"))
	c.Set(ctx, KindSimilar, []string{"p9"}, entry(5, "p2"))
	for _, w := range core.Windows() {
		c.Set(ctx, KindTrending, []string{string(w)}, entry(10, "p1"))
	}
	c.Set(ctx, KindColdStart, nil, entry(10, "p1"))

	c.InvalidateUser(ctx, "u1")
	_, ok := c.Get(ctx, KindPersonalized, "u1")
	assert.False(t, ok)
	_, ok = c.Get(ctx, KindPersonalized, "u2")
	assert.True(t, ok)

	c.InvalidateProduct(ctx, "p1")
	_, ok = c.Get(ctx, KindSimilar, "p1")
	assert.False(t, ok)
	_, ok = c.Get(ctx, KindSimilar, "p9")
	assert.True(t, ok)
	for _, w := range core.Windows() {
		_, ok = c.Get(ctx, KindTrending, string(w))
		assert.False(t, ok, "trending %s", w)
	}
	_, ok = c.Get(ctx, KindColdStart)
	assert.True(t, ok)
}

func TestCache_TTL(t *testing.T) {
	ctx := context.Background()
	backend := &recordingStore{Store: store.NewMemoryStore()}
	defer backend.Close()
	cfg := core.DefaultConfig()
	c := New(backend, cfg, zerolog.Nop())

	c.Set(ctx, KindColdStart, nil, entry(10, "p1"))
	assert.Equal(t, 1800, backend.lastTTL)

	c.Set(ctx, KindColdStart, nil, entry(10, "p1"), time.Minute)
	assert.Equal(t, 60, backend.lastTTL)
}

func TestCache_Disabled(t *testing.T) {
	ctx := context.Background()
	c := New(nil, nil, zerolog.Nop())
	assert.False(t, c.Enabled())
	assert.Equal(t, "disabled", c.State())

	c.Set(ctx, KindColdStart, nil, entry(10, "p1"))
	_, ok := c.Get(ctx, KindColdStart)
	assert.False(t, ok)
	c.InvalidateProduct(ctx, "p1")
}

func TestCache_BackendDownDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	backend := &failingStore{err: core.Unavailable(core.ModuleStore, errors.New("connection refused"))}
	cfg := core.DefaultConfig()
	cfg.Breaker.FailureThreshold = 3
	c := New(backend, cfg, zerolog.Nop())

	for i := 0; i < 5; i++ {
		_, ok := c.Get(ctx, KindPersonalized, "u1")
		assert.False(t, ok)
		c.Set(ctx, KindPersonalized, []string{"u1"}, entry(10, "p1"))
	}
	c.InvalidateUser(ctx, "u1")

	assert.Equal(t, "open", c.State())
	assert.Equal(t, int32(3), backend.calls.Load(), "breaker stops calling the backend once open")
}

func TestCache_RealRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	backend := store.NewRedisStore("127.0.0.1:1", 0)
	defer backend.Close()
	c := New(backend, nil, zerolog.Nop())

	c.Set(ctx, KindColdStart, nil, entry(10, "p1"))
	_, ok := c.Get(ctx, KindColdStart)
	assert.False(t, ok)
}

func TestCache_UndecodableEntry(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	defer backend.Close()
	require.NoError(t, backend.Set(ctx, Key(KindColdStart), []byte("not json")))

	c := New(backend, nil, zerolog.Nop())
	_, ok := c.Get(ctx, KindColdStart)
	assert.False(t, ok)
}

type recordingStore struct {
	core.Store
	lastTTL int
}

func (s *recordingStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	if len(ttl) > 0 {
		s.lastTTL = ttl[0]
	}
	return s.Store.Set(ctx, key, value, ttl...)
}

type failingStore struct {
	err   error
	calls atomic.Int32
}

func (s *failingStore) Name() string { return "failing" }
func (s *failingStore) Get(context.Context, string) ([]byte, error) {
	s.calls.Add(1)
	return nil, s.err
}
func (s *failingStore) Set(context.Context, string, []byte, ...int) error {
	s.calls.Add(1)
	return s.err
}
func (s *failingStore) Delete(context.Context, string) error {
	s.calls.Add(1)
	return s.err
}
func (s *failingStore) BatchGet(context.Context, []string) (map[string][]byte, error) {
	return nil, s.err
}
func (s *failingStore) BatchSet(context.Context, map[string][]byte, ...int) error { return s.err }
func (s *failingStore) Close() error                                             { return nil }
