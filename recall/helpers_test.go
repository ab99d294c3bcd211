package recall

import (
	"context"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/store"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestCatalog(products []core.Product, log []core.Interaction) *store.MemoryCatalog {
	c := store.NewMemoryCatalog()
	c.PutProducts(products...)
	ins := c.Interactions()
	for i, in := range log {
		if in.Timestamp.IsZero() {
			// 按写入顺序递增，保证 NewestFirst 可预期
			in.Timestamp = testNow.Add(-time.Duration(len(log)-i) * time.Minute)
		}
		if _, err := ins.Create(context.Background(), in); err != nil {
			panic(err)
		}
	}
	return c
}

func act(user, product string, t core.InteractionType) core.Interaction {
	return core.Interaction{UserID: user, ProductID: product, Type: t}
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

type stubSource struct {
	name  string
	items []*core.Item
	err   error
	delay time.Duration
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.items, s.err
}
