package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/shoprec/core"
)

// MemoryCatalog 是内存实现的 ProductStore + InteractionStore，用于测试/开发/演示。
// 查询结果保持写入顺序，排序分数相同时按此顺序决胜。
type MemoryCatalog struct {
	mu           sync.RWMutex
	products     []core.Product
	productIndex map[string]int
	interactions []core.Interaction
	now          func() time.Time
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		productIndex: make(map[string]int),
		now:          time.Now,
	}
}

// PutProduct 写入或替换商品（替换时保留原位置）。
func (c *MemoryCatalog) PutProduct(p core.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = c.now()
	}
	if i, ok := c.productIndex[p.ID]; ok {
		c.products[i] = p
		return
	}
	c.productIndex[p.ID] = len(c.products)
	c.products = append(c.products, p)
}

// SaveProduct 实现 ProductWriter：先校验 rating 和向量，再写入。
func (c *MemoryCatalog) SaveProduct(ctx context.Context, p core.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := c.checkDim(p); err != nil {
		return err
	}
	c.PutProduct(p)
	return nil
}

// checkDim 新向量的长度必须与已存的其他非空向量一致。
func (c *MemoryCatalog) checkDim(p core.Product) error {
	if len(p.FeatureVector) == 0 {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.products {
		other := &c.products[i]
		if other.ID == p.ID || len(other.FeatureVector) == 0 {
			continue
		}
		if len(other.FeatureVector) != len(p.FeatureVector) {
			return core.InvalidInputf(core.ModuleStore, "product %q has a %d-dim vector, want %d",
				p.ID, len(p.FeatureVector), len(other.FeatureVector))
		}
		return nil
	}
	return nil
}

// PutProducts 批量写入商品。
func (c *MemoryCatalog) PutProducts(ps ...core.Product) {
	for _, p := range ps {
		c.PutProduct(p)
	}
}

func (c *MemoryCatalog) FindMany(ctx context.Context, filter core.ProductFilter) ([]core.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]core.Product, 0)
	for i := range c.products {
		if filter.Match(&c.products[i]) {
			out = append(out, c.products[i])
		}
	}
	return out, nil
}

func (c *MemoryCatalog) FindByID(ctx context.Context, id string) (*core.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.productIndex[id]
	if !ok {
		return nil, nil
	}
	p := c.products[i]
	return &p, nil
}

// Interactions 返回 InteractionStore 视图。
//
// ProductStore 与 InteractionStore 的 FindMany 签名不同，同一个类型无法同时实现，
// 因此行为存储通过这个视图暴露。
func (c *MemoryCatalog) Interactions() *MemoryInteractions {
	return &MemoryInteractions{c: c}
}

// MemoryInteractions 是 MemoryCatalog 的行为日志视图。
type MemoryInteractions struct {
	c *MemoryCatalog
}

func (m *MemoryInteractions) FindMany(ctx context.Context, filter core.InteractionFilter) ([]core.Interaction, error) {
	m.c.mu.RLock()
	out := make([]core.Interaction, 0)
	for i := range m.c.interactions {
		if filter.Match(&m.c.interactions[i]) {
			out = append(out, m.c.interactions[i])
		}
	}
	m.c.mu.RUnlock()

	if filter.NewestFirst {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Timestamp.After(out[j].Timestamp)
		})
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MemoryInteractions) Create(ctx context.Context, in core.Interaction) (core.Interaction, error) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()

	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = m.c.now()
	}
	m.c.interactions = append(m.c.interactions, in)
	return in, nil
}

var (
	_ ProductWriter         = (*MemoryCatalog)(nil)
	_ core.ProductStore     = (*MemoryCatalog)(nil)
	_ core.InteractionStore = (*MemoryInteractions)(nil)
)
