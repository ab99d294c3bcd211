package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/shoprec/core"
)

// Fixture 是 YAML 格式的演示/测试数据集。
//
//	products:
//	  - id: p1
//	    category: shoes
//	    rating: 4.5
//	    featured: true
//	    vector: [0.1, 0.9, 0]
//	interactions:
//	  - user: u1
//	    product: p1
//	    type: view
//	    ago: 2h      # 相对于导入时刻；也可以用 at: 2024-05-01T10:00:00Z
type Fixture struct {
	Products     []FixtureProduct     `yaml:"products"`
	Interactions []FixtureInteraction `yaml:"interactions"`
}

type FixtureProduct struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Category    string        `yaml:"category"`
	Subcategory string        `yaml:"subcategory"`
	Rating      float64       `yaml:"rating"`
	Featured    bool          `yaml:"featured"`
	OnSale      bool          `yaml:"on_sale"`
	Vector      []float64     `yaml:"vector"`
	Age         time.Duration `yaml:"age"`
}

type FixtureInteraction struct {
	User    string        `yaml:"user"`
	Product string        `yaml:"product"`
	Type    string        `yaml:"type"`
	Ago     time.Duration `yaml:"ago"`
	At      time.Time     `yaml:"at"`
}

// ParseFixture 解析 YAML 数据。
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, core.InvalidInputf(core.ModuleStore, "parse fixture: %v", err)
	}
	seen := make(map[string]struct{}, len(f.Products))
	dim := 0
	for i, p := range f.Products {
		if p.ID == "" {
			return nil, core.InvalidInputf(core.ModuleStore, "fixture product #%d has no id", i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, core.InvalidInputf(core.ModuleStore, "fixture product %q is duplicated", p.ID)
		}
		seen[p.ID] = struct{}{}

		cp := core.Product{ID: p.ID, Rating: p.Rating, FeatureVector: p.Vector}
		if err := cp.Validate(); err != nil {
			return nil, err
		}
		// 所有非空向量共享同一长度
		if n := len(p.Vector); n > 0 {
			if dim == 0 {
				dim = n
			} else if n != dim {
				return nil, core.InvalidInputf(core.ModuleStore,
					"fixture product %q has a %d-dim vector, want %d", p.ID, n, dim)
			}
		}
	}
	for i, in := range f.Interactions {
		if in.User == "" || in.Product == "" {
			return nil, core.InvalidInputf(core.ModuleStore, "fixture interaction #%d needs user and product", i)
		}
	}
	return &f, nil
}

// LoadFixture 从文件读取并解析 fixture。
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// Seed 把 fixture 写入商品和行为存储，相对时间以 now 为基准。
func (f *Fixture) Seed(ctx context.Context, products ProductWriter, interactions core.InteractionStore, now time.Time) error {
	for _, fp := range f.Products {
		p := core.Product{
			ID:            fp.ID,
			Name:          fp.Name,
			Category:      fp.Category,
			Subcategory:   fp.Subcategory,
			Rating:        fp.Rating,
			IsFeatured:    fp.Featured,
			IsOnSale:      fp.OnSale,
			FeatureVector: fp.Vector,
			CreatedAt:     now.Add(-fp.Age),
		}
		if err := products.SaveProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", fp.ID, err)
		}
	}
	for _, fi := range f.Interactions {
		ts := fi.At
		if ts.IsZero() {
			ts = now.Add(-fi.Ago)
		}
		in := core.Interaction{
			UserID:    fi.User,
			ProductID: fi.Product,
			Type:      core.InteractionType(fi.Type),
			Timestamp: ts,
		}
		if _, err := interactions.Create(ctx, in); err != nil {
			return fmt.Errorf("seed interaction %s/%s: %w", fi.User, fi.Product, err)
		}
	}
	return nil
}
