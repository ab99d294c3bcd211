package core

import (
	"math"
	"time"
)

// Product 是推荐链路使用的商品快照（每次请求只读）。
//
// FeatureVector 是上游预计算好的定长特征向量，所有商品共享同一长度 L。
// 字符串编码的向量只在存储适配层解析一次，打分代码只处理 []float64。
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory,omitempty"`
	Rating        float64   `json:"rating"` // [0, 5]
	IsFeatured    bool      `json:"is_featured"`
	IsOnSale      bool      `json:"is_on_sale"`
	FeatureVector []float64 `json:"feature_vector,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate 校验单个商品：rating 在 [0,5]，特征向量的分量都是有限数。
// 向量长度是否与其他商品一致由存储层检查。
func (p *Product) Validate() error {
	if math.IsNaN(p.Rating) || p.Rating < 0 || p.Rating > 5 {
		return InvalidInputf(ModuleStore, "product %q rating %v out of range [0,5]", p.ID, p.Rating)
	}
	for i, v := range p.FeatureVector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return InvalidInputf(ModuleStore, "product %q feature_vector[%d] is not finite", p.ID, i)
		}
	}
	return nil
}

// ProductFilter 是 ProductStore.FindMany 的查询条件，零值字段表示不限制。
type ProductFilter struct {
	IDs          []string // 只返回这些 ID
	ExcludeIDs   []string // 排除这些 ID
	Category     string
	MinRating    float64
	FeaturedOnly bool
}

// Match 判断商品是否满足过滤条件（供内存实现复用）。
func (f ProductFilter) Match(p *Product) bool {
	if p == nil {
		return false
	}
	if len(f.IDs) > 0 && !containsString(f.IDs, p.ID) {
		return false
	}
	if len(f.ExcludeIDs) > 0 && containsString(f.ExcludeIDs, p.ID) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinRating > 0 && p.Rating < f.MinRating {
		return false
	}
	if f.FeaturedOnly && !p.IsFeatured {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
