package core

import (
	"sort"

	"github.com/rushteam/shoprec/pkg/utils"
)

// Item 是推荐链路中的统一承载结构（ScoredProduct）：商品、分数、相似度、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
// 召回阶段可能只填 ID，Product 由后续节点补全。
type Item struct {
	ID      string   `json:"id"`
	Product *Product `json:"product,omitempty"`
	Score   float64  `json:"score"`
	// Similarity 只在基于向量相似度的召回中设置
	Similarity *float64               `json:"similarity,omitempty"`
	Labels     map[string]utils.Label `json:"labels,omitempty"`
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// NewProductItem 用商品快照构建 Item。
func NewProductItem(p Product, score float64) *Item {
	it := NewItem(p.ID)
	pp := p
	it.Product = &pp
	it.Score = score
	return it
}

// SetSimilarity 设置相似度。
func (it *Item) SetSimilarity(sim float64) {
	it.Similarity = &sim
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Products 取出 Items 中的商品（跳过未补全的条目）。
func Products(items []*Item) []Product {
	out := make([]Product, 0, len(items))
	for _, it := range items {
		if it == nil || it.Product == nil {
			continue
		}
		out = append(out, *it.Product)
	}
	return out
}

// SortByScore 按 Score 降序稳定排序，分数相同保持输入顺序（即存储返回的顺序）。
func SortByScore(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

// Truncate 截取前 n 个，n <= 0 时不截断。
func Truncate(items []*Item, n int) []*Item {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
