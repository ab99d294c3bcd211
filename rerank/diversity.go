package rerank

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Diversity 是按类目打散的 ReRank：每个类目最多 MaxPerCategory 个商品留在前列，
// 超出的按原顺序挪到队尾（不丢弃，TopN 仍可补满）。
// MaxPerCategory <= 0 时不做处理。
type Diversity struct {
	MaxPerCategory int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.MaxPerCategory <= 0 || len(items) == 0 {
		return items, nil
	}

	seen := make(map[string]int, 16)
	head := make([]*core.Item, 0, len(items))
	var tail []*core.Item

	for _, it := range items {
		if it == nil {
			continue
		}
		cate := ""
		if it.Product != nil {
			cate = it.Product.Category
		}
		if cate == "" {
			head = append(head, it)
			continue
		}
		if seen[cate] >= n.MaxPerCategory {
			tail = append(tail, it)
			continue
		}
		seen[cate]++
		head = append(head, it)
	}

	return append(head, tail...), nil
}
