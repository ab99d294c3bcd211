package recall

import (
	"context"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// ColdStart 是没有任何个性化信号时的兜底召回：
// 评分 >= Config.ColdStartMinRating 且 featured 的商品，按 (评分降序, 上架时间降序)。
// 给定相同的商品快照，结果完全确定。
type ColdStart struct {
	Products core.ProductStore
	Config   *core.Config
}

func (r *ColdStart) Name() string        { return "recall.cold_start" }
func (r *ColdStart) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ColdStart) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *ColdStart) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Products == nil {
		return nil, nil
	}
	cfg := orDefault(r.Config)

	products, err := r.Products.FindMany(ctx, core.ProductFilter{
		FeaturedOnly: true,
		MinRating:    cfg.ColdStartMinRating,
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Rating != products[j].Rating {
			return products[i].Rating > products[j].Rating
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	out := make([]*core.Item, 0, len(products))
	for _, p := range products {
		it := core.NewProductItem(p, p.Rating)
		it.PutLabel("recall_source", utils.Label{Value: "cold_start", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
