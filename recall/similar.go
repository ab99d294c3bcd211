package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/similarity"
	"github.com/rushteam/shoprec/pkg/utils"
)

// Similar 是相似商品召回（i2i）：同类目下、除自身外的商品，按特征向量余弦相似度降序。
//
// rctx.ProductID 不存在时返回 NOT_FOUND。
type Similar struct {
	Products core.ProductStore
}

func (r *Similar) Name() string        { return "recall.i2i" }
func (r *Similar) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Similar) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Similar) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Products == nil {
		return nil, nil
	}
	if rctx == nil || rctx.ProductID == "" {
		return nil, core.InvalidInputf(core.ModuleRecall, "similar: product id is required")
	}

	src, err := r.Products.FindByID(ctx, rctx.ProductID)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, core.NotFoundf(core.ModuleRecall, "product %s not found", rctx.ProductID)
	}

	candidates, err := r.Products.FindMany(ctx, core.ProductFilter{
		Category:   src.Category,
		ExcludeIDs: []string{src.ID},
	})
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, p := range candidates {
		var sim float64
		if len(src.FeatureVector) > 0 && len(p.FeatureVector) > 0 {
			sim, err = similarity.Cosine(src.FeatureVector, p.FeatureVector)
			if err != nil {
				return nil, err
			}
		}
		it := core.NewProductItem(p, sim)
		it.SetSimilarity(sim)
		it.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})
		out = append(out, it)
	}
	core.SortByScore(out)
	return out, nil
}
