package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// RecentlyViewed 是基于用户浏览历史的召回源："最近看过"。
// 去重后按最近一次浏览时间倒序，Score 为倒序名次（越新越大）。
type RecentlyViewed struct {
	Interactions core.InteractionStore
	Products     core.ProductStore
}

func (r *RecentlyViewed) Name() string        { return "recall.user_history" }
func (r *RecentlyViewed) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *RecentlyViewed) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *RecentlyViewed) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Interactions == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	views, err := r.Interactions.FindMany(ctx, core.InteractionFilter{
		UserID:      rctx.UserID,
		Types:       []core.InteractionType{core.InteractionView},
		NewestFirst: true,
	})
	if err != nil || len(views) == 0 {
		return nil, err
	}

	ids := make([]string, 0, len(views))
	seen := make(map[string]struct{}, len(views))
	for _, v := range views {
		if _, ok := seen[v.ProductID]; ok {
			continue
		}
		seen[v.ProductID] = struct{}{}
		ids = append(ids, v.ProductID)
		if rctx.Limit > 0 && len(ids) == rctx.Limit {
			break
		}
	}

	byID, err := loadProducts(ctx, r.Products, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*core.Item, 0, len(ids))
	for i, id := range ids {
		p, ok := byID[id]
		if !ok {
			continue
		}
		it := core.NewProductItem(p, float64(len(ids)-i))
		it.PutLabel("recall_source", utils.Label{Value: "recently_viewed", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
