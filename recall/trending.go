package recall

import (
	"context"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Trending 是热门召回源：时间窗口内按行为权重累计的商品热度。
//
// 窗口起点 = now − {1 天, 7 天, 1 个月}（rctx.Window，为空时按 week），
// 只统计 Config.TrendingTypes（默认 view/like/purchase）。
// 窗口内没有行为时返回空结果。
type Trending struct {
	Interactions core.InteractionStore
	Products     core.ProductStore
	Config       *core.Config

	// Now 用于测试注入时钟，为空时使用 time.Now
	Now func() time.Time
}

func (r *Trending) Name() string        { return "recall.trending" }
func (r *Trending) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Trending) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Trending) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Interactions == nil {
		return nil, nil
	}
	window := core.WindowWeek
	if rctx != nil && rctx.Window != "" {
		window = rctx.Window
	}
	ids, scores, err := r.Counts(ctx, window)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return scoredItems(ctx, r.Products, ids, scores, "trending")
}

// Counts 返回窗口内各商品的加权热度，ids 为首次出现顺序。
func (r *Trending) Counts(ctx context.Context, window core.Window) ([]string, map[string]float64, error) {
	cfg := orDefault(r.Config)
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	log, err := r.Interactions.FindMany(ctx, core.InteractionFilter{
		Types: cfg.TrendingTypes,
		Since: window.Start(now()),
	})
	if err != nil {
		return nil, nil, err
	}

	var (
		ids    []string
		scores = make(map[string]float64)
	)
	for _, in := range log {
		if _, ok := scores[in.ProductID]; !ok {
			ids = append(ids, in.ProductID)
		}
		scores[in.ProductID] += cfg.Weight(in.Type)
	}
	return ids, scores, nil
}
