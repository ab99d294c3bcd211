package engine

import (
	"context"

	"github.com/rushteam/shoprec/cache"
	"github.com/rushteam/shoprec/core"
)

// GetPersonalized 个性化推荐：协同过滤 + 内容推荐的混合结果，不含用户已交互的商品。
// 冷用户返回空结果（不自动兜底，见 GetRecommendations）。limit 为 0 时取 10。
func (e *Engine) GetPersonalized(ctx context.Context, userID string, limit int) ([]core.Product, error) {
	if userID == "" {
		return nil, core.InvalidInputf(core.ModuleEngine, "user id is required")
	}
	limit, err := normalizeLimit(limit, DefaultLimit)
	if err != nil {
		return nil, err
	}
	rctx := &core.RecommendContext{UserID: userID, Limit: limit}
	items, err := e.recommend(ctx, cache.KindPersonalized, []string{userID}, e.personalized, rctx)
	if err != nil {
		return nil, err
	}
	return core.Products(items), nil
}

// GetSimilar 相似商品：同类目，按特征向量余弦相似度。商品不存在返回 NOT_FOUND。
// limit 为 0 时取 5。
func (e *Engine) GetSimilar(ctx context.Context, productID string, limit int) ([]core.Product, error) {
	if productID == "" {
		return nil, core.InvalidInputf(core.ModuleEngine, "product id is required")
	}
	limit, err := normalizeLimit(limit, DefaultSimilarLimit)
	if err != nil {
		return nil, err
	}
	rctx := &core.RecommendContext{ProductID: productID, Limit: limit}
	items, err := e.recommend(ctx, cache.KindSimilar, []string{productID}, e.similar, rctx)
	if err != nil {
		return nil, err
	}
	return core.Products(items), nil
}

// GetTrending 热门商品。window 为空时按 week。limit 为 0 时取 10。
func (e *Engine) GetTrending(ctx context.Context, window core.Window, limit int) ([]core.Product, error) {
	w, err := core.ParseWindow(string(window))
	if err != nil {
		return nil, err
	}
	limit, err = normalizeLimit(limit, DefaultLimit)
	if err != nil {
		return nil, err
	}
	rctx := &core.RecommendContext{Window: w, Limit: limit}
	items, err := e.recommend(ctx, cache.KindTrending, []string{string(w)}, e.trending, rctx)
	if err != nil {
		return nil, err
	}
	return core.Products(items), nil
}

// GetColdStart 冷启动推荐：高评分的推荐位商品。limit 为 0 时取 10。
func (e *Engine) GetColdStart(ctx context.Context, limit int) ([]core.Product, error) {
	limit, err := normalizeLimit(limit, DefaultLimit)
	if err != nil {
		return nil, err
	}
	rctx := &core.RecommendContext{Limit: limit}
	items, err := e.recommend(ctx, cache.KindColdStart, nil, e.coldStart, rctx)
	if err != nil {
		return nil, err
	}
	return core.Products(items), nil
}

// GetRecommendations 带兜底的推荐：个性化结果为空时退回冷启动。
// 返回实际使用的来源（personalized / cold_start）。
func (e *Engine) GetRecommendations(ctx context.Context, userID string, limit int) ([]core.Product, cache.Kind, error) {
	products, err := e.GetPersonalized(ctx, userID, limit)
	if err != nil {
		return nil, "", err
	}
	if len(products) > 0 {
		return products, cache.KindPersonalized, nil
	}
	e.log.Debug().Str("user_id", userID).Msg("no personalized signal, falling back to cold start")
	products, err = e.GetColdStart(ctx, limit)
	if err != nil {
		return nil, "", err
	}
	return products, cache.KindColdStart, nil
}
