package engine

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// TrackInteraction 记录一条用户行为，并失效该用户的个性化推荐缓存。
//
// 未知的行为类型照常写入（权重为 0，不影响打分），只记录一条告警。
func (e *Engine) TrackInteraction(ctx context.Context, userID, productID string, typ core.InteractionType) (core.Interaction, error) {
	if userID == "" || productID == "" {
		return core.Interaction{}, core.InvalidInputf(core.ModuleEngine, "user id and product id are required")
	}
	if !typ.Valid() {
		e.log.Warn().Str("type", string(typ)).Str("user_id", userID).Msg("unknown interaction type, stored with weight 0")
	}

	in, err := e.interactions.Create(ctx, core.Interaction{
		UserID:    userID,
		ProductID: productID,
		Type:      typ,
		Timestamp: e.now(),
	})
	if err != nil {
		return core.Interaction{}, err
	}

	e.cache.InvalidateUser(ctx, userID)
	e.log.Debug().
		Str("user_id", userID).
		Str("product_id", productID).
		Str("type", string(typ)).
		Msg("interaction tracked")
	return in, nil
}

// ProductChanged 商品写入（新增/修改/删除）后调用：失效该商品的相似推荐和所有热门榜。
func (e *Engine) ProductChanged(ctx context.Context, productID string) {
	e.cache.InvalidateProduct(ctx, productID)
	e.log.Debug().Str("product_id", productID).Msg("product caches invalidated")
}

// GetRecentlyViewed 用户最近浏览的商品（去重，最新在前）。limit 为 0 时取 5。
func (e *Engine) GetRecentlyViewed(ctx context.Context, userID string, limit int) ([]core.Product, error) {
	if userID == "" {
		return nil, core.InvalidInputf(core.ModuleEngine, "user id is required")
	}
	limit, err := normalizeLimit(limit, DefaultRecentLimit)
	if err != nil {
		return nil, err
	}
	items, err := e.recent.Recall(ctx, &core.RecommendContext{UserID: userID, Limit: limit})
	if err != nil {
		return nil, err
	}
	return core.Products(items), nil
}

// GetUserStats 用户行为统计：浏览/点赞/购买次数，最近 10 次浏览，点赞和购买过的商品。
func (e *Engine) GetUserStats(ctx context.Context, userID string) (*core.UserProfile, error) {
	if userID == "" {
		return nil, core.InvalidInputf(core.ModuleEngine, "user id is required")
	}
	log, err := e.interactions.FindMany(ctx, core.InteractionFilter{UserID: userID, NewestFirst: true})
	if err != nil {
		return nil, err
	}

	profile := core.NewUserProfile(userID)
	for _, in := range log {
		switch in.Type {
		case core.InteractionView:
			profile.TotalViews++
			if len(profile.RecentlyViewed) < recentStats {
				profile.RecentlyViewed = append(profile.RecentlyViewed, in.ProductID)
			}
		case core.InteractionLike:
			profile.TotalLikes++
			profile.LikedProducts = append(profile.LikedProducts, in.ProductID)
		case core.InteractionPurchase:
			profile.TotalPurchases++
			profile.PurchasedProducts = append(profile.PurchasedProducts, in.ProductID)
		}
	}

	prefs, err := e.GetCategoryPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.CategoryPreferences = prefs
	return profile, nil
}

// GetCategoryPreferences 类目偏好：最近 Config.PreferenceInteractions 条行为按类目累计行为权重。
func (e *Engine) GetCategoryPreferences(ctx context.Context, userID string) (map[string]float64, error) {
	recent, err := e.interactions.FindMany(ctx, core.InteractionFilter{
		UserID:      userID,
		NewestFirst: true,
		Limit:       e.cfg.PreferenceInteractions,
	})
	if err != nil {
		return nil, err
	}
	prefs := make(map[string]float64)
	if len(recent) == 0 {
		return prefs, nil
	}

	ids := make([]string, 0, len(recent))
	for _, in := range recent {
		ids = append(ids, in.ProductID)
	}
	products, err := e.products.FindMany(ctx, core.ProductFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	category := make(map[string]string, len(products))
	for _, p := range products {
		category[p.ID] = p.Category
	}

	for _, in := range recent {
		c, ok := category[in.ProductID]
		if !ok || c == "" {
			continue
		}
		prefs[c] += e.cfg.Weight(in.Type)
	}
	return prefs, nil
}
