package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// InteractedFilter 过滤掉用户已经交互过的商品（任意行为类型），
// 保证个性化结果不会重新推出用户看过/买过的商品。
type InteractedFilter struct {
	Interactions core.InteractionStore
}

func (f *InteractedFilter) Name() string {
	return "filter.interacted"
}

// Prepare 读取用户的全部交互商品。没有用户 ID 时不做过滤。
func (f *InteractedFilter) Prepare(ctx context.Context, rctx *core.RecommendContext) (Filter, error) {
	if f.Interactions == nil || rctx == nil || rctx.UserID == "" {
		return IDSetFilter{name: f.Name()}, nil
	}
	log, err := f.Interactions.FindMany(ctx, core.InteractionFilter{UserID: rctx.UserID})
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(log))
	for _, in := range log {
		ids[in.ProductID] = struct{}{}
	}
	return IDSetFilter{name: f.Name(), ids: ids}, nil
}

// ShouldFilter 未经 Prepare 直接调用时逐条查询存储（较慢，仅作兜底）。
func (f *InteractedFilter) ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	bound, err := f.Prepare(ctx, rctx)
	if err != nil {
		return false, err
	}
	return bound.ShouldFilter(ctx, rctx, item)
}

// IDSetFilter 过滤 ID 在集合中的商品。
type IDSetFilter struct {
	name string
	ids  map[string]struct{}
}

func (f IDSetFilter) Name() string { return f.name }

func (f IDSetFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := f.ids[item.ID]
	return ok, nil
}
