package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的商品（下架、合规屏蔽等）。
type BlacklistFilter struct {
	ids map[string]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器，空列表返回 nil。
func NewBlacklistFilter(productIDs []string) *BlacklistFilter {
	if len(productIDs) == 0 {
		return nil
	}
	ids := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		ids[id] = struct{}{}
	}
	return &BlacklistFilter{ids: ids}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := f.ids[item.ID]
	return ok, nil
}
