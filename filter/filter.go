package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Preparer 由需要按请求加载数据的过滤器实现（例如用户已交互商品）。
// FilterNode 每次 Process 调用一次 Prepare，用返回的 Filter 过滤本次请求的候选；
// 过滤器本身保持无状态，可在并发请求间共享。
type Preparer interface {
	Prepare(ctx context.Context, rctx *core.RecommendContext) (Filter, error)
}
