package recall

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/core"
)

// Fanout 并发执行多个召回源，按顺序收集各自的结果。
//
// 单个召回源超时按空结果处理，不影响其他召回源；其他错误（例如存储不可达）
// 会中断整个 fan-out 并返回，由上层决定是否降级。
type Fanout struct {
	Sources []Source
	Timeout time.Duration // 每个召回源的超时时间

	// OnTimeout 在某个召回源超时时回调（日志/打点），可为空
	OnTimeout func(source string)
}

// Gather 并发执行所有召回源，按 Sources 的顺序返回各自的结果。
// 调用方阻塞到所有召回源结束（没有部分结果）。
func (n *Fanout) Gather(ctx context.Context, rctx *core.RecommendContext) ([][]*core.Item, error) {
	results := make([][]*core.Item, len(n.Sources))
	if len(n.Sources) == 0 {
		return results, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)

	for i, src := range n.Sources {
		eg.Go(func() error {
			// 超时控制
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := src.Recall(recallCtx, rctx)
			if err != nil {
				// 只有本召回源自己的超时才降级为空结果；外层 ctx 取消照常返回
				if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
					if n.OnTimeout != nil {
						n.OnTimeout(src.Name())
					}
					return nil
				}
				return err
			}
			results[i] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
