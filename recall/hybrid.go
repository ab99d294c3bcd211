package recall

import (
	"context"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// Hybrid 是混合推荐召回：协同过滤 + 内容推荐加权融合。
//
//  1. 两路召回各取 limit × 2，并发执行（Fanout），在这里汇合
//  2. combined += rating/5 × CollaborativeWeight（出现在协同过滤结果中）
//     combined += rating/5 × ContentWeight（出现在内容推荐结果中）
//     两路分数相加，而不是取最大值
//  3. 读取并集商品的最新详情，按 combined 降序
//
// 两路都为空时返回空结果，由上层接冷启动。
type Hybrid struct {
	Collaborative Source
	Content       Source
	Products      core.ProductStore
	Config        *core.Config

	// Timeout 每一路召回的超时，超时的一路按空结果处理
	Timeout   time.Duration
	OnTimeout func(source string)
}

// Breakdown 是单个商品两路召回的得分拆解。
type Breakdown struct {
	Collaborative float64
	Content       float64

	InCollaborative bool
	InContent       bool
}

func (r *Hybrid) Name() string        { return "recall.hybrid" }
func (r *Hybrid) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Hybrid) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Hybrid) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	collab, content, err := r.Sources(ctx, rctx)
	if err != nil {
		return nil, err
	}
	ids, breakdown := r.Combine(collab, content)
	if len(ids) == 0 {
		return nil, nil
	}

	scores := make(map[string]float64, len(breakdown))
	for id, b := range breakdown {
		scores[id] = b.Collaborative + b.Content
	}
	items, err := scoredItems(ctx, r.Products, ids, scores, "hybrid")
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		b := breakdown[it.ID]
		if b.InCollaborative {
			it.PutLabel("hybrid_source", utils.Label{Value: "cf", Source: "recall"})
		}
		if b.InContent {
			it.PutLabel("hybrid_source", utils.Label{Value: "content", Source: "recall"})
		}
	}
	return items, nil
}

// Sources 并发执行两路召回，每一路截取到 limit × 2。
func (r *Hybrid) Sources(ctx context.Context, rctx *core.RecommendContext) (collab, content []*core.Item, err error) {
	limit := rctx.Limit * 2
	sub := *rctx
	sub.Limit = limit

	fan := &Fanout{
		Sources:   []Source{orEmpty(r.Collaborative), orEmpty(r.Content)},
		Timeout:   r.Timeout,
		OnTimeout: r.OnTimeout,
	}
	results, err := fan.Gather(ctx, &sub)
	if err != nil {
		return nil, nil, err
	}
	return core.Truncate(results[0], limit), core.Truncate(results[1], limit), nil
}

// Combine 计算两路召回的加权得分。ids 为并集，协同过滤在前，各自保持原顺序。
func (r *Hybrid) Combine(collab, content []*core.Item) ([]string, map[string]Breakdown) {
	cfg := orDefault(r.Config)
	var (
		ids       []string
		breakdown = make(map[string]Breakdown)
	)
	add := func(items []*core.Item, weight float64, collaborative bool) {
		for _, it := range items {
			if it == nil || it.Product == nil {
				continue
			}
			b, ok := breakdown[it.ID]
			if !ok {
				ids = append(ids, it.ID)
			}
			term := it.Product.Rating / 5 * weight
			if collaborative {
				b.Collaborative += term
				b.InCollaborative = true
			} else {
				b.Content += term
				b.InContent = true
			}
			breakdown[it.ID] = b
		}
	}
	add(collab, cfg.CollaborativeWeight, true)
	add(content, cfg.ContentWeight, false)
	return ids, breakdown
}

type emptySource struct{}

func (emptySource) Name() string { return "recall.empty" }
func (emptySource) Recall(context.Context, *core.RecommendContext) ([]*core.Item, error) {
	return nil, nil
}

func orEmpty(s Source) Source {
	if s == nil {
		return emptySource{}
	}
	return s
}
