package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

// Source 表示一个可复用的召回源（协同过滤/内容/热门/冷启动/相似/...）。
// 你可以把它理解为“可并发 fan-out 的策略单元”。
//
// 召回源返回按分数降序的全部候选，不做 limit 截断：截断由 Pipeline 末端的 TopN 完成，
// 保证业务规则过滤之后仍能凑满 limit。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

func orDefault(cfg *core.Config) *core.Config {
	if cfg == nil {
		return core.DefaultConfig()
	}
	return cfg
}

// loadProducts 批量读取商品详情，返回 id → 商品。
func loadProducts(ctx context.Context, ps core.ProductStore, ids []string) (map[string]core.Product, error) {
	out := make(map[string]core.Product, len(ids))
	if ps == nil || len(ids) == 0 {
		return out, nil
	}
	products, err := ps.FindMany(ctx, core.ProductFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// scoredItems 读取 ids 对应的商品并按 scores 打分、降序。
//
// 商品按存储返回的顺序构建，因此同分时的先后由存储的写入顺序决定；
// 存储中已不存在的 id 被跳过。
func scoredItems(ctx context.Context, ps core.ProductStore, ids []string, scores map[string]float64, source string) ([]*core.Item, error) {
	if ps == nil || len(ids) == 0 {
		return nil, nil
	}
	products, err := ps.FindMany(ctx, core.ProductFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	out := make([]*core.Item, 0, len(products))
	for _, p := range products {
		it := core.NewProductItem(p, scores[p.ID])
		it.PutLabel("recall_source", utils.Label{Value: source, Source: "recall"})
		out = append(out, it)
	}
	core.SortByScore(out)
	return out, nil
}
