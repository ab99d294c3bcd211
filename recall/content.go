package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/similarity"
	"github.com/rushteam/shoprec/pkg/utils"
)

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户喜欢具有某些特征的物品，推荐具有相似特征的其他物品"
//
//  1. 取用户最近 Config.RecentInteractions 条行为（按时间倒序）
//  2. 用户画像向量 = Σ 行为权重 × 商品特征向量
//  3. 画像与每个未交互商品的特征向量做余弦相似度，降序
//
// 没有行为历史时返回空结果。没有特征向量的商品得分为 0；
// 非空但长度不一致的向量返回 INVALID_INPUT（数据问题，不静默吞掉）。
type ContentRecall struct {
	Interactions core.InteractionStore
	Products     core.ProductStore
	Config       *core.Config
}

func (r *ContentRecall) Name() string        { return "recall.content" }
func (r *ContentRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ContentRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Interactions == nil || r.Products == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	cfg := orDefault(r.Config)

	recent, err := r.Interactions.FindMany(ctx, core.InteractionFilter{
		UserID:      rctx.UserID,
		NewestFirst: true,
		Limit:       cfg.RecentInteractions,
	})
	if err != nil || len(recent) == 0 {
		return nil, err
	}

	profile, interacted, err := r.profile(ctx, cfg, recent)
	if err != nil || profile == nil {
		return nil, err
	}

	candidates, err := r.Products.FindMany(ctx, core.ProductFilter{ExcludeIDs: interacted})
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, p := range candidates {
		var sim float64
		if len(p.FeatureVector) > 0 {
			sim, err = similarity.Cosine(profile, p.FeatureVector)
			if err != nil {
				return nil, err
			}
		}
		it := core.NewProductItem(p, sim)
		it.SetSimilarity(sim)
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		out = append(out, it)
	}
	core.SortByScore(out)
	return out, nil
}

// profile 构建用户画像向量，同时返回这批行为涉及的商品 ID。
// 向量维度取第一个有特征向量的商品；全部没有向量时返回 nil 画像。
func (r *ContentRecall) profile(ctx context.Context, cfg *core.Config, recent []core.Interaction) ([]float64, []string, error) {
	ids := make([]string, 0, len(recent))
	seen := make(map[string]struct{}, len(recent))
	for _, in := range recent {
		if _, ok := seen[in.ProductID]; ok {
			continue
		}
		seen[in.ProductID] = struct{}{}
		ids = append(ids, in.ProductID)
	}

	byID, err := loadProducts(ctx, r.Products, ids)
	if err != nil {
		return nil, nil, err
	}

	var (
		dim     int
		vectors [][]float64
		weights []float64
	)
	for _, in := range recent {
		p, ok := byID[in.ProductID]
		if !ok || len(p.FeatureVector) == 0 {
			continue
		}
		if dim == 0 {
			dim = len(p.FeatureVector)
		}
		vectors = append(vectors, p.FeatureVector)
		weights = append(weights, cfg.Weight(in.Type))
	}
	if dim == 0 {
		return nil, ids, nil
	}

	profile, err := similarity.WeightedSum(dim, vectors, weights)
	if err != nil {
		return nil, nil, err
	}
	return profile, ids, nil
}
