package recall

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/similarity"
)

// UserBasedCF 是基于用户的协同过滤召回源（User-based Collaborative Filtering, User-CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的物品"
//
// 算法流程：
//  1. 行为日志 → 用户 × 商品矩阵（BuildMatrix）
//  2. 目标用户与其他每个用户的行向量做余弦相似度（按商品并集对齐）
//  3. 保留 TopK（Config.SimilarUsers）个相似用户，相同相似度按矩阵中的用户顺序
//  4. 对目标用户没有交互过的商品预测分数：Σ(sim × cell) / Σ sim，Σ sim <= 0 时为 0
//  5. 按预测分数降序，同分按商品在存储中的写入顺序
//
// 目标用户不在矩阵中（零行为）返回空结果：这是冷用户信号，不是错误。
type UserBasedCF struct {
	Interactions core.InteractionStore
	Products     core.ProductStore
	Config       *core.Config
}

func (r *UserBasedCF) Name() string        { return "recall.u2i" }
func (r *UserBasedCF) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *UserBasedCF) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *UserBasedCF) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Interactions == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	preds, err := r.Predict(ctx, rctx.UserID)
	if err != nil || len(preds) == 0 {
		return nil, err
	}

	ids := make([]string, len(preds))
	scores := make(map[string]float64, len(preds))
	for i, p := range preds {
		ids[i] = p.ProductID
		scores[p.ProductID] = p.Score
	}
	// 行为日志里有、商品库里已经没有的商品会被跳过
	return scoredItems(ctx, r.Products, ids, scores, "cf")
}

// Prediction 是协同过滤对一个商品的预测分数。
type Prediction struct {
	ProductID string
	Score     float64
}

type neighbour struct {
	userID string
	sim    float64
	order  int
}

// Predict 返回目标用户所有未交互商品的预测分数（降序）。
func (r *UserBasedCF) Predict(ctx context.Context, userID string) ([]Prediction, error) {
	log, err := r.Interactions.FindMany(ctx, core.InteractionFilter{})
	if err != nil {
		return nil, err
	}
	cfg := orDefault(r.Config)
	m, err := BuildMatrix(ctx, log, cfg.Weight, cfg.WorkerCount())
	if err != nil {
		return nil, err
	}
	target, ok := m.Row(userID)
	if !ok {
		return nil, nil
	}

	neighbours, err := similarUsers(ctx, cfg, m, userID, target)
	if err != nil {
		return nil, err
	}

	preds := make([]Prediction, 0)
	for _, pid := range m.Products() {
		if _, seen := target[pid]; seen {
			continue
		}
		var weighted, simSum float64
		for _, nb := range neighbours {
			weighted += nb.sim * m.Cell(nb.userID, pid)
			simSum += nb.sim
		}
		score := 0.0
		if simSum > 0 {
			score = weighted / simSum
		}
		preds = append(preds, Prediction{ProductID: pid, Score: score})
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Score > preds[j].Score
	})
	return preds, nil
}

// similarUsers 并发计算目标用户与其他用户的相似度，返回 TopK。
// 每个 goroutine 只写 sims 中自己的下标，矩阵只读。
func similarUsers(ctx context.Context, cfg *core.Config, m *UserItemMatrix, userID string, target map[string]float64) ([]neighbour, error) {
	users := m.Users()
	sims := make([]neighbour, len(users))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.WorkerCount())
	for i, other := range users {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			if other == userID {
				sims[i] = neighbour{order: -1}
				return nil
			}
			row, _ := m.Row(other)
			sims[i] = neighbour{userID: other, sim: similarity.CosineSparse(target, row), order: i}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]neighbour, 0, len(sims))
	for _, s := range sims {
		if s.order >= 0 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].sim > out[j].sim
	})

	k := cfg.SimilarUsers
	if k <= 0 {
		k = 10
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
