package recall

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/core"
)

// UserItemMatrix 是稀疏的 用户 × 商品 行为矩阵：userID → (productID → Σ 行为权重)。
//
// 只包含行为日志中出现过的用户和商品；单元格的值与日志的聚合顺序无关。
// 每次计算临时构建，不持久化。
type UserItemMatrix struct {
	users []string // 首次出现顺序
	rows  map[string]map[string]float64
	items []string // 首次出现顺序
}

// BuildMatrix 从行为日志构建矩阵。
//
// 先按用户分组（单次顺序扫描，确定用户/商品顺序），再把用户分片交给 workers 个 goroutine
// 并发聚合；每个 goroutine 只写自己负责的行，没有共享写。
func BuildMatrix(ctx context.Context, log []core.Interaction, weight func(core.InteractionType) float64, workers int) (*UserItemMatrix, error) {
	var (
		userIdx = make(map[string]int)
		groups  [][]int
		m       = &UserItemMatrix{rows: make(map[string]map[string]float64)}
		seen    = make(map[string]struct{})
	)
	for i := range log {
		in := &log[i]
		idx, ok := userIdx[in.UserID]
		if !ok {
			idx = len(m.users)
			userIdx[in.UserID] = idx
			m.users = append(m.users, in.UserID)
			groups = append(groups, nil)
		}
		groups[idx] = append(groups[idx], i)
		if _, ok := seen[in.ProductID]; !ok {
			seen[in.ProductID] = struct{}{}
			m.items = append(m.items, in.ProductID)
		}
	}
	if len(m.users) == 0 {
		return m, nil
	}

	rows := make([]map[string]float64, len(m.users))
	if workers <= 0 {
		workers = 1
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	chunk := (len(m.users) + workers - 1) / workers
	for start := 0; start < len(m.users); start += chunk {
		end := min(start+chunk, len(m.users))
		eg.Go(func() error {
			for u := start; u < end; u++ {
				if err := egCtx.Err(); err != nil {
					return err
				}
				row := make(map[string]float64, len(groups[u]))
				for _, i := range groups[u] {
					row[log[i].ProductID] += weight(log[i].Type)
				}
				rows[u] = row
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for u, id := range m.users {
		m.rows[id] = rows[u]
	}
	return m, nil
}

// Users 返回矩阵中的用户（首次出现顺序）。
func (m *UserItemMatrix) Users() []string { return m.users }

// Products 返回矩阵中的商品（首次出现顺序）。
func (m *UserItemMatrix) Products() []string { return m.items }

// Row 返回用户的行，用户不在矩阵中时 ok=false。
func (m *UserItemMatrix) Row(userID string) (map[string]float64, bool) {
	row, ok := m.rows[userID]
	return row, ok
}

// Cell 返回单元格的值，不存在时为 0。
func (m *UserItemMatrix) Cell(userID, productID string) float64 {
	return m.rows[userID][productID]
}

// DenseRow 把用户行按 Products() 顺序展开为稠密向量（缺失补 0），仅在调用方需要时使用。
func (m *UserItemMatrix) DenseRow(userID string) []float64 {
	row := m.rows[userID]
	out := make([]float64, len(m.items))
	for i, p := range m.items {
		out[i] = row[p]
	}
	return out
}
