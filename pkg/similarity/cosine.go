// Package similarity 提供定长数值向量之间的相似度计算。
package similarity

import (
	"math"

	"github.com/rushteam/shoprec/core"
)

// Cosine 计算两个向量的余弦相似度，结果在 [-1, 1]。
//
// 长度不一致返回 INVALID_INPUT；任一向量模长为 0 时返回 0（视为完全不相似，而非未定义）。
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, core.InvalidInputf(core.ModuleVector, "vector length mismatch: %d != %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// 浮点误差可能略超出 [-1, 1]
	return math.Max(-1, math.Min(1, sim)), nil
}

// CosineSparse 计算两个稀疏向量（key → value）在 key 并集上对齐后的余弦相似度。
// 缺失的 key 按 0 补齐，补齐只作用于本次计算。
func CosineSparse[K comparable](a, b map[K]float64) float64 {
	keys := make([]K, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	va := make([]float64, len(keys))
	vb := make([]float64, len(keys))
	for i, k := range keys {
		va[i] = a[k]
		vb[i] = b[k]
	}
	// 长度由构造保证一致
	sim, _ := Cosine(va, vb)
	return sim
}

// WeightedSum 计算 Σ weights[i] * vectors[i]，dim 为结果向量长度。
// 长度与 dim 不一致的向量返回 INVALID_INPUT。
func WeightedSum(dim int, vectors [][]float64, weights []float64) ([]float64, error) {
	if len(vectors) != len(weights) {
		return nil, core.InvalidInputf(core.ModuleVector, "vectors/weights count mismatch: %d != %d", len(vectors), len(weights))
	}
	out := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, core.InvalidInputf(core.ModuleVector, "vector length mismatch: %d != %d", len(v), dim)
		}
		w := weights[i]
		for j := range v {
			out[j] += w * v[j]
		}
	}
	return out, nil
}
