// Package conv 提供类型转换、向量编解码等工具，用于简化存储适配层中的重复逻辑。
package conv

import (
	"fmt"
	"math"
	"strings"

	json "github.com/goccy/go-json"
)

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// SliceAnyToFloat64 将 []any 转为 []float64，任一元素不是数字时返回 false。
func SliceAnyToFloat64(raw []any) ([]float64, bool) {
	out := make([]float64, 0, len(raw))
	for _, e := range raw {
		f, ok := ToFloat64(e)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

// ParseVector 解析字符串编码的特征向量（JSON 数组，如 "[0.1, 0.2]"）。
// 空字符串返回 nil 向量，不报错。
func ParseVector(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("parse vector: %w", err)
	}
	vec, ok := SliceAnyToFloat64(raw)
	if !ok {
		return nil, fmt.Errorf("parse vector: non-numeric element in %q", s)
	}
	return vec, nil
}

// FormatVector 把向量编码为 JSON 数组字符串，ParseVector 的逆操作。
// NaN/Inf 无法用 JSON 表示，返回错误。
func FormatVector(v []float64) (string, error) {
	for i, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("format vector: element %d is %v", i, f)
		}
	}
	if v == nil {
		v = []float64{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("format vector: %w", err)
	}
	return string(b), nil
}
