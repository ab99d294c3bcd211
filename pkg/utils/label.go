// Package utils 放置推荐链路共用的小工具。
package utils

import "strings"

// Label 记录候选的来源和处理痕迹（recall_source / hybrid_source / filtered ...），
// 随 Item 进入缓存，用于解释推荐结果。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank / rule
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积。
// 任一侧 Value 为空时直接取另一侧。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// Values 拆开累积后的 Value。
func (l Label) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, "|")
}

// HasValue 判断累积的 Value 中是否包含 v，例如 hybrid_source 是否含 "content"。
func (l Label) HasValue(v string) bool {
	for _, s := range l.Values() {
		if s == v {
			return true
		}
	}
	return false
}
