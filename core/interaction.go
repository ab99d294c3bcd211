package core

import (
	"strings"
	"time"
)

// InteractionType 是用户行为类型。
type InteractionType string

const (
	InteractionSearch         InteractionType = "search"
	InteractionView           InteractionType = "view"
	InteractionLike           InteractionType = "like"
	InteractionPurchase       InteractionType = "purchase"
	InteractionAddToCart      InteractionType = "addToCart"
	InteractionRemoveFromCart InteractionType = "removeFromCart" // 负权重，表示撤销
)

// InteractionTypes 返回标准行为类型列表。
func InteractionTypes() []InteractionType {
	return []InteractionType{
		InteractionSearch,
		InteractionView,
		InteractionLike,
		InteractionPurchase,
		InteractionAddToCart,
		InteractionRemoveFromCart,
	}
}

// Valid 判断是否为标准行为类型。
// 非标准类型（例如部分前端上报的 "dislike"）不会报错，只是权重为 0。
func (t InteractionType) Valid() bool {
	for _, v := range InteractionTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// ParseInteractionType 不区分大小写地匹配标准行为类型（环境变量会被转成小写，
// "addtocart" 需要还原为 addToCart）。
func ParseInteractionType(s string) (InteractionType, bool) {
	for _, v := range InteractionTypes() {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	return InteractionType(s), false
}

// Interaction 是一条不可变的用户行为日志，只追加不修改。
type Interaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ProductID string          `json:"product_id"`
	Type      InteractionType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
}

// InteractionFilter 是 InteractionStore.FindMany 的查询条件，零值字段表示不限制。
type InteractionFilter struct {
	UserID     string
	ProductIDs []string
	Types      []InteractionType
	Since      time.Time // Timestamp >= Since
	// NewestFirst 为 true 时按时间倒序返回，否则按写入顺序
	NewestFirst bool
	// Limit <= 0 表示不限制
	Limit int
}

// Match 判断行为是否满足过滤条件（供内存实现复用，不处理排序和 Limit）。
func (f InteractionFilter) Match(in *Interaction) bool {
	if in == nil {
		return false
	}
	if f.UserID != "" && in.UserID != f.UserID {
		return false
	}
	if len(f.ProductIDs) > 0 && !containsString(f.ProductIDs, in.ProductID) {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == in.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.Since.IsZero() && in.Timestamp.Before(f.Since) {
		return false
	}
	return true
}
