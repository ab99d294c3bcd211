package core

// UserProfile 是从行为日志汇总出的用户画像（只读视图，不持久化）。
//
//	维度          作用
//	行为计数      运营展示 / 冷启动判断
//	最近浏览      "最近看过"
//	喜欢/购买     排除已购、解释推荐
//	类目偏好      内容推荐解释 / 前端个性化
type UserProfile struct {
	UserID string `json:"user_id"`

	TotalViews     int `json:"total_views"`
	TotalLikes     int `json:"total_likes"`
	TotalPurchases int `json:"total_purchases"`

	RecentlyViewed    []string `json:"recently_viewed"`
	LikedProducts     []string `json:"liked_products"`
	PurchasedProducts []string `json:"purchased_products"`

	// CategoryPreferences 类目 → Σ 行为权重
	CategoryPreferences map[string]float64 `json:"category_preferences,omitempty"`
}

// NewUserProfile 创建一个新的用户画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:              userID,
		RecentlyViewed:      make([]string, 0),
		LikedProducts:       make([]string, 0),
		PurchasedProducts:   make([]string, 0),
		CategoryPreferences: make(map[string]float64),
	}
}

// IsCold 用户没有任何正向信号。
func (p *UserProfile) IsCold() bool {
	return p.TotalViews == 0 && p.TotalLikes == 0 && p.TotalPurchases == 0
}

// TopCategory 返回偏好权重最高的类目，没有偏好时返回空字符串。
func (p *UserProfile) TopCategory() string {
	var (
		best  string
		bestW float64
		first = true
	)
	for c, w := range p.CategoryPreferences {
		if first || w > bestW || (w == bestW && c < best) {
			best, bestW, first = c, w, false
		}
	}
	return best
}
