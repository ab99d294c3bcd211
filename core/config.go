package core

import (
	"runtime"
	"time"
)

// Config 是推荐引擎的统一配置，在构建引擎时注入。
// 混合权重、缓存 TTL、行为权重等全部集中在这里，便于测试和覆盖。
type Config struct {
	// CollaborativeWeight / ContentWeight 是混合推荐中两路召回的权重
	CollaborativeWeight float64 `koanf:"collaborative_weight" yaml:"collaborative_weight"`
	ContentWeight       float64 `koanf:"content_weight" yaml:"content_weight"`

	// CacheTTL 是推荐结果缓存的默认过期时间
	CacheTTL time.Duration `koanf:"cache_ttl" yaml:"cache_ttl"`

	// InteractionWeights 行为类型 → 权重，未知类型权重为 0
	InteractionWeights map[InteractionType]float64 `koanf:"interaction_weights" yaml:"interaction_weights"`

	// SimilarUsers 协同过滤中保留的相似用户数
	SimilarUsers int `koanf:"similar_users" yaml:"similar_users"`

	// RecentInteractions 内容推荐构建用户画像时使用的最近行为数
	RecentInteractions int `koanf:"recent_interactions" yaml:"recent_interactions"`

	// PreferenceInteractions 计算类目偏好时使用的最近行为数
	PreferenceInteractions int `koanf:"preference_interactions" yaml:"preference_interactions"`

	// TrendingTypes 参与热门统计的行为类型
	TrendingTypes []InteractionType `koanf:"trending_types" yaml:"trending_types"`

	// ColdStartMinRating 冷启动商品的最低评分（同时要求 featured）
	ColdStartMinRating float64 `koanf:"cold_start_min_rating" yaml:"cold_start_min_rating"`

	// RankerTimeout 单次召回/排序的超时时间，超时按空结果处理
	RankerTimeout time.Duration `koanf:"ranker_timeout" yaml:"ranker_timeout"`

	// Workers 矩阵聚合与相似度计算的并发数，<= 0 使用 GOMAXPROCS
	Workers int `koanf:"workers" yaml:"workers"`

	// CandidateRule 可选的 CEL 业务规则，对所有候选商品生效，
	// 例如 `product.rating >= 2.0 && product.category != "adult"`
	CandidateRule string `koanf:"candidate_rule" yaml:"candidate_rule"`

	// MaxPerCategory 个性化结果前列中每个类目的最大商品数，<= 0 不打散
	MaxPerCategory int `koanf:"max_per_category" yaml:"max_per_category"`

	// Blocklist 在所有推荐结果中屏蔽的商品 ID
	Blocklist []string `koanf:"blocklist" yaml:"blocklist"`

	Breaker BreakerConfig `koanf:"breaker" yaml:"breaker"`
}

// BreakerConfig 是缓存后端熔断器配置。
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests" yaml:"max_requests"`
	Interval         time.Duration `koanf:"interval" yaml:"interval"`
	Timeout          time.Duration `koanf:"timeout" yaml:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold" yaml:"failure_threshold"`
}

// DefaultInteractionWeights 返回默认行为权重：购买最强，移出购物车为负。
func DefaultInteractionWeights() map[InteractionType]float64 {
	return map[InteractionType]float64{
		InteractionPurchase:       1.0,
		InteractionLike:           0.5,
		InteractionAddToCart:      0.4,
		InteractionView:           0.2,
		InteractionSearch:         0.1,
		InteractionRemoveFromCart: -0.2,
	}
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		CollaborativeWeight:    0.7,
		ContentWeight:          0.3,
		CacheTTL:               1800 * time.Second,
		InteractionWeights:     DefaultInteractionWeights(),
		SimilarUsers:           10,
		RecentInteractions:     50,
		PreferenceInteractions: 100,
		TrendingTypes:          []InteractionType{InteractionView, InteractionLike, InteractionPurchase},
		ColdStartMinRating:     4,
		RankerTimeout:          2 * time.Second,
		Breaker: BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// Weight 返回行为权重，未知类型返回 0（中性）。
func (c *Config) Weight(t InteractionType) float64 {
	if c == nil || c.InteractionWeights == nil {
		return DefaultInteractionWeights()[t]
	}
	return c.InteractionWeights[t]
}

// WorkerCount 返回实际使用的并发数。
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Validate 校验配置。
func (c *Config) Validate() error {
	switch {
	case c.CollaborativeWeight < 0 || c.ContentWeight < 0:
		return InvalidInputf(ModuleEngine, "hybrid weights must be non-negative")
	case c.CollaborativeWeight+c.ContentWeight == 0:
		return InvalidInputf(ModuleEngine, "hybrid weights must not both be zero")
	case c.CacheTTL <= 0:
		return InvalidInputf(ModuleEngine, "cache_ttl must be positive")
	case c.SimilarUsers <= 0:
		return InvalidInputf(ModuleEngine, "similar_users must be positive")
	case c.RecentInteractions <= 0:
		return InvalidInputf(ModuleEngine, "recent_interactions must be positive")
	case c.PreferenceInteractions <= 0:
		return InvalidInputf(ModuleEngine, "preference_interactions must be positive")
	case c.RankerTimeout <= 0:
		return InvalidInputf(ModuleEngine, "ranker_timeout must be positive")
	case len(c.TrendingTypes) == 0:
		return InvalidInputf(ModuleEngine, "trending_types must not be empty")
	}
	for _, t := range c.TrendingTypes {
		if !t.Valid() {
			return InvalidInputf(ModuleEngine, "unknown trending type %q", t)
		}
	}
	return nil
}
