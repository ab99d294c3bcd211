// Package engine 是推荐引擎的对外入口：个性化、相似商品、热门、冷启动四类推荐，
// 以及行为写入和用户画像查询。
//
// 每个读操作的流程相同：先查缓存 → miss 时在超时限制内执行对应的 Pipeline → 回填缓存。
// 超时按空结果处理（不回填），缓存故障按 miss 处理，商品/行为存储故障向上返回。
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/cache"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/metrics"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
)

const (
	DefaultLimit        = 10
	DefaultSimilarLimit = 5
	DefaultRecentLimit  = 5
	MaxLimit            = 50

	// recentStats 用户统计中“最近浏览”的条数
	recentStats = 10
)

// Engine 是推荐引擎，并发安全；请求之间除存储和缓存外没有共享的可变状态。
type Engine struct {
	cfg          *core.Config
	products     core.ProductStore
	interactions core.InteractionStore
	cache        *cache.Cache
	log          zerolog.Logger
	now          func() time.Time

	personalized *pipeline.Pipeline
	similar      *pipeline.Pipeline
	trending     *pipeline.Pipeline
	coldStart    *pipeline.Pipeline
	recent       *recall.RecentlyViewed
}

// Option 引擎配置选项
type Option func(*Engine)

// WithCache 设置缓存层，不设置时不缓存。
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithLogger 设置日志。
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithClock 设置时钟（热门窗口计算），用于测试。
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New 创建推荐引擎。cfg 为空时使用默认配置；配置非法或业务规则编译失败时返回 INVALID_INPUT。
func New(cfg *core.Config, products core.ProductStore, interactions core.InteractionStore, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if products == nil || interactions == nil {
		return nil, core.InvalidInputf(core.ModuleEngine, "engine: product and interaction stores are required")
	}

	e := &Engine{
		cfg:          cfg,
		products:     products,
		interactions: interactions,
		log:          zerolog.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = cache.New(nil, cfg, e.log)
	}
	e.log = e.log.With().Str("component", "engine").Logger()

	if err := e.build(); err != nil {
		return nil, err
	}
	return e, nil
}

// build 组装四条 Pipeline：召回 → 过滤（已交互/黑名单/业务规则）→ 截断。
func (e *Engine) build() error {
	common := make([]filter.Filter, 0, 2)
	if bl := filter.NewBlacklistFilter(e.cfg.Blocklist); bl != nil {
		common = append(common, bl)
	}
	rule, err := filter.NewExprFilter(e.cfg.CandidateRule)
	if err != nil {
		return err
	}
	if rule != nil {
		common = append(common, rule)
	}

	cf := &recall.UserBasedCF{Interactions: e.interactions, Products: e.products, Config: e.cfg}
	content := &recall.ContentRecall{Interactions: e.interactions, Products: e.products, Config: e.cfg}
	hybrid := &recall.Hybrid{
		Collaborative: cf,
		Content:       content,
		Products:      e.products,
		Config:        e.cfg,
		// 单路召回的超时略短于整体超时：一路慢时仍能返回另一路的结果
		Timeout: e.cfg.RankerTimeout * 3 / 4,
		OnTimeout: func(source string) {
			metrics.RankerDegraded.WithLabelValues(source, "timeout").Inc()
			e.log.Warn().Str("ranker", source).Msg("hybrid source timed out, using empty result")
		},
	}

	personalizedFilters := append([]filter.Filter{&filter.InteractedFilter{Interactions: e.interactions}}, common...)
	e.personalized = &pipeline.Pipeline{Nodes: []pipeline.Node{
		hybrid,
		&filter.FilterNode{Filters: personalizedFilters},
		&rerank.Diversity{MaxPerCategory: e.cfg.MaxPerCategory},
		&rerank.TopNNode{},
	}}
	e.similar = &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Similar{Products: e.products},
		&filter.FilterNode{Filters: common},
		&rerank.TopNNode{},
	}}
	e.trending = &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Trending{Interactions: e.interactions, Products: e.products, Config: e.cfg, Now: e.now},
		&filter.FilterNode{Filters: common},
		&rerank.TopNNode{},
	}}
	e.coldStart = &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.ColdStart{Products: e.products, Config: e.cfg},
		&filter.FilterNode{Filters: common},
		&rerank.TopNNode{},
	}}
	e.recent = &recall.RecentlyViewed{Interactions: e.interactions, Products: e.products}
	return nil
}

// Config 返回引擎使用的配置（只读）。
func (e *Engine) Config() *core.Config { return e.cfg }

// Cache 返回缓存层。
func (e *Engine) Cache() *cache.Cache { return e.cache }

func normalizeLimit(limit, def int) (int, error) {
	switch {
	case limit == 0:
		return def, nil
	case limit < 1 || limit > MaxLimit:
		return 0, core.InvalidInputf(core.ModuleEngine, "limit %d out of range [1,%d]", limit, MaxLimit)
	}
	return limit, nil
}

// recommend 是四类读操作的公共流程：缓存 → Pipeline（带超时）→ 回填。
func (e *Engine) recommend(
	ctx context.Context,
	kind cache.Kind,
	params []string,
	p *pipeline.Pipeline,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if items, ok := e.cache.Lookup(ctx, kind, rctx.Limit, params...); ok {
		metrics.RecommendationSize.WithLabelValues(string(kind)).Observe(float64(len(items)))
		return items, nil
	}

	items, timedOut, err := e.run(ctx, string(kind), p, rctx)
	if err != nil {
		return nil, err
	}
	if !timedOut {
		e.cache.Set(ctx, kind, params, &cache.Entry{Limit: rctx.Limit, Items: items})
	}
	metrics.RecommendationSize.WithLabelValues(string(kind)).Observe(float64(len(items)))
	return items, nil
}

type runResult struct {
	items []*core.Item
	err   error
}

// run 在 RankerTimeout 内执行 Pipeline。超时返回 (nil, true, nil)：与“缓存 miss 后得到空结果”一致。
// 调用方自己的 ctx 被取消时返回 ctx 的错误。
func (e *Engine) run(ctx context.Context, ranker string, p *pipeline.Pipeline, rctx *core.RecommendContext) ([]*core.Item, bool, error) {
	start := time.Now()
	defer metrics.ObserveRanker(ranker, start)

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.RankerTimeout)
	defer cancel()

	done := make(chan runResult, 1)
	go func() {
		items, err := p.Run(runCtx, rctx, nil)
		done <- runResult{items: items, err: err}
	}()

	var res runResult
	select {
	case res = <-done:
	case <-runCtx.Done():
		res.err = runCtx.Err()
	}

	if res.err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		if errors.Is(res.err, context.DeadlineExceeded) {
			metrics.RankerDegraded.WithLabelValues(ranker, "timeout").Inc()
			e.log.Warn().Str("ranker", ranker).Dur("timeout", e.cfg.RankerTimeout).Msg("ranker timed out, returning empty result")
			return nil, true, nil
		}
		if core.IsUnavailable(res.err) {
			e.log.Error().Err(res.err).Str("ranker", ranker).Msg("store unavailable")
		}
		return nil, false, res.err
	}
	return res.items, false, nil
}
