// Package shoprec 是电商商品推荐引擎。
//
// 设计要点：
// - Pipeline-first: 每类推荐都是一条 Node 链（Recall → Filter → ReRank）
// - 四类推荐：个性化（协同过滤 + 内容混合）、相似商品、热门、冷启动
// - 结果缓存带熔断，缓存故障降级为 miss；召回超时降级为空结果
//
// 对外入口见 engine 包；这里只做轻量 facade。
package shoprec

import (
	"github.com/rushteam/shoprec/engine"
	"github.com/rushteam/shoprec/pipeline"
)

type (
	Engine   = engine.Engine
	Option   = engine.Option
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)

var (
	New        = engine.New
	WithCache  = engine.WithCache
	WithLogger = engine.WithLogger
	WithClock  = engine.WithClock
)
