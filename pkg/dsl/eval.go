package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("product", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的候选规则，使用 CEL (Common Expression Language) 实现。
// 编译一次，可在多个请求、多个 goroutine 中并发执行。
//
// 表达式语法（CEL 标准语法）：
//   - 商品字段：product.rating >= 4.0 / product.is_featured / product.category == "shoes"
//   - 分数：item.score > 0.5
//   - 标签：label.recall_source == "trending"
//   - 请求：rctx.user_id != "" / rctx.window == "day"
//
// 示例：
//   - `product.is_on_sale || product.rating >= 4.5`
//   - `product.category != "adult" && item.score > 0`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，空表达式返回 nil（表示不过滤）。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.InvalidInputf(core.ModuleRecall, "compile rule %q: %v", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string {
	if p == nil {
		return ""
	}
	return p.expr
}

// Eval 对一个候选执行规则，返回布尔结果。nil Program 恒为 true。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 key 时 CEL 会返回错误
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any)
	itemMap := map[string]any{}
	productMap := map[string]any{}

	if item != nil {
		for k, v := range item.Labels {
			labels[k] = v.Value
		}
		itemMap["id"] = item.ID
		itemMap["score"] = item.Score
		if item.Similarity != nil {
			itemMap["similarity"] = *item.Similarity
		}
		if p := item.Product; p != nil {
			productMap = map[string]any{
				"id":          p.ID,
				"name":        p.Name,
				"category":    p.Category,
				"subcategory": p.Subcategory,
				"rating":      p.Rating,
				"is_featured": p.IsFeatured,
				"is_on_sale":  p.IsOnSale,
			}
		}
	}

	rctxMap := map[string]any{}
	if rctx != nil {
		rctxMap["user_id"] = rctx.UserID
		rctxMap["product_id"] = rctx.ProductID
		rctxMap["window"] = string(rctx.Window)
		rctxMap["limit"] = rctx.Limit
		if rctx.Params != nil {
			rctxMap["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":    itemMap,
		"product": productMap,
		"label":   labels,
		"rctx":    rctxMap,
	}
}
