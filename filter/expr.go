package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/dsl"
)

// ExprFilter 是 CEL 业务规则过滤器：表达式为 true 的候选保留，为 false 的过滤。
//
//	product.rating >= 2.0 && product.category != "adult"
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译规则，空规则返回 nil（不过滤）。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil || prg == nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.prg.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
