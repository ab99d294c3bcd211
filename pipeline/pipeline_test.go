package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/shoprec/core"
)

type funcNode struct {
	name string
	fn   func(items []*core.Item) ([]*core.Item, error)
}

func (n funcNode) Name() string { return n.name }
func (n funcNode) Kind() Kind   { return KindFilter }
func (n funcNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return n.fn(items)
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{
		funcNode{name: "gen", fn: func([]*core.Item) ([]*core.Item, error) {
			return []*core.Item{core.NewItem("a"), core.NewItem("b")}, nil
		}},
		funcNode{name: "drop-first", fn: func(items []*core.Item) ([]*core.Item, error) {
			return items[1:], nil
		}},
	}}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
}

func TestPipeline_ErrorNamesNode(t *testing.T) {
	notFound := core.NotFoundf(core.ModuleRecall, "product x not found")
	p := &Pipeline{Nodes: []Node{
		funcNode{name: "recall.i2i", fn: func([]*core.Item) ([]*core.Item, error) { return nil, notFound }},
	}}

	_, err := p.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recall.i2i")
	assert.True(t, core.IsNotFound(err))
	assert.True(t, errors.Is(err, notFound))
}

func TestPipeline_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Pipeline{Nodes: []Node{funcNode{name: "x"}}}).Run(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
