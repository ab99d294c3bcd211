package recall

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/shoprec/core"
)

func TestFanout_Gather(t *testing.T) {
	var timeouts atomic.Int32
	fan := &Fanout{
		Sources: []Source{
			&stubSource{name: "fast", items: []*core.Item{core.NewItem("a"), core.NewItem("b")}},
			&stubSource{name: "slow", items: []*core.Item{core.NewItem("c")}, delay: time.Second},
			&stubSource{name: "other", items: []*core.Item{core.NewItem("b"), core.NewItem("d")}},
		},
		Timeout:   20 * time.Millisecond,
		OnTimeout: func(string) { timeouts.Add(1) },
	}

	results, err := fan.Gather(context.Background(), &core.RecommendContext{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b"}, ids(results[0]))
	assert.Empty(t, results[1], "timed out source degrades to empty")
	assert.Equal(t, []string{"b", "d"}, ids(results[2]))
	assert.Equal(t, int32(1), timeouts.Load())
}

func TestFanout_ErrorPropagates(t *testing.T) {
	boom := core.Unavailable(core.ModuleStore, errors.New("connection refused"))
	fan := &Fanout{Sources: []Source{
		&stubSource{name: "ok", items: []*core.Item{core.NewItem("a")}},
		&stubSource{name: "broken", err: boom},
	}}

	_, err := fan.Gather(context.Background(), &core.RecommendContext{})
	require.Error(t, err)
	assert.True(t, core.IsUnavailable(err))
}

func TestFanout_NoSources(t *testing.T) {
	results, err := (&Fanout{}).Gather(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
