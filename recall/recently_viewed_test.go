package recall

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/shoprec/core"
)

func TestRecentlyViewed(t *testing.T) {
	cat := newTestCatalog([]core.Product{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"}}, []core.Interaction{
		act("u1", "p1", core.InteractionView),
		act("u1", "p2", core.InteractionView),
		act("u1", "p4", core.InteractionPurchase),
		act("u1", "p1", core.InteractionView),
		act("u1", "p3", core.InteractionView),
		act("u2", "p4", core.InteractionView),
	})
	r := &RecentlyViewed{Interactions: cat.Interactions(), Products: cat}

	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p1", "p2"}, ids(items))

	items, err = r.Recall(context.Background(), &core.RecommendContext{UserID: "u1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p1"}, ids(items))
}
