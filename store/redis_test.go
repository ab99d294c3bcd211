package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rushteam/shoprec/core"
)

// 不可达地址：验证错误被归类为 UNAVAILABLE，而不是 NOT_FOUND。
func TestRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s := NewRedisStore("127.0.0.1:1", 0)
	defer s.Close()

	assert.Equal(t, "redis", s.Name())

	_, err := s.Get(ctx, "rec:cold_start")
	assert.True(t, core.IsUnavailable(err), "got %v", err)
	assert.False(t, core.IsStoreNotFound(err))

	assert.True(t, core.IsUnavailable(s.Set(ctx, "k", []byte("v"), 10)))
	assert.True(t, core.IsUnavailable(s.Delete(ctx, "k")))
	assert.True(t, core.IsUnavailable(s.Ping(ctx)))
}
