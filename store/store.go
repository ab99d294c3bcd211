package store

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// 注意：此包只包含实现，接口定义在 core 包。
//
// 缓存后端（core.Store）：
//   var backend core.Store = NewMemoryStore()
//   var backend core.Store = NewRedisStore("localhost:6379", 0)
//
// 商品 / 行为存储（core.ProductStore / core.InteractionStore）：
//   catalog := NewMemoryCatalog()
//   catalog, err := OpenSQLCatalog(ctx, "file:shop.db")

// ErrNotFound 表示 key 不存在
var ErrNotFound = core.ErrStoreNotFound

// ProductWriter 是商品写入端（fixture 导入、CLI 演示数据）。
// 读路径只依赖 core.ProductStore。
type ProductWriter interface {
	SaveProduct(ctx context.Context, p core.Product) error
}
