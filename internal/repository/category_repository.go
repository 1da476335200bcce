package repository

import (
	"context"

	"salesapp/internal/domain/model"
)

// 一覧表示用（公開中の商品数つき）
type CategoryWithCount struct {
	model.Category
	GoodsCount int64 `json:"goods_count"`
}

type CategoryRepository interface {
	// 有効な種類を sort_order, id 順で返す
	ListActive(ctx context.Context) ([]model.Category, error)
	ListActiveWithGoodsCount(ctx context.Context) ([]CategoryWithCount, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	FindByName(ctx context.Context, name string) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
}
