package repository

import (
	"context"

	"salesapp/internal/domain/model"
)

// 一覧検索
type GoodsListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	ActiveOnly bool
}

// 一覧表示用（種類名つき）
type GoodsWithCategory struct {
	model.Goods
	CategoryName string `json:"category_name"`
}

// 商品の永続化（保存・取得）だけを約束。
type GoodsRepository interface {
	List(ctx context.Context, q GoodsListQuery) ([]GoodsWithCategory, int64, error)
	FindByID(ctx context.Context, id int64) (model.Goods, error)

	Create(ctx context.Context, g model.Goods) (model.Goods, error)
	// stockは更新しない（在庫は InventoryRepository 経由）
	Update(ctx context.Context, g model.Goods) error
}
