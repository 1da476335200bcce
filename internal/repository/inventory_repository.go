package repository

import (
	"context"

	"salesapp/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, goodsID int64, newStock int64) error

	// 在庫が足りるときだけ減算（WHERE stock >= qty）
	DecreaseStockIfEnough(ctx context.Context, goodsID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセル）
	IncreaseStock(ctx context.Context, goodsID int64, qty int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
