package repository

import (
	"context"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, goodsID int64, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Goods{}).
		Where("id = ?", goodsID).
		Update("stock", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫が足りるときだけ減らす。同時注文でも片方しか通らない
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, goodsID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Goods{}).
		Where("id = ? AND stock >= ?", goodsID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫戻し（キャンセル）
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, goodsID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Goods{}).
		Where("id = ?", goodsID).
		Update("stock", gorm.Expr("stock + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}
