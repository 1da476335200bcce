package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品。stockは注文で減算、管理者の在庫設定でのみ変わる（常に0以上）
type Goods struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	CategoryID  int64           `gorm:"not null;index" json:"category_id"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int64           `gorm:"not null;check:stock >= 0" json:"stock"`
	Description string          `gorm:"type:text" json:"description"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Goods) TableName() string { return "goods" }
