package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。作成後は変更しない（名前と価格は注文時点のスナップショット）
type OrderDetail struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string          `gorm:"type:varchar(64);not null;index" json:"order_id"`
	GoodsID   int64           `gorm:"not null;index" json:"goods_id"`
	GoodsName string          `gorm:"type:varchar(100);not null" json:"goods_name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (OrderDetail) TableName() string { return "order_details" }
