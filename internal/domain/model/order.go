package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 管理者が許可される遷移
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusCompleted, OrderStatusCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// sからtoへ変更できるか
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID          int64           `gorm:"not null;index;uniqueIndex:idx_orders_user_idem,priority:1" json:"user_id"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	ShippingAddress string          `gorm:"type:varchar(255)" json:"shipping_address"`
	ContactPhone    string          `gorm:"type:varchar(32)" json:"contact_phone"`
	Remark          string          `gorm:"type:varchar(500)" json:"remark"`
	IdempotencyKey  *string         `gorm:"type:varchar(255);uniqueIndex:idx_orders_user_idem,priority:2" json:"-"`
	CreatedAt       time.Time       `gorm:"not null;index;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }
