package repository

import (
	"context"

	"salesapp/internal/domain/model"
)

type OrderDetailRepository interface {
	CreateBulk(ctx context.Context, orderID string, details []model.OrderDetail) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.OrderDetail, error)
}
