package repository

import (
	"context"

	"salesapp/internal/domain/model"
)

// 追記のみ
type QueryLogRepository interface {
	Create(ctx context.Context, log model.QueryLog) error
	ListByUserID(ctx context.Context, userID int64, limit int) ([]model.QueryLog, error)
}
