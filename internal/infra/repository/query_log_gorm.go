package repository

import (
	"context"

	"salesapp/internal/domain/model"

	"gorm.io/gorm"
)

type QueryLogGormRepository struct {
	db *gorm.DB
}

func NewQueryLogGormRepository(db *gorm.DB) *QueryLogGormRepository {
	return &QueryLogGormRepository{db: db}
}

func (r *QueryLogGormRepository) Create(ctx context.Context, log model.QueryLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *QueryLogGormRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]model.QueryLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var logs []model.QueryLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return []model.QueryLog{}, err
	}
	return logs, nil
}
