package repository

import (
	"context"
	"time"

	"salesapp/internal/domain/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PredictionGormRepository struct {
	db *gorm.DB
}

func NewPredictionGormRepository(db *gorm.DB) *PredictionGormRepository {
	return &PredictionGormRepository{db: db}
}

// 同じ種類・同じ日の行は上書きする
func (r *PredictionGormRepository) Upsert(ctx context.Context, preds []model.SalesPrediction) error {
	if len(preds) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "category_id"}, {Name: "prediction_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category_name", "predicted_sales", "demand_level", "growth_rate", "source", "updated_at",
		}),
	}).Create(&preds).Error
	if err != nil {
		return errors.Wrap(err, "upsert sales predictions")
	}
	return nil
}

func (r *PredictionGormRepository) List(ctx context.Context, date *time.Time) ([]model.SalesPrediction, error) {
	q := r.db.WithContext(ctx).Model(&model.SalesPrediction{})
	if date != nil {
		q = q.Where("prediction_date = ?", date.Format("2006-01-02"))
	}

	var preds []model.SalesPrediction
	if err := q.Order("prediction_date desc").Order("category_name asc").Find(&preds).Error; err != nil {
		return []model.SalesPrediction{}, err
	}
	return preds, nil
}
