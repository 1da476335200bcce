package repository

import (
	"context"
	"time"

	"salesapp/internal/domain/model"
)

type PredictionRepository interface {
	// (category_id, prediction_date) が同じ行は上書き
	Upsert(ctx context.Context, preds []model.SalesPrediction) error
	// dateがnilなら全件。prediction_date desc, category_name 順
	List(ctx context.Context, date *time.Time) ([]model.SalesPrediction, error)
}
