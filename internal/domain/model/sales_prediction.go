package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DemandLevel string

const (
	DemandHigh   DemandLevel = "high"
	DemandMedium DemandLevel = "medium"
	DemandLow    DemandLevel = "low"
)

func ParseDemandLevel(s string) (DemandLevel, bool) {
	switch DemandLevel(s) {
	case DemandHigh, DemandMedium, DemandLow:
		return DemandLevel(s), true
	}
	return "", false
}

type PredictionSource string

const (
	PredictionSourceLocal PredictionSource = "local"
	PredictionSourceAI    PredictionSource = "ai"
)

// 種類ごと・日ごとに1行（同日の再実行は上書き）
type SalesPrediction struct {
	ID             int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID     int64            `gorm:"not null;uniqueIndex:idx_prediction_category_date,priority:1" json:"category_id"`
	CategoryName   string           `gorm:"type:varchar(50);not null" json:"category_name"`
	PredictedSales int64            `gorm:"not null" json:"predicted_sales"`
	DemandLevel    DemandLevel      `gorm:"type:varchar(10);not null" json:"demand_level"`
	GrowthRate     decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"growth_rate"`
	Source         PredictionSource `gorm:"type:varchar(10);not null;default:'local'" json:"source"`
	PredictionDate time.Time        `gorm:"type:date;not null;uniqueIndex:idx_prediction_category_date,priority:2" json:"prediction_date"`
	CreatedAt      time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (SalesPrediction) TableName() string { return "sales_predictions" }
