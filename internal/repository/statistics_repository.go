package repository

import (
	"context"
	"time"

	"salesapp/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 問数の集計条件。期間は [From, To)
type AggregateFilter struct {
	Metric     model.Metric
	From       time.Time
	To         time.Time
	CategoryID *int64
}

// 種類・月ごとの販売数量
type MonthlyCategorySales struct {
	CategoryID   int64
	CategoryName string
	Month        string // YYYY-MM
	Quantity     int64
}

type SalesOverview struct {
	OrderCount    int64           `json:"order_count"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	CustomerCount int64           `json:"customer_count"`
}

type CategorySales struct {
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Quantity     int64           `json:"quantity"`
	Sales        decimal.Decimal `json:"sales"`
}

type DailySales struct {
	Day        string          `json:"day"` // YYYY-MM-DD
	OrderCount int64           `json:"order_count"`
	Sales      decimal.Decimal `json:"sales"`
}

type GoodsSales struct {
	GoodsID      int64           `json:"goods_id"`
	GoodsName    string          `json:"goods_name"`
	CategoryName string          `json:"category_name"`
	Quantity     int64           `json:"quantity"`
	Sales        decimal.Decimal `json:"sales"`
}

type OrderExportRow struct {
	OrderID     string
	Username    string
	TotalAmount decimal.Decimal
	Status      string
	CreatedAt   time.Time
}

type CategoryExportRow struct {
	CategoryName string
	GoodsCount   int64
	Quantity     int64
	Sales        decimal.Decimal
}

// 集計専用の読み取り窓口（キャンセル済み注文は常に除外）
type StatisticsRepository interface {
	Aggregate(ctx context.Context, f AggregateFilter) (decimal.Decimal, error)
	// since以降（ゼロ値なら全期間）を category, month 順で返す
	MonthlyCategorySales(ctx context.Context, since time.Time) ([]MonthlyCategorySales, error)

	Overview(ctx context.Context, from, to time.Time) (SalesOverview, error)
	CategorySales(ctx context.Context, from, to time.Time, limit int) ([]CategorySales, error)
	DailyTrend(ctx context.Context, from, to time.Time) ([]DailySales, error)
	TopGoods(ctx context.Context, limit int) ([]GoodsSales, error)

	ExportOrders(ctx context.Context) ([]OrderExportRow, error)
	ExportCategories(ctx context.Context) ([]CategoryExportRow, error)
}
