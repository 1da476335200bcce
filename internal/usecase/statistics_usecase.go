package usecase

import (
	"context"
	"io"
	"net/http"
	"time"

	repo "salesapp/internal/repository"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const categoryRankingLimit = 10

type StatisticsUsecase struct {
	stats repo.StatisticsRepository
	clock Clock
	loc   *time.Location
}

func NewStatisticsUsecase(statsRepo repo.StatisticsRepository, clock Clock, loc *time.Location) *StatisticsUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &StatisticsUsecase{stats: statsRepo, clock: clock, loc: loc}
}

type SalesStatsInput struct {
	Period    string // today | 7days | month | custom
	StartDate string // YYYY-MM-DD（customのみ）
	EndDate   string
}

type SalesOverviewOutput struct {
	OrderCount    int64           `json:"total_orders"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	CustomerCount int64           `json:"total_customers"`
}

type SalesStatsOutput struct {
	Period     string               `json:"period"`
	From       time.Time            `json:"from"`
	To         time.Time            `json:"to"`
	Overall    SalesOverviewOutput  `json:"overall"`
	Categories []repo.CategorySales `json:"categories"`
	Daily      []repo.DailySales    `json:"daily"`
}

// 期間を [from, to) に変換する
func (u *StatisticsUsecase) periodWindow(in SalesStatsInput) (time.Time, time.Time, string, error) {
	now := u.clock.Now().In(u.loc)
	d0 := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.loc)

	period := in.Period
	if period == "" {
		period = "7days"
	}

	switch period {
	case "today":
		return d0, d0.AddDate(0, 0, 1), period, nil
	case "7days":
		return d0.AddDate(0, 0, -7), d0.AddDate(0, 0, 1), period, nil
	case "month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, u.loc)
		return first, d0.AddDate(0, 0, 1), period, nil
	case "custom":
		from, err := time.ParseInLocation("2006-01-02", in.StartDate, u.loc)
		if err != nil {
			return time.Time{}, time.Time{}, "", ErrValidation("invalid start_date")
		}
		end, err := time.ParseInLocation("2006-01-02", in.EndDate, u.loc)
		if err != nil {
			return time.Time{}, time.Time{}, "", ErrValidation("invalid end_date")
		}
		if end.Before(from) {
			return time.Time{}, time.Time{}, "", ErrValidation("start_date must be <= end_date")
		}
		// end_date の日も含める
		return from, end.AddDate(0, 0, 1), period, nil
	}
	return time.Time{}, time.Time{}, "", ErrValidation("invalid period")
}

// 全体・種類別・日別の3つを並行で集計する
func (u *StatisticsUsecase) Sales(ctx context.Context, in SalesStatsInput) (SalesStatsOutput, error) {
	from, to, period, err := u.periodWindow(in)
	if err != nil {
		return SalesStatsOutput{}, err
	}

	var (
		overview   repo.SalesOverview
		categories []repo.CategorySales
		daily      []repo.DailySales
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview, err = u.stats.Overview(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = u.stats.CategorySales(gctx, from, to, categoryRankingLimit)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = u.stats.DailyTrend(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return SalesStatsOutput{}, ErrPersistence(err)
	}

	avg := decimal.Zero
	if overview.OrderCount > 0 {
		avg = overview.TotalSales.Div(decimal.NewFromInt(overview.OrderCount)).Round(2)
	}
	if categories == nil {
		categories = []repo.CategorySales{}
	}
	if daily == nil {
		daily = []repo.DailySales{}
	}

	return SalesStatsOutput{
		Period: period,
		From:   from,
		To:     to,
		Overall: SalesOverviewOutput{
			OrderCount:    overview.OrderCount,
			TotalSales:    overview.TotalSales,
			AvgOrderValue: avg,
			CustomerCount: overview.CustomerCount,
		},
		Categories: categories,
		Daily:      daily,
	}, nil
}

func (u *StatisticsUsecase) TopGoods(ctx context.Context, limit int) ([]repo.GoodsSales, error) {
	if limit == 0 {
		limit = 10
	}
	if limit < 1 || limit > 50 {
		return nil, ErrValidation("invalid limit")
	}
	items, err := u.stats.TopGoods(ctx, limit)
	if err != nil {
		return nil, ErrPersistence(err)
	}
	if items == nil {
		items = []repo.GoodsSales{}
	}
	return items, nil
}

type ExportKind string

const (
	ExportOrders     ExportKind = "orders"
	ExportCategories ExportKind = "categories"
)

func ParseExportKind(s string) (ExportKind, bool) {
	switch ExportKind(s) {
	case "":
		return ExportOrders, true
	case ExportOrders, ExportCategories:
		return ExportKind(s), true
	}
	return "", false
}

type orderCSVRow struct {
	OrderID     string `csv:"order_id"`
	Username    string `csv:"username"`
	TotalAmount string `csv:"total_amount"`
	Status      string `csv:"status"`
	CreatedAt   string `csv:"created_at"`
}

type categoryCSVRow struct {
	CategoryName string `csv:"category_name"`
	GoodsCount   int64  `csv:"goods_count"`
	Quantity     int64  `csv:"total_quantity"`
	Sales        string `csv:"total_sales"`
}

// CSVをwに書き出す
func (u *StatisticsUsecase) Export(ctx context.Context, kind ExportKind, w io.Writer) error {
	switch kind {
	case ExportOrders:
		rows, err := u.stats.ExportOrders(ctx)
		if err != nil {
			return ErrPersistence(err)
		}
		out := make([]*orderCSVRow, 0, len(rows))
		for _, r := range rows {
			out = append(out, &orderCSVRow{
				OrderID:     r.OrderID,
				Username:    r.Username,
				TotalAmount: r.TotalAmount.StringFixed(2),
				Status:      r.Status,
				CreatedAt:   r.CreatedAt.In(u.loc).Format("2006-01-02 15:04:05"),
			})
		}
		return writeCSV(out, w)

	case ExportCategories:
		rows, err := u.stats.ExportCategories(ctx)
		if err != nil {
			return ErrPersistence(err)
		}
		out := make([]*categoryCSVRow, 0, len(rows))
		for _, r := range rows {
			out = append(out, &categoryCSVRow{
				CategoryName: r.CategoryName,
				GoodsCount:   r.GoodsCount,
				Quantity:     r.Quantity,
				Sales:        r.Sales.StringFixed(2),
			})
		}
		return writeCSV(out, w)
	}
	return ErrValidation("invalid export type")
}

func writeCSV(rows any, w io.Writer) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "csv export failed")
	}
	return nil
}
