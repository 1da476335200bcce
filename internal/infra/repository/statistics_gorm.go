package repository

import (
	"context"
	"time"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsGormRepository struct {
	db *gorm.DB
}

func NewStatisticsGormRepository(db *gorm.DB) *StatisticsGormRepository {
	return &StatisticsGormRepository{db: db}
}

// 指標ごとの集計式。ユーザー入力はここに入らない
type metricExpr struct {
	plain      string // 種類指定なし
	byCategory string // 種類指定あり（明細をjoin）
	needDetail bool
}

var metricExprs = map[model.Metric]metricExpr{
	model.MetricSales:     {plain: "SUM(o.total_amount)", byCategory: "SUM(od.subtotal)"},
	model.MetricQuantity:  {plain: "SUM(od.quantity)", byCategory: "SUM(od.quantity)", needDetail: true},
	model.MetricOrders:    {plain: "COUNT(DISTINCT o.id)", byCategory: "COUNT(DISTINCT o.id)"},
	model.MetricCustomers: {plain: "COUNT(DISTINCT o.user_id)", byCategory: "COUNT(DISTINCT o.user_id)"},
}

// 有効な注文（キャンセル以外）
func (r *StatisticsGormRepository) validOrders(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("orders AS o").
		Where("o.status <> ?", model.OrderStatusCancelled)
}

func (r *StatisticsGormRepository) Aggregate(ctx context.Context, f repo.AggregateFilter) (decimal.Decimal, error) {
	m, ok := metricExprs[f.Metric]
	if !ok {
		return decimal.Zero, errors.Errorf("unknown metric %q", f.Metric)
	}

	q := r.validOrders(ctx).
		Where("o.created_at >= ? AND o.created_at < ?", f.From, f.To)

	expr := m.plain
	if f.CategoryID != nil {
		expr = m.byCategory
		q = q.Joins("JOIN order_details AS od ON od.order_id = o.id").
			Joins("JOIN goods AS g ON g.id = od.goods_id").
			Where("g.category_id = ?", *f.CategoryID)
	} else if m.needDetail {
		q = q.Joins("JOIN order_details AS od ON od.order_id = o.id")
	}

	var row struct {
		Value decimal.NullDecimal
	}
	if err := q.Select(expr + " AS value").Scan(&row).Error; err != nil {
		return decimal.Zero, errors.Wrapf(err, "aggregate %s", f.Metric)
	}
	// NULLは0
	if !row.Value.Valid {
		return decimal.Zero, nil
	}
	return row.Value.Decimal, nil
}

func (r *StatisticsGormRepository) MonthlyCategorySales(ctx context.Context, since time.Time) ([]repo.MonthlyCategorySales, error) {
	q := r.validOrders(ctx).
		Select("c.id AS category_id, c.name AS category_name, " +
			"to_char(o.created_at, 'YYYY-MM') AS month, SUM(od.quantity) AS quantity").
		Joins("JOIN order_details AS od ON od.order_id = o.id").
		Joins("JOIN goods AS g ON g.id = od.goods_id").
		Joins("JOIN categories AS c ON c.id = g.category_id")
	if !since.IsZero() {
		q = q.Where("o.created_at >= ?", since)
	}

	var rows []repo.MonthlyCategorySales
	err := q.Group("c.id, c.name, to_char(o.created_at, 'YYYY-MM')").
		Order("c.id asc").Order("month asc").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "monthly category sales")
	}
	return rows, nil
}

func (r *StatisticsGormRepository) Overview(ctx context.Context, from, to time.Time) (repo.SalesOverview, error) {
	var ov repo.SalesOverview
	err := r.validOrders(ctx).
		Select("COUNT(*) AS order_count, COALESCE(SUM(o.total_amount), 0) AS total_sales, "+
			"COUNT(DISTINCT o.user_id) AS customer_count").
		Where("o.created_at >= ? AND o.created_at < ?", from, to).
		Scan(&ov).Error
	if err != nil {
		return repo.SalesOverview{}, errors.Wrap(err, "sales overview")
	}
	return ov, nil
}

func (r *StatisticsGormRepository) CategorySales(ctx context.Context, from, to time.Time, limit int) ([]repo.CategorySales, error) {
	var rows []repo.CategorySales
	err := r.validOrders(ctx).
		Select("c.id AS category_id, c.name AS category_name, "+
			"SUM(od.quantity) AS quantity, SUM(od.subtotal) AS sales").
		Joins("JOIN order_details AS od ON od.order_id = o.id").
		Joins("JOIN goods AS g ON g.id = od.goods_id").
		Joins("JOIN categories AS c ON c.id = g.category_id").
		Where("o.created_at >= ? AND o.created_at < ?", from, to).
		Group("c.id, c.name").
		Order("sales desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "category sales")
	}
	return rows, nil
}

func (r *StatisticsGormRepository) DailyTrend(ctx context.Context, from, to time.Time) ([]repo.DailySales, error) {
	var rows []repo.DailySales
	err := r.validOrders(ctx).
		Select("to_char(o.created_at, 'YYYY-MM-DD') AS day, COUNT(*) AS order_count, "+
			"SUM(o.total_amount) AS sales").
		Where("o.created_at >= ? AND o.created_at < ?", from, to).
		Group("to_char(o.created_at, 'YYYY-MM-DD')").
		Order("day asc").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "daily trend")
	}
	return rows, nil
}

func (r *StatisticsGormRepository) TopGoods(ctx context.Context, limit int) ([]repo.GoodsSales, error) {
	var rows []repo.GoodsSales
	err := r.validOrders(ctx).
		Select("g.id AS goods_id, g.name AS goods_name, COALESCE(c.name, '') AS category_name, " +
			"SUM(od.quantity) AS quantity, SUM(od.subtotal) AS sales").
		Joins("JOIN order_details AS od ON od.order_id = o.id").
		Joins("JOIN goods AS g ON g.id = od.goods_id").
		Joins("LEFT JOIN categories AS c ON c.id = g.category_id").
		Group("g.id, g.name, c.name").
		Order("quantity desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "top goods")
	}
	return rows, nil
}

func (r *StatisticsGormRepository) ExportOrders(ctx context.Context) ([]repo.OrderExportRow, error) {
	var rows []repo.OrderExportRow
	err := r.db.WithContext(ctx).Table("orders AS o").
		Select("o.id AS order_id, COALESCE(u.username, '') AS username, o.total_amount, o.status, o.created_at").
		Joins("LEFT JOIN users AS u ON u.id = o.user_id").
		Order("o.created_at desc").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "export orders")
	}
	return rows, nil
}

func (r *StatisticsGormRepository) ExportCategories(ctx context.Context) ([]repo.CategoryExportRow, error) {
	var rows []repo.CategoryExportRow
	err := r.db.WithContext(ctx).Table("categories AS c").
		Select("c.name AS category_name, COUNT(DISTINCT g.id) AS goods_count, "+
			"COALESCE(SUM(od.quantity) FILTER (WHERE o.id IS NOT NULL), 0) AS quantity, "+
			"COALESCE(SUM(od.subtotal) FILTER (WHERE o.id IS NOT NULL), 0) AS sales").
		Joins("LEFT JOIN goods AS g ON g.category_id = c.id").
		Joins("LEFT JOIN order_details AS od ON od.goods_id = g.id").
		Joins("LEFT JOIN orders AS o ON o.id = od.order_id AND o.status <> ?", model.OrderStatusCancelled).
		Where("c.is_active = ?", true).
		Group("c.id, c.name").
		Order("c.sort_order asc").Order("c.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "export categories")
	}
	return rows, nil
}
