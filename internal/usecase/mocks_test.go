package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"salesapp/internal/domain/model"
	"salesapp/internal/infra/llm"
	repo "salesapp/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders       repo.OrderRepository
	orderDetails repo.OrderDetailRepository
	goods        repo.GoodsRepository
	inventory    repo.InventoryRepository
	auditLogs    repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository             { return r.orders }
func (r *TxReposMock) OrderDetails() repo.OrderDetailRepository { return r.orderDetails }
func (r *TxReposMock) Goods() repo.GoodsRepository              { return r.goods }
func (r *TxReposMock) Inventory() repo.InventoryRepository      { return r.inventory }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository       { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderDetailRepoMock struct{ mock.Mock }

func (m *OrderDetailRepoMock) CreateBulk(ctx context.Context, orderID string, details []model.OrderDetail) error {
	args := m.Called(ctx, orderID, details)
	return args.Error(0)
}

func (m *OrderDetailRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderDetail, error) {
	args := m.Called(ctx, orderID)
	ds, _ := args.Get(0).([]model.OrderDetail)
	return ds, args.Error(1)
}

type GoodsRepoMock struct{ mock.Mock }

func (m *GoodsRepoMock) List(ctx context.Context, q repo.GoodsListQuery) ([]repo.GoodsWithCategory, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]repo.GoodsWithCategory)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *GoodsRepoMock) FindByID(ctx context.Context, id int64) (model.Goods, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(model.Goods)
	return g, args.Error(1)
}

func (m *GoodsRepoMock) Create(ctx context.Context, g model.Goods) (model.Goods, error) {
	args := m.Called(ctx, g)
	out, _ := args.Get(0).(model.Goods)
	return out, args.Error(1)
}

func (m *GoodsRepoMock) Update(ctx context.Context, g model.Goods) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, goodsID int64, newStock int64) error {
	args := m.Called(ctx, goodsID, newStock)
	return args.Error(0)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, goodsID int64, qty int64) (bool, error) {
	args := m.Called(ctx, goodsID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, goodsID int64, qty int64) error {
	args := m.Called(ctx, goodsID, qty)
	return args.Error(0)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) ListAdmin(ctx context.Context, f repo.AuditLogListFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) ListActive(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]model.Category)
	return cs, args.Error(1)
}

func (m *CategoryRepoMock) ListActiveWithGoodsCount(ctx context.Context) ([]repo.CategoryWithCount, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]repo.CategoryWithCount)
	return cs, args.Error(1)
}

func (m *CategoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) FindByName(ctx context.Context, name string) (model.Category, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(model.Category)
	return out, args.Error(1)
}

type StatsRepoMock struct{ mock.Mock }

func (m *StatsRepoMock) Aggregate(ctx context.Context, f repo.AggregateFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *StatsRepoMock) MonthlyCategorySales(ctx context.Context, since time.Time) ([]repo.MonthlyCategorySales, error) {
	args := m.Called(ctx, since)
	rows, _ := args.Get(0).([]repo.MonthlyCategorySales)
	return rows, args.Error(1)
}

func (m *StatsRepoMock) Overview(ctx context.Context, from, to time.Time) (repo.SalesOverview, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(repo.SalesOverview), args.Error(1)
}

func (m *StatsRepoMock) CategorySales(ctx context.Context, from, to time.Time, limit int) ([]repo.CategorySales, error) {
	args := m.Called(ctx, from, to, limit)
	rows, _ := args.Get(0).([]repo.CategorySales)
	return rows, args.Error(1)
}

func (m *StatsRepoMock) DailyTrend(ctx context.Context, from, to time.Time) ([]repo.DailySales, error) {
	args := m.Called(ctx, from, to)
	rows, _ := args.Get(0).([]repo.DailySales)
	return rows, args.Error(1)
}

func (m *StatsRepoMock) TopGoods(ctx context.Context, limit int) ([]repo.GoodsSales, error) {
	args := m.Called(ctx, limit)
	rows, _ := args.Get(0).([]repo.GoodsSales)
	return rows, args.Error(1)
}

func (m *StatsRepoMock) ExportOrders(ctx context.Context) ([]repo.OrderExportRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]repo.OrderExportRow)
	return rows, args.Error(1)
}

func (m *StatsRepoMock) ExportCategories(ctx context.Context) ([]repo.CategoryExportRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]repo.CategoryExportRow)
	return rows, args.Error(1)
}

type QueryLogRepoMock struct{ mock.Mock }

func (m *QueryLogRepoMock) Create(ctx context.Context, log model.QueryLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *QueryLogRepoMock) ListByUserID(ctx context.Context, userID int64, limit int) ([]model.QueryLog, error) {
	args := m.Called(ctx, userID, limit)
	logs, _ := args.Get(0).([]model.QueryLog)
	return logs, args.Error(1)
}

type PredictionRepoMock struct{ mock.Mock }

func (m *PredictionRepoMock) Upsert(ctx context.Context, preds []model.SalesPrediction) error {
	args := m.Called(ctx, preds)
	return args.Error(0)
}

func (m *PredictionRepoMock) List(ctx context.Context, date *time.Time) ([]model.SalesPrediction, error) {
	args := m.Called(ctx, date)
	ps, _ := args.Get(0).([]model.SalesPrediction)
	return ps, args.Error(1)
}

type MessageRepoMock struct{ mock.Mock }

func (m *MessageRepoMock) Create(ctx context.Context, msg model.Message) (model.Message, error) {
	args := m.Called(ctx, msg)
	out, _ := args.Get(0).(model.Message)
	return out, args.Error(1)
}

func (m *MessageRepoMock) FindByID(ctx context.Context, id int64) (model.Message, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(model.Message)
	return out, args.Error(1)
}

func (m *MessageRepoMock) List(ctx context.Context, f repo.MessageListFilter) ([]repo.MessageWithReplier, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]repo.MessageWithReplier)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MessageRepoMock) Reply(ctx context.Context, id int64, content string, replyUserID int64, at time.Time) error {
	args := m.Called(ctx, id, content, replyUserID, at)
	return args.Error(0)
}

func (m *MessageRepoMock) UpdateStatus(ctx context.Context, id int64, status model.MessageStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MessageRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MessageRepoMock) Stats(ctx context.Context, dayStart, dayEnd time.Time) (repo.MessageStats, error) {
	args := m.Called(ctx, dayStart, dayEnd)
	return args.Get(0).(repo.MessageStats), args.Error(1)
}

// =====================
// 外部サービス mocks
// =====================

type ClassifierMock struct {
	mock.Mock
	enabled bool
}

func (m *ClassifierMock) Enabled() bool { return m.enabled }

func (m *ClassifierMock) ClassifyQuery(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

type ForecasterMock struct {
	mock.Mock
	enabled bool
}

func (m *ForecasterMock) Enabled() bool { return m.enabled }

func (m *ForecasterMock) ForecastSales(ctx context.Context, categories []string) ([]llm.ForecastEntry, error) {
	args := m.Called(ctx, categories)
	entries, _ := args.Get(0).([]llm.ForecastEntry)
	return entries, args.Error(1)
}

// =====================
// Helpers
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("order-%d", g.n)
}

var shanghai = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}()

// HTTPErrorの実装詳細に依存しない
func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
