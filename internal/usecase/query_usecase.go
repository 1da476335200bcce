package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 指標が分からないときの案内
const unrecognizedQueryMsg = "请尝试更简洁的提问方式，如'[时间] [商品种类] 的 [销售额/销量] 是多少'"

const maxQueryRunes = 500

// 指標のフォールバック分類（外部の文章補完サービス）
type QueryClassifier interface {
	Enabled() bool
	ClassifyQuery(ctx context.Context, text string) (string, error)
}

// 分類ラベル -> 指標
var classifierLabels = map[string]model.Metric{
	"销售额": model.MetricSales,
	"收入":  model.MetricSales,
	"销量":  model.MetricQuantity,
	"订单数": model.MetricOrders,
	"客户数": model.MetricCustomers,
}

type QueryUsecase struct {
	categories repo.CategoryRepository
	stats      repo.StatisticsRepository
	queryLogs  repo.QueryLogRepository
	classifier QueryClassifier
	clock      Clock
	loc        *time.Location
}

func NewQueryUsecase(
	categories repo.CategoryRepository,
	stats repo.StatisticsRepository,
	queryLogs repo.QueryLogRepository,
	classifier QueryClassifier,
	clock Clock,
	loc *time.Location,
) *QueryUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &QueryUsecase{
		categories: categories,
		stats:      stats,
		queryLogs:  queryLogs,
		classifier: classifier,
		clock:      clock,
		loc:        loc,
	}
}

type QuerySource string

const (
	QuerySourceLocal QuerySource = "local"
	QuerySourceAI    QuerySource = "ai"
)

type QueryResult struct {
	QueryText   string          `json:"query_text"`
	Metric      model.Metric    `json:"metric"`
	MetricLabel string          `json:"metric_label"`
	Value       decimal.Decimal `json:"value"`
	Category    string          `json:"category"`
	TimeLabel   string          `json:"time_period"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Source      QuerySource     `json:"source"`
}

func (u *QueryUsecase) Resolve(ctx context.Context, userID int64, text string) (QueryResult, error) {
	if userID <= 0 {
		return QueryResult{}, ErrUnauthorized()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return QueryResult{}, ErrValidation("query_text required")
	}
	if len([]rune(text)) > maxQueryRunes {
		return QueryResult{}, ErrValidation("query_text too long")
	}

	cats, err := u.categories.ListActive(ctx)
	if err != nil {
		return QueryResult{}, ErrPersistence(err)
	}

	parsed, ok := ParseQuery(text, cats, u.clock.Now().In(u.loc))
	source := QuerySourceLocal
	if !ok {
		m, err := u.classify(ctx, text)
		if err != nil {
			return QueryResult{}, err
		}
		parsed.Metric = m
		source = QuerySourceAI
	}

	value, err := u.stats.Aggregate(ctx, repo.AggregateFilter{
		Metric:     parsed.Metric,
		From:       parsed.From,
		To:         parsed.To,
		CategoryID: parsed.CategoryID,
	})
	if err != nil {
		return QueryResult{}, ErrPersistence(err)
	}

	res := QueryResult{
		QueryText:   text,
		Metric:      parsed.Metric,
		MetricLabel: MetricLabel(parsed.Metric),
		Value:       value,
		Category:    parsed.CategoryName,
		TimeLabel:   parsed.TimeLabel,
		From:        parsed.From,
		To:          parsed.To,
		Source:      source,
	}

	u.writeLog(ctx, userID, res)
	return res, nil
}

// 外部サービスは1往復だけ。失敗はすべて「指標が分からない」扱い
func (u *QueryUsecase) classify(ctx context.Context, text string) (model.Metric, error) {
	if u.classifier == nil || !u.classifier.Enabled() {
		return "", newKindError(KindUnrecognizedMetric, unrecognizedQueryMsg, nil)
	}

	label, err := u.classifier.ClassifyQuery(ctx, text)
	if err != nil {
		zap.L().Warn("query classify failed", zap.String("query", text), zap.Error(err))
		return "", newKindError(KindUnrecognizedMetric, unrecognizedQueryMsg, err)
	}
	m, ok := classifierLabels[label]
	if !ok {
		return "", newKindError(KindUnrecognizedMetric, unrecognizedQueryMsg, nil)
	}
	return m, nil
}

// ログ保存の失敗で結果は捨てない
func (u *QueryUsecase) writeLog(ctx context.Context, userID int64, res QueryResult) {
	b, err := json.Marshal(res)
	if err != nil {
		zap.L().Warn("query log marshal failed", zap.Error(err))
		return
	}
	if err := u.queryLogs.Create(ctx, model.QueryLog{
		UserID:      userID,
		QueryText:   res.QueryText,
		QueryResult: string(b),
		CreatedAt:   u.clock.Now(),
	}); err != nil {
		zap.L().Warn("query log insert failed",
			zap.Int64("user_id", userID),
			zap.String("query", res.QueryText),
			zap.Error(err),
		)
	}
}

func (u *QueryUsecase) History(ctx context.Context, userID int64, limit int) ([]model.QueryLog, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized()
	}
	if limit == 0 {
		limit = 20
	}
	if limit < 1 || limit > 100 {
		return nil, ErrValidation("invalid limit")
	}

	logs, err := u.queryLogs.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, ErrPersistence(err)
	}
	return logs, nil
}
