package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"salesapp/internal/domain/model"
	"salesapp/internal/infra/llm"
	repo "salesapp/internal/repository"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	forecastLookbackDays = 180
	forecastWindowMonths = 3
	highGrowthThreshold  = 15.0
)

const insufficientHistoryMsg = "没有足够的历史数据用于预测"

// 外部サービスによる予測の上書き
type SalesForecaster interface {
	Enabled() bool
	ForecastSales(ctx context.Context, categories []string) ([]llm.ForecastEntry, error)
}

type ForecastUsecase struct {
	stats       repo.StatisticsRepository
	predictions repo.PredictionRepository
	forecaster  SalesForecaster
	clock       Clock
	loc         *time.Location
}

func NewForecastUsecase(
	statsRepo repo.StatisticsRepository,
	predictions repo.PredictionRepository,
	forecaster SalesForecaster,
	clock Clock,
	loc *time.Location,
) *ForecastUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &ForecastUsecase{
		stats:       statsRepo,
		predictions: predictions,
		forecaster:  forecaster,
		clock:       clock,
		loc:         loc,
	}
}

type Prediction struct {
	CategoryID     int64                  `json:"category_id"`
	CategoryName   string                 `json:"category_name"`
	PredictedSales int64                  `json:"predicted_sales"`
	DemandLevel    model.DemandLevel      `json:"demand_level"`
	GrowthRate     decimal.Decimal        `json:"growth_rate"`
	Confidence     float64                `json:"confidence,omitempty"`
	Source         model.PredictionSource `json:"source"`
}

type ForecastOutput struct {
	PredictionDate string       `json:"prediction_date"`
	Predictions    []Prediction `json:"predictions"`
}

// 種類ごとの月次販売数量から翌月の販売数量を予測し、当日分として保存する
func (u *ForecastUsecase) Forecast(ctx context.Context) (ForecastOutput, error) {
	now := u.clock.Now().In(u.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.loc)

	rows, err := u.stats.MonthlyCategorySales(ctx, today.AddDate(0, 0, -forecastLookbackDays))
	if err != nil {
		return ForecastOutput{}, ErrPersistence(err)
	}
	// 直近が空なら全期間で再取得
	if len(rows) == 0 {
		rows, err = u.stats.MonthlyCategorySales(ctx, time.Time{})
		if err != nil {
			return ForecastOutput{}, ErrPersistence(err)
		}
	}
	if len(rows) == 0 {
		return ForecastOutput{}, newKindError(KindInsufficientHistory, insufficientHistoryMsg, nil)
	}

	preds := localPredictions(rows)
	if len(preds) > 0 {
		u.applyForecaster(ctx, preds)
	}

	out := ForecastOutput{
		PredictionDate: today.Format("2006-01-02"),
		Predictions:    preds,
	}
	if len(preds) == 0 {
		return out, nil
	}

	records := make([]model.SalesPrediction, 0, len(preds))
	for _, p := range preds {
		records = append(records, model.SalesPrediction{
			CategoryID:     p.CategoryID,
			CategoryName:   p.CategoryName,
			PredictedSales: p.PredictedSales,
			DemandLevel:    p.DemandLevel,
			GrowthRate:     p.GrowthRate,
			Source:         p.Source,
			PredictionDate: today,
		})
	}
	if err := u.predictions.Upsert(ctx, records); err != nil {
		return ForecastOutput{}, ErrPersistence(err)
	}
	return out, nil
}

type categorySeries struct {
	id         int64
	name       string
	quantities []float64
}

// rowsは category, month 順
func localPredictions(rows []repo.MonthlyCategorySales) []Prediction {
	var series []*categorySeries
	byID := map[int64]*categorySeries{}
	for _, r := range rows {
		s, ok := byID[r.CategoryID]
		if !ok {
			s = &categorySeries{id: r.CategoryID, name: r.CategoryName}
			byID[r.CategoryID] = s
			series = append(series, s)
		}
		s.quantities = append(s.quantities, float64(r.Quantity))
	}

	preds := make([]Prediction, 0, len(series))
	for _, s := range series {
		n := len(s.quantities)
		if n < forecastWindowMonths {
			continue
		}
		mean, err := stats.Mean(stats.Float64Data(s.quantities[n-forecastWindowMonths:]))
		if err != nil {
			continue
		}

		growth := growthRate(s.quantities[n-2], s.quantities[n-1])
		preds = append(preds, Prediction{
			CategoryID:     s.id,
			CategoryName:   s.name,
			PredictedSales: int64(math.Round(mean)),
			DemandLevel:    demandLevelFor(growth),
			GrowthRate:     decimal.NewFromFloat(growth).Round(2),
			Source:         model.PredictionSourceLocal,
		})
	}
	return preds
}

// 前月が0なら0
func growthRate(prev, last float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (last - prev) / prev * 100
}

func demandLevelFor(growth float64) model.DemandLevel {
	switch {
	case growth >= highGrowthThreshold:
		return model.DemandHigh
	case growth >= 0:
		return model.DemandMedium
	default:
		return model.DemandLow
	}
}

// 使える予測だけ上書きする。呼び出しが失敗したら全件ローカルのまま
func (u *ForecastUsecase) applyForecaster(ctx context.Context, preds []Prediction) {
	if u.forecaster == nil || !u.forecaster.Enabled() {
		return
	}

	names := make([]string, 0, len(preds))
	for _, p := range preds {
		names = append(names, p.CategoryName)
	}
	entries, err := u.forecaster.ForecastSales(ctx, names)
	if err != nil {
		zap.L().Warn("forecast enhancement failed, using local predictions", zap.Error(err))
		return
	}

	valid := make([]llm.ForecastEntry, 0, len(entries))
	for _, e := range entries {
		if validForecastEntry(e) {
			valid = append(valid, e)
		}
	}

	// 他カテゴリに完全一致した項目は部分一致の候補から外す
	exact := make(map[string]bool, len(preds))
	for _, p := range preds {
		exact[p.CategoryName] = true
	}

	for i := range preds {
		e, ok := matchForecastEntry(preds[i].CategoryName, valid, exact)
		if !ok {
			continue
		}
		level, _ := model.ParseDemandLevel(e.DemandLevel)
		preds[i].PredictedSales = int64(math.Round(e.PredictedSales))
		preds[i].DemandLevel = level
		preds[i].GrowthRate = decimal.NewFromFloat(e.GrowthRate).Round(2)
		preds[i].Confidence = clamp01(e.Confidence)
		preds[i].Source = model.PredictionSourceAI
	}
}

func validForecastEntry(e llm.ForecastEntry) bool {
	if strings.TrimSpace(e.CategoryName) == "" {
		return false
	}
	if e.PredictedSales < 0 || math.IsNaN(e.PredictedSales) || math.IsInf(e.PredictedSales, 0) {
		return false
	}
	if math.IsNaN(e.GrowthRate) || math.IsInf(e.GrowthRate, 0) {
		return false
	}
	_, ok := model.ParseDemandLevel(e.DemandLevel)
	return ok
}

// 完全一致を優先し、なければ部分一致（どちら向きでも）。
// taken に含まれる名前の項目は別カテゴリの完全一致分なので部分一致では使わない
func matchForecastEntry(name string, entries []llm.ForecastEntry, taken map[string]bool) (llm.ForecastEntry, bool) {
	for _, e := range entries {
		if e.CategoryName == name {
			return e, true
		}
	}
	for _, e := range entries {
		if taken[e.CategoryName] {
			continue
		}
		if strings.Contains(e.CategoryName, name) || strings.Contains(name, e.CategoryName) {
			return e, true
		}
	}
	return llm.ForecastEntry{}, false
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (u *ForecastUsecase) History(ctx context.Context, date *time.Time) ([]model.SalesPrediction, error) {
	ps, err := u.predictions.List(ctx, date)
	if err != nil {
		return nil, ErrPersistence(err)
	}
	return ps, nil
}
