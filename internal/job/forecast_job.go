package job

import (
	"context"
	"strings"
	"time"

	"salesapp/internal/domain/model"
	"salesapp/internal/usecase"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Forecaster interface {
	Forecast(ctx context.Context) (usecase.ForecastOutput, error)
}

// 販売予測の定期実行
type ForecastJob struct {
	uc      Forecaster
	spec    string
	loc     *time.Location
	timeout time.Duration
	cron    *cron.Cron
}

func NewForecastJob(uc Forecaster, spec string, loc *time.Location) *ForecastJob {
	if loc == nil {
		loc = time.Local
	}
	return &ForecastJob{
		uc:      uc,
		spec:    strings.TrimSpace(spec),
		loc:     loc,
		timeout: 5 * time.Minute,
	}
}

// 空かoffならスケジュールしない
func (j *ForecastJob) Enabled() bool {
	return j.spec != "" && !strings.EqualFold(j.spec, "off")
}

// 5フィールドのcron式（分 時 日 月 曜日）
func (j *ForecastJob) Start() error {
	if !j.Enabled() {
		zap.L().Info("forecast job disabled")
		return nil
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(j.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(j.spec, func() { j.Run(context.Background()) }); err != nil {
		return errors.Wrapf(err, "invalid FORECAST_CRON %q", j.spec)
	}

	j.cron = c
	c.Start()
	zap.L().Info("forecast job scheduled", zap.String("spec", j.spec), zap.String("tz", j.loc.String()))
	return nil
}

// 実行中のジョブが終わるまで待つ
func (j *ForecastJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// 1回分の予測。失敗はログだけ残して次回に回す
func (j *ForecastJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	out, err := j.uc.Forecast(ctx)
	if err != nil {
		zap.L().Warn("scheduled forecast failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return
	}

	ai := 0
	for _, p := range out.Predictions {
		if p.Source == model.PredictionSourceAI {
			ai++
		}
	}
	zap.L().Info("scheduled forecast done",
		zap.String("prediction_date", out.PredictionDate),
		zap.Int("categories", len(out.Predictions)),
		zap.Int("ai_overrides", ai),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// cron.Logger を zap に流す
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
