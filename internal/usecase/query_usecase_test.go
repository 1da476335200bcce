package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"
	"salesapp/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type queryFixture struct {
	cats       *CategoryRepoMock
	stats      *StatsRepoMock
	logs       *QueryLogRepoMock
	classifier *ClassifierMock
	uc         *usecase.QueryUsecase
}

func newQueryFixture(llmEnabled bool) queryFixture {
	f := queryFixture{
		cats:       new(CategoryRepoMock),
		stats:      new(StatsRepoMock),
		logs:       new(QueryLogRepoMock),
		classifier: &ClassifierMock{enabled: llmEnabled},
	}
	f.cats.On("ListActive", mock.Anything).Return(queryCategories, nil)
	f.uc = usecase.NewQueryUsecase(f.cats, f.stats, f.logs, f.classifier, fixedClock{t: queryNow}, shanghai)
	return f
}

func TestQueryUsecase_Resolve_Local(t *testing.T) {
	f := newQueryFixture(true)

	catID := int64(1)
	f.stats.On("Aggregate", mock.Anything, repo.AggregateFilter{
		Metric:     model.MetricSales,
		From:       day(2026, 3, 10),
		To:         day(2026, 3, 11),
		CategoryID: &catID,
	}).Return(decimal.RequireFromString("5998.00"), nil)
	f.logs.On("Create", mock.Anything, mock.MatchedBy(func(l model.QueryLog) bool {
		var res map[string]any
		return l.UserID == 7 && l.QueryText == "今天手机的销售额" &&
			json.Unmarshal([]byte(l.QueryResult), &res) == nil && res["metric"] == "sales"
	})).Return(nil)

	res, err := f.uc.Resolve(context.Background(), 7, "今天手机的销售额")
	require.NoError(t, err)

	assert.Equal(t, model.MetricSales, res.Metric)
	assert.Equal(t, "销售额", res.MetricLabel)
	assert.True(t, decimal.RequireFromString("5998").Equal(res.Value))
	assert.Equal(t, "手机", res.Category)
	assert.Equal(t, "今天", res.TimeLabel)
	assert.Equal(t, usecase.QuerySourceLocal, res.Source)

	f.classifier.AssertNotCalled(t, "ClassifyQuery", mock.Anything, mock.Anything)
	f.logs.AssertExpectations(t)
}

func TestQueryUsecase_Resolve_FallbackToClassifier(t *testing.T) {
	f := newQueryFixture(true)

	f.classifier.On("ClassifyQuery", mock.Anything, "昨天卖了多少单").Return("订单数", nil).Once()
	f.stats.On("Aggregate", mock.Anything, mock.MatchedBy(func(a repo.AggregateFilter) bool {
		return a.Metric == model.MetricOrders && a.CategoryID == nil && a.From.Equal(day(2026, 3, 9))
	})).Return(decimal.NewFromInt(12), nil)
	f.logs.On("Create", mock.Anything, mock.Anything).Return(nil)

	res, err := f.uc.Resolve(context.Background(), 7, "昨天卖了多少单")
	require.NoError(t, err)
	assert.Equal(t, model.MetricOrders, res.Metric)
	assert.Equal(t, usecase.QuerySourceAI, res.Source)
	assert.Equal(t, "全部", res.Category)
	f.classifier.AssertExpectations(t)
}

func TestQueryUsecase_Resolve_ClassifierLabelMapping(t *testing.T) {
	tests := map[string]model.Metric{
		"销售额": model.MetricSales,
		"收入":  model.MetricSales,
		"销量":  model.MetricQuantity,
		"客户数": model.MetricCustomers,
	}
	for label, want := range tests {
		t.Run(label, func(t *testing.T) {
			f := newQueryFixture(true)
			f.classifier.On("ClassifyQuery", mock.Anything, mock.Anything).Return(label, nil)
			f.stats.On("Aggregate", mock.Anything, mock.Anything).Return(decimal.Zero, nil)
			f.logs.On("Create", mock.Anything, mock.Anything).Return(nil)

			res, err := f.uc.Resolve(context.Background(), 7, "情况怎么样")
			require.NoError(t, err)
			assert.Equal(t, want, res.Metric)
		})
	}
}

func TestQueryUsecase_Resolve_Unrecognized(t *testing.T) {
	t.Run("classifier error", func(t *testing.T) {
		f := newQueryFixture(true)
		f.classifier.On("ClassifyQuery", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

		_, err := f.uc.Resolve(context.Background(), 7, "情况怎么样")
		assert.True(t, usecase.IsKind(err, usecase.KindUnrecognizedMetric))
		assertErrContains(t, err, "[时间] [商品种类] 的 [销售额/销量] 是多少")
		f.stats.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
	})

	t.Run("label outside the set", func(t *testing.T) {
		f := newQueryFixture(true)
		f.classifier.On("ClassifyQuery", mock.Anything, mock.Anything).Return("商品种类", nil)

		_, err := f.uc.Resolve(context.Background(), 7, "有哪些种类")
		assert.True(t, usecase.IsKind(err, usecase.KindUnrecognizedMetric))
	})

	t.Run("classifier disabled", func(t *testing.T) {
		f := newQueryFixture(false)

		_, err := f.uc.Resolve(context.Background(), 7, "情况怎么样")
		assert.True(t, usecase.IsKind(err, usecase.KindUnrecognizedMetric))
		f.classifier.AssertNotCalled(t, "ClassifyQuery", mock.Anything, mock.Anything)
	})
}

func TestQueryUsecase_Resolve_LogFailureStillReturnsResult(t *testing.T) {
	f := newQueryFixture(false)
	f.stats.On("Aggregate", mock.Anything, mock.Anything).Return(decimal.NewFromInt(3), nil)
	f.logs.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	res, err := f.uc.Resolve(context.Background(), 7, "本月销量")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(res.Value))
}

func TestQueryUsecase_Resolve_Validation(t *testing.T) {
	f := newQueryFixture(true)

	_, err := f.uc.Resolve(context.Background(), 7, "   ")
	assert.True(t, usecase.IsKind(err, usecase.KindValidation))

	long := make([]rune, 501)
	for i := range long {
		long[i] = '销'
	}
	_, err = f.uc.Resolve(context.Background(), 7, string(long))
	assert.True(t, usecase.IsKind(err, usecase.KindValidation))

	f.cats.AssertNotCalled(t, "ListActive", mock.Anything)
}

func TestQueryUsecase_Resolve_AggregateFailure(t *testing.T) {
	f := newQueryFixture(false)
	f.stats.On("Aggregate", mock.Anything, mock.Anything).Return(decimal.Zero, errors.New("db down"))

	_, err := f.uc.Resolve(context.Background(), 7, "本月销量")
	assert.True(t, usecase.IsKind(err, usecase.KindPersistence))
	f.logs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQueryUsecase_History(t *testing.T) {
	f := newQueryFixture(false)
	f.logs.On("ListByUserID", mock.Anything, int64(7), 20).Return([]model.QueryLog{{ID: 1, UserID: 7}}, nil)

	logs, err := f.uc.History(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = f.uc.History(context.Background(), 7, 101)
	assert.True(t, usecase.IsKind(err, usecase.KindValidation))
}
