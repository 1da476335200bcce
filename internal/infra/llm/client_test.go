package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salesapp/internal/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// content をそのまま choices[0] に入れて返すサーバ
func newTestServer(t *testing.T, status int, content string) (*httptest.Server, *chatRequest) {
	t.Helper()
	got := &chatRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(got)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"boom"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newTestClient(url string) *Client {
	return NewClient(config.Config{
		LLMAPIURL:  url,
		LLMAPIKey:  "test-key",
		LLMModel:   "test-model",
		LLMTimeout: 2 * time.Second,
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: `{"info":"销量"}`, want: `{"info":"销量"}`},
		{name: "json fence", raw: "```json\n{\"info\":\"销量\"}\n```", want: `{"info":"销量"}`},
		{name: "bare fence", raw: "```\n{\"info\":\"收入\"}\n```", want: `{"info":"收入"}`},
		{name: "surrounding text", raw: "结果如下: {\"a\":{\"b\":1}} 谢谢", want: `{"a":{"b":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ExtractJSON("no object here")
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestClassifyQuery(t *testing.T) {
	srv, got := newTestServer(t, http.StatusOK, "```json\n{\"info\": \"订单数\"}\n```")
	c := newTestClient(srv.URL)

	label, err := c.ClassifyQuery(context.Background(), "卖了多少单")
	require.NoError(t, err)
	assert.Equal(t, "订单数", label)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "卖了多少单")
}

func TestClassifyQuery_UnknownLabel(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"info": "商品种类"}`)
	c := newTestClient(srv.URL)

	_, err := c.ClassifyQuery(context.Background(), "有哪些种类")
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestComplete_UpstreamError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, "")
	c := newTestClient(srv.URL)

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 16)
	assert.True(t, errors.Is(err, ErrUpstream))
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()
	c := newTestClient(srv.URL)

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 16)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestComplete_Disabled(t *testing.T) {
	c := NewClient(config.Config{})
	assert.False(t, c.Enabled())

	_, err := c.Complete(context.Background(), nil, 16)
	assert.True(t, errors.Is(err, ErrDisabled))
}

func TestForecastSales_CoercesNumbers(t *testing.T) {
	content := "```json\n" + `{"predictions": [
		{"category_name": "手机", "predicted_sales": "120", "demand_level": "HIGH", "confidence": 0.8, "growth_rate": "12.5"},
		{"category_name": "电脑", "predicted_sales": 80, "demand_level": "low", "growth_rate": -3},
		{"category_name": "耳机", "predicted_sales": "很多", "demand_level": "high", "growth_rate": 1},
		{"category_name": "平板", "demand_level": "high", "growth_rate": 1}
	]}` + "\n```"
	srv, _ := newTestServer(t, http.StatusOK, content)
	c := newTestClient(srv.URL)

	entries, err := c.ForecastSales(context.Background(), []string{"手机", "电脑", "耳机", "平板"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, ForecastEntry{CategoryName: "手机", PredictedSales: 120, DemandLevel: "high", Confidence: 0.8, GrowthRate: 12.5}, entries[0])
	assert.Equal(t, "电脑", entries[1].CategoryName)
	assert.Equal(t, float64(80), entries[1].PredictedSales)
	assert.Equal(t, float64(-3), entries[1].GrowthRate)
}

func TestForecastSales_Malformed(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "抱歉，我无法预测")
	c := newTestClient(srv.URL)

	_, err := c.ForecastSales(context.Background(), []string{"手机"})
	assert.True(t, errors.Is(err, ErrMalformed))
}
