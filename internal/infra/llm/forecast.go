package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// 1種類ぶんの予測。数値は文字列で来ることもあるのでcastで揃える
type ForecastEntry struct {
	CategoryName   string
	PredictedSales float64
	DemandLevel    string
	Confidence     float64
	GrowthRate     float64
}

const forecastPromptTmpl = `基于以下商品种类生成销量预测JSON：
%s

返回格式：
{
  "predictions": [
    {"category_name": "具体种类名", "predicted_sales": 数字, "demand_level": "high/medium/low", "confidence": 0.8, "growth_rate": 数字}
  ]
}

只返回JSON，不要其他文字。`

func (c *Client) ForecastSales(ctx context.Context, categories []string) ([]ForecastEntry, error) {
	names := strings.Join(categories, ", ")
	raw, err := c.Complete(ctx, []Message{
		{Role: "system", Content: fmt.Sprintf(forecastPromptTmpl, names)},
		{Role: "user", Content: "基于历史数据为以下种类生成销量预测: " + names},
	}, 2048)
	if err != nil {
		return nil, err
	}

	var out struct {
		Predictions []map[string]any `json:"predictions"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		return nil, err
	}

	entries := make([]ForecastEntry, 0, len(out.Predictions))
	for _, p := range out.Predictions {
		e, ok := toForecastEntry(p)
		if !ok {
			zap.L().Debug("llm forecast entry skipped", zap.Any("entry", p))
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// 数値にならない項目があれば捨てる
func toForecastEntry(p map[string]any) (ForecastEntry, bool) {
	for _, k := range []string{"category_name", "predicted_sales", "growth_rate"} {
		if v, ok := p[k]; !ok || v == nil {
			return ForecastEntry{}, false
		}
	}
	name, err := cast.ToStringE(p["category_name"])
	if err != nil {
		return ForecastEntry{}, false
	}
	sales, err := cast.ToFloat64E(p["predicted_sales"])
	if err != nil {
		return ForecastEntry{}, false
	}
	growth, err := cast.ToFloat64E(p["growth_rate"])
	if err != nil {
		return ForecastEntry{}, false
	}
	level, _ := cast.ToStringE(p["demand_level"])
	conf, err := cast.ToFloat64E(p["confidence"])
	if err != nil {
		conf = 0
	}

	return ForecastEntry{
		CategoryName:   strings.TrimSpace(name),
		PredictedSales: sales,
		DemandLevel:    strings.ToLower(strings.TrimSpace(level)),
		Confidence:     conf,
		GrowthRate:     growth,
	}, true
}
