package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"salesapp/internal/domain/model"
)

// 全種類を対象にしたときの表示名
const allCategoriesLabel = "全部"

// 解析結果。期間は [From, To)
type ParsedQuery struct {
	Metric       model.Metric
	From         time.Time
	To           time.Time
	TimeLabel    string
	CategoryID   *int64
	CategoryName string
}

type metricKeywords struct {
	metric   model.Metric
	keywords []string
}

// 上から順に評価（最初に当たったもの）
var metricTable = []metricKeywords{
	{model.MetricSales, []string{"销售额", "销售金额", "营业额", "收入"}},
	{model.MetricQuantity, []string{"销量", "销售量", "数量", "件数"}},
	{model.MetricOrders, []string{"订单数", "订单量", "订单"}},
	{model.MetricCustomers, []string{"客户数", "客户量", "用户数"}},
}

var metricLabels = map[model.Metric]string{
	model.MetricSales:     "销售额",
	model.MetricQuantity:  "销量",
	model.MetricOrders:    "订单数",
	model.MetricCustomers: "客户数",
}

func MetricLabel(m model.Metric) string { return metricLabels[m] }

var (
	reToday     = regexp.MustCompile(`今天|今日`)
	reYesterday = regexp.MustCompile(`昨天|昨日`)
	reRecent    = regexp.MustCompile(`近.*?天|最近.*?天|过去.*?天`)
	reDays      = regexp.MustCompile(`(\d+)天`)
	reMonth     = regexp.MustCompile(`本月|这个月|当月`)
	reYear      = regexp.MustCompile(`今年|本年|当年`)
	reCustom    = regexp.MustCompile(`(\d{4})年(\d{1,2})月`)
)

const defaultRecentDays = 7

// 問数テキストを解析する。okは指標が見つかったかどうか
// nowのLocationで日付境界を決める
func ParseQuery(text string, categories []model.Category, now time.Time) (ParsedQuery, bool) {
	lower := strings.ToLower(text)

	var q ParsedQuery
	q.From, q.To, q.TimeLabel = parseTimeWindow(lower, now)

	q.CategoryName = allCategoriesLabel
	for _, c := range categories {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			continue
		}
		if strings.Contains(lower, name) {
			id := c.ID
			q.CategoryID = &id
			q.CategoryName = c.Name
			break
		}
	}

	m, ok := parseMetric(lower)
	q.Metric = m
	return q, ok
}

func parseMetric(lower string) (model.Metric, bool) {
	for _, mk := range metricTable {
		for _, kw := range mk.keywords {
			if strings.Contains(lower, kw) {
				return mk.metric, true
			}
		}
	}
	return "", false
}

func parseTimeWindow(text string, now time.Time) (time.Time, time.Time, string) {
	d0 := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case reToday.MatchString(text):
		return d0, d0.AddDate(0, 0, 1), "今天"
	case reYesterday.MatchString(text):
		return d0.AddDate(0, 0, -1), d0, "昨天"
	}

	// 日数が取れないときは次のパターンへ
	if reRecent.MatchString(text) {
		if m := reDays.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return d0.AddDate(0, 0, -n), d0.AddDate(0, 0, 1), fmt.Sprintf("最近%d天", n)
			}
		}
	}

	if reMonth.MatchString(text) {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first, first.AddDate(0, 1, 0), "本月"
	}
	if reYear.MatchString(text) {
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return first, first.AddDate(1, 0, 0), "今年"
	}

	if m := reCustom.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		if mon >= 1 && mon <= 12 {
			first := time.Date(y, time.Month(mon), 1, 0, 0, 0, 0, now.Location())
			return first, first.AddDate(0, 1, 0), fmt.Sprintf("%d年%d月", y, mon)
		}
	}

	return d0.AddDate(0, 0, -defaultRecentDays), d0.AddDate(0, 0, 1), fmt.Sprintf("最近%d天", defaultRecentDays)
}
