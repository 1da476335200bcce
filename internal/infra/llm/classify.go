package llm

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// 問数の種類ラベル
var QueryLabels = []string{"销售额", "收入", "销量", "订单数", "客户数"}

const classifyPrompt = `你是专业的销售数据分析助手。请根据用户问题识别他们想要查询的数据类型。
只返回一个JSON：
{"info": "销售额/销量/订单数/客户数"}`

// 問数テキストを分類してラベルを1つ返す
func (c *Client) ClassifyQuery(ctx context.Context, text string) (string, error) {
	raw, err := c.Complete(ctx, []Message{
		{Role: "system", Content: classifyPrompt},
		{Role: "user", Content: "用户问题: " + text},
	}, 256)
	if err != nil {
		return "", err
	}

	var out struct {
		Info string `json:"info"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		return "", err
	}

	label := strings.TrimSpace(out.Info)
	for _, l := range QueryLabels {
		if l == label {
			return label, nil
		}
	}
	return "", errors.Wrapf(ErrMalformed, "unknown label: %q", label)
}
