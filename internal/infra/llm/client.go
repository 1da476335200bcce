package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"salesapp/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

var (
	// 2xx以外の応答
	ErrUpstream = errors.New("llm upstream error")
	// choicesが空
	ErrEmptyResponse = errors.New("llm empty response")
	// JSONとして読めない・スキーマ外
	ErrMalformed = errors.New("llm malformed response")
	// 未設定
	ErrDisabled = errors.New("llm disabled")
)

const defaultTemperature = 0.7

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// chat completions 互換のAPIを叩くクライアント
type Client struct {
	http  *resty.Client
	url   string
	model string
}

func NewClient(cfg config.Config) *Client {
	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	h := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.LLMAPIKey != "" {
		h.SetAuthToken(cfg.LLMAPIKey)
	}
	return &Client{
		http:  h,
		url:   cfg.LLMAPIURL,
		model: cfg.LLMModel,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

// 1往復だけ。中身のテキストを返す
func (c *Client) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: defaultTemperature,
		}).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return "", errors.Wrap(err, "llm request")
	}
	if !resp.IsSuccess() {
		return "", errors.Wrapf(ErrUpstream, "status=%d body=%s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}

// ```json ... ``` のようなフェンスを外し、一番外側の {...} を取り出す
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+len("```"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", errors.Wrap(ErrMalformed, "no json object")
	}
	return s[start : end+1], nil
}

func decodeJSON(raw string, v any) error {
	body, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return errors.Wrapf(ErrMalformed, "unmarshal: %v", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return fmt.Sprintf("%s...", string(r[:n]))
}
