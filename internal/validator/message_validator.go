package validator

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"salesapp/internal/usecase"
)

// 留言・返信に含めてはいけないパターン（大文字小文字は区別しない）
var forbiddenContent = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script.*?>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)union\s+select`),
	regexp.MustCompile(`(?i)drop\s+table`),
	regexp.MustCompile(`(?i)delete\s+from`),
	regexp.MustCompile(`(?i)insert\s+into`),
	regexp.MustCompile(`(?i)update\s+(\w+\s+)?set`),
}

// 内容が禁止パターンに当たらないか
func ValidateMessageContent(content string) bool {
	for _, re := range forbiddenContent {
		if re.MatchString(content) {
			return false
		}
	}
	return true
}

type messageValidator struct{}

// Usecaseは interface を依存注入
func NewMessageValidator() usecase.MessageValidator {
	return &messageValidator{}
}

// 留言の入力を検証
func (v *messageValidator) ValidateSubmit(ctx context.Context, customerName, contactInfo, content string) error {
	customerName = strings.TrimSpace(customerName)
	contactInfo = strings.TrimSpace(contactInfo)
	content = strings.TrimSpace(content)

	// 必須チェック
	if customerName == "" || contactInfo == "" || content == "" {
		return usecase.ErrValidation("姓名、联系方式和留言内容不能为空")
	}

	if utf8.RuneCountInString(customerName) > 50 {
		return usecase.ErrValidation("customer_name too long")
	}
	if utf8.RuneCountInString(contactInfo) > 100 {
		return usecase.ErrValidation("contact_info too long")
	}
	if utf8.RuneCountInString(content) > 1000 {
		return usecase.ErrValidation("content too long")
	}

	if !ValidateMessageContent(content) {
		return usecase.ErrValidation("留言内容包含非法字符")
	}
	return nil
}

// 返信の入力を検証
func (v *messageValidator) ValidateReply(ctx context.Context, messageID int64, content string) error {
	if messageID <= 0 {
		return usecase.ErrValidation("invalid message id")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return usecase.ErrValidation("留言ID和回复内容不能为空")
	}
	if utf8.RuneCountInString(content) > 1000 {
		return usecase.ErrValidation("reply_content too long")
	}
	if !ValidateMessageContent(content) {
		return usecase.ErrValidation("回复内容包含非法字符")
	}
	return nil
}

// 簡易メール形式をチェック
func IsEmailLike(s string) bool {
	return emailRe.MatchString(s)
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
