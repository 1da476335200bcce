package validator

import (
	"context"
	"strings"
	"testing"

	"salesapp/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessageContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "plain chinese", content: "请问手机什么时候到货？", want: true},
		{name: "script tag", content: "<SCRIPT>alert(1)</script>", want: false},
		{name: "javascript protocol", content: "点这里 JavaScript:alert(1)", want: false},
		{name: "event handler", content: `<img src=x onerror = "x">`, want: false},
		{name: "union select", content: "1 UNION   SELECT password", want: false},
		{name: "drop table", content: "drop table users", want: false},
		{name: "delete from", content: "DELETE FROM goods", want: false},
		{name: "insert into", content: "insert into orders", want: false},
		{name: "update set", content: "update goods set stock=0", want: false},
		{name: "update word alone", content: "有更新吗 update please", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateMessageContent(tt.content))
		})
	}
}

func TestValidateSubmit(t *testing.T) {
	v := NewMessageValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateSubmit(ctx, "张三", "13800000000", "想咨询一下售后"))

	err := v.ValidateSubmit(ctx, " ", "13800000000", "内容")
	assert.True(t, usecase.IsKind(err, usecase.KindValidation))

	err = v.ValidateSubmit(ctx, "张三", "13800000000", strings.Repeat("好", 1001))
	assert.True(t, usecase.IsKind(err, usecase.KindValidation))

	err = v.ValidateSubmit(ctx, "张三", "13800000000", "<script>x</script>")
	assert.True(t, usecase.IsKind(err, usecase.KindValidation))
}

func TestValidateReply(t *testing.T) {
	v := NewMessageValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateReply(ctx, 1, "已处理，感谢反馈"))
	assert.Error(t, v.ValidateReply(ctx, 0, "已处理"))
	assert.Error(t, v.ValidateReply(ctx, 1, "  "))
	assert.Error(t, v.ValidateReply(ctx, 1, "drop table messages"))
}

func TestIsEmailLike(t *testing.T) {
	assert.True(t, IsEmailLike("admin@example.com"))
	assert.False(t, IsEmailLike("admin@example"))
	assert.False(t, IsEmailLike("a b@example.com"))
}
