package repository

import (
	"context"
	"time"

	"salesapp/internal/domain/model"
)

type MessageListFilter struct {
	Page    int
	Limit   int
	Status  string
	Keyword string
}

// 一覧表示用（返信者名つき）
type MessageWithReplier struct {
	model.Message
	ReplyUserName string `json:"reply_user_name"`
}

type MessageStats struct {
	Unread int64 `json:"unread_count"`
	Total  int64 `json:"total_count"`
	Today  int64 `json:"today_count"`
}

type MessageRepository interface {
	Create(ctx context.Context, m model.Message) (model.Message, error)
	FindByID(ctx context.Context, id int64) (model.Message, error)
	List(ctx context.Context, f MessageListFilter) ([]MessageWithReplier, int64, error)
	Reply(ctx context.Context, id int64, content string, replyUserID int64, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status model.MessageStatus) error
	Delete(ctx context.Context, id int64) error
	// todayは [dayStart, dayEnd) で数える
	Stats(ctx context.Context, dayStart, dayEnd time.Time) (MessageStats, error)
}
