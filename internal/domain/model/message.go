package model

import "time"

type MessageStatus string

const (
	MessageStatusUnread  MessageStatus = "unread"
	MessageStatusRead    MessageStatus = "read"
	MessageStatusReplied MessageStatus = "replied"
)

// 顧客からの留言
type Message struct {
	ID           int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName string        `gorm:"type:varchar(50);not null" json:"customer_name"`
	ContactInfo  string        `gorm:"type:varchar(100);not null" json:"contact_info"`
	Content      string        `gorm:"type:text;not null" json:"content"`
	Status       MessageStatus `gorm:"type:varchar(20);not null;default:'unread';index" json:"status"`
	ReplyContent string        `gorm:"type:text" json:"reply_content"`
	ReplyUserID  *int64        `json:"reply_user_id,omitempty"`
	RepliedAt    *time.Time    `json:"replied_at,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;index;autoCreateTime" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
