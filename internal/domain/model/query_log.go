package model

import "time"

// 問数の記録。追記のみ
type QueryLog struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	QueryText   string    `gorm:"type:text;not null" json:"query_text"`
	QueryResult string    `gorm:"type:text" json:"query_result"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (QueryLog) TableName() string { return "query_logs" }
