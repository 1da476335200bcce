package usecase

import "time"

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間（テストで固定する）
type Clock interface {
	Now() time.Time
}
