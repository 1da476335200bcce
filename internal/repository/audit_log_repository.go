package repository

import (
	"context"
	"time"

	"salesapp/internal/domain/model"
)

// 管理画面の監査ログ一覧の絞り込み。空の項目は条件にしない
type AuditLogListFilter struct {
	Page         int
	Limit        int
	ActorUserID  *int64
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   string
	From         *time.Time
	To           *time.Time
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	//新しい順。総件数も返す
	ListAdmin(ctx context.Context, f AuditLogListFilter) ([]model.AuditLog, int64, error)
}
