package usecase

import (
	"context"
	"strings"
	"time"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"
)

// 管理者向けの監査ログ閲覧
type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

type AuditLogListInput struct {
	Page         int
	Limit        int
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   string
	From         *time.Time
	To           *time.Time
}

type AuditLogListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (u *AuditLogUsecase) List(ctx context.Context, in AuditLogListInput) (AuditLogListOutput, error) {
	if in.Page < 1 {
		return AuditLogListOutput{}, ErrValidation("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AuditLogListOutput{}, ErrValidation("invalid limit")
	}

	f := repo.AuditLogListFilter{
		Page:        in.Page,
		Limit:       in.Limit,
		ActorUserID: in.ActorUserID,
		ResourceID:  strings.TrimSpace(in.ResourceID),
		From:        in.From,
		To:          in.To,
	}
	if in.Action != "" {
		a, valid := model.ParseAuditAction(strings.ToUpper(in.Action))
		if !valid {
			return AuditLogListOutput{}, ErrValidation("invalid action")
		}
		f.Action = a
	}
	if in.ResourceType != "" {
		r, valid := model.ParseAuditResourceType(strings.ToLower(in.ResourceType))
		if !valid {
			return AuditLogListOutput{}, ErrValidation("invalid resource_type")
		}
		f.ResourceType = r
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return AuditLogListOutput{}, ErrValidation("from must be before to")
	}

	logs, total, err := u.logs.ListAdmin(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, ErrPersistence(err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return AuditLogListOutput{Items: logs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}
