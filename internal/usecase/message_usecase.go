package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"
)

// usecaseがValidatorInterfaceに依存する約束
type MessageValidator interface {
	ValidateSubmit(ctx context.Context, customerName, contactInfo, content string) error
	ValidateReply(ctx context.Context, messageID int64, content string) error
}

type MessageUsecase struct {
	messages  repo.MessageRepository
	validator MessageValidator
	clock     Clock
	loc       *time.Location
}

func NewMessageUsecase(messages repo.MessageRepository, validator MessageValidator, clock Clock, loc *time.Location) *MessageUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &MessageUsecase{messages: messages, validator: validator, clock: clock, loc: loc}
}

type SubmitMessageInput struct {
	CustomerName string
	ContactInfo  string
	Content      string
}

type MessageListInput struct {
	Page    int
	Limit   int
	Status  string
	Keyword string
}

type MessageListOutput struct {
	Items []repo.MessageWithReplier `json:"items"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

// 公開の留言投稿
func (u *MessageUsecase) Submit(ctx context.Context, in SubmitMessageInput) (model.Message, error) {
	if err := u.validator.ValidateSubmit(ctx, in.CustomerName, in.ContactInfo, in.Content); err != nil {
		return model.Message{}, err
	}

	m, err := u.messages.Create(ctx, model.Message{
		CustomerName: strings.TrimSpace(in.CustomerName),
		ContactInfo:  strings.TrimSpace(in.ContactInfo),
		Content:      strings.TrimSpace(in.Content),
		Status:       model.MessageStatusUnread,
		CreatedAt:    u.clock.Now(),
	})
	if err != nil {
		return model.Message{}, ErrPersistence(err)
	}
	return m, nil
}

func (u *MessageUsecase) List(ctx context.Context, in MessageListInput) (MessageListOutput, error) {
	if in.Page < 1 {
		return MessageListOutput{}, ErrValidation("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return MessageListOutput{}, ErrValidation("invalid limit")
	}
	switch model.MessageStatus(in.Status) {
	case "", model.MessageStatusUnread, model.MessageStatusRead, model.MessageStatusReplied:
	default:
		return MessageListOutput{}, ErrValidation("invalid status")
	}
	if len([]rune(in.Keyword)) > 100 {
		return MessageListOutput{}, ErrValidation("keyword too long")
	}

	items, total, err := u.messages.List(ctx, repo.MessageListFilter{
		Page:    in.Page,
		Limit:   in.Limit,
		Status:  in.Status,
		Keyword: strings.TrimSpace(in.Keyword),
	})
	if err != nil {
		return MessageListOutput{}, ErrPersistence(err)
	}
	if items == nil {
		items = []repo.MessageWithReplier{}
	}
	return MessageListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *MessageUsecase) Reply(ctx context.Context, adminID int64, messageID int64, content string) error {
	if adminID <= 0 {
		return ErrUnauthorized()
	}
	if err := u.validator.ValidateReply(ctx, messageID, content); err != nil {
		return err
	}

	err := u.messages.Reply(ctx, messageID, strings.TrimSpace(content), adminID, u.clock.Now())
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound("留言不存在")
	}
	if err != nil {
		return ErrPersistence(err)
	}
	return nil
}

// 未読だけ既読にする（返信済みはそのまま）
func (u *MessageUsecase) MarkRead(ctx context.Context, messageID int64) error {
	if messageID <= 0 {
		return ErrValidation("invalid message id")
	}

	m, err := u.messages.FindByID(ctx, messageID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound("留言不存在")
	}
	if err != nil {
		return ErrPersistence(err)
	}
	if m.Status != model.MessageStatusUnread {
		return nil
	}

	if err := u.messages.UpdateStatus(ctx, messageID, model.MessageStatusRead); err != nil {
		return ErrPersistence(err)
	}
	return nil
}

func (u *MessageUsecase) Delete(ctx context.Context, messageID int64) error {
	if messageID <= 0 {
		return ErrValidation("invalid message id")
	}
	err := u.messages.Delete(ctx, messageID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound("留言不存在")
	}
	if err != nil {
		return ErrPersistence(err)
	}
	return nil
}

func (u *MessageUsecase) Stats(ctx context.Context) (repo.MessageStats, error) {
	now := u.clock.Now().In(u.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.loc)

	s, err := u.messages.Stats(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return repo.MessageStats{}, ErrPersistence(err)
	}
	return s, nil
}
