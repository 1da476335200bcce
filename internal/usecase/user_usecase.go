package usecase

import (
	"context"
	"strings"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"
)

type UserUsecase struct {
	users repo.UserRepository
}

func NewUserUsecase(users repo.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

type UserListOutput struct {
	Items []model.User `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// 管理画面のユーザー一覧（password_hashはjsonに出ない）
func (u *UserUsecase) List(ctx context.Context, page, limit int, keyword string) (UserListOutput, error) {
	if page < 1 {
		return UserListOutput{}, ErrValidation("invalid page")
	}
	if limit < 1 || limit > 100 {
		return UserListOutput{}, ErrValidation("invalid limit")
	}

	items, total, err := u.users.List(ctx, repo.UserListFilter{
		Page:    page,
		Limit:   limit,
		Keyword: strings.TrimSpace(keyword),
	})
	if err != nil {
		return UserListOutput{}, ErrPersistence(err)
	}
	if items == nil {
		items = []model.User{}
	}
	return UserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}
