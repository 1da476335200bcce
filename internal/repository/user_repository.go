package repository

import (
	"context"

	"salesapp/internal/domain/model"
)

type UserListFilter struct {
	Page    int
	Limit   int
	Keyword string
}

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//ユーザー名から一件取得する。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// 最後のログインなど
	Update(ctx context.Context, user *model.User) error
	//管理画面の一覧
	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
}
