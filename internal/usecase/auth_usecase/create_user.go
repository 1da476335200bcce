package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"salesapp/internal/domain/model"
	"salesapp/internal/repository"
	"salesapp/internal/usecase"
	"salesapp/internal/validator"

	"go.uber.org/zap"
)

// 管理者によるユーザー追加の入力
type CreateUserInput struct {
	Username string
	Password string
	Role     string
	RealName string
	Phone    string
	Email    string
}

// CreateUserUsecaseは管理者がユーザーを追加する処理。
type CreateUserUsecase struct {
	userRepo  repository.UserRepository
	auditLogs repository.AuditLogRepository
	hasher    PasswordHasher
	clock     Clock
}

// DI
func NewCreateUserUsecase(
	userRepo repository.UserRepository,
	auditLogs repository.AuditLogRepository,
	hasher PasswordHasher,
	clock Clock,
) *CreateUserUsecase {
	return &CreateUserUsecase{
		userRepo:  userRepo,
		auditLogs: auditLogs,
		hasher:    hasher,
		clock:     clock,
	}
}

func (u *CreateUserUsecase) Execute(ctx context.Context, actorID int64, in CreateUserInput) (model.User, error) {
	username := strings.TrimSpace(in.Username)
	if n := len([]rune(username)); n < 3 || n > 50 {
		return model.User{}, usecase.ErrValidation("username must be 3-50 characters")
	}
	if len(in.Password) < 8 {
		return model.User{}, usecase.ErrValidation("password too short")
	}
	if isWeakPassword(in.Password) {
		return model.User{}, usecase.ErrValidation("weak password")
	}

	if email := strings.TrimSpace(in.Email); email != "" && !validator.IsEmailLike(email) {
		return model.User{}, usecase.ErrValidation("invalid email")
	}

	role := model.RoleUser
	if in.Role != "" {
		switch model.Role(strings.ToUpper(in.Role)) {
		case model.RoleUser:
		case model.RoleAdmin:
			role = model.RoleAdmin
		default:
			return model.User{}, usecase.ErrValidation("invalid role")
		}
	}

	// ユーザー名重複チェック
	existing, err := u.userRepo.FindByUsername(ctx, username)
	if err == nil && existing != nil {
		return model.User{}, usecase.ErrConflict("username already exists")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, usecase.ErrPersistence(err)
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, usecase.NewHTTPError(http.StatusInternalServerError, "password hash failed")
	}

	now := u.clock.Now()
	user := &model.User{
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
		RealName:     strings.TrimSpace(in.RealName),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        strings.TrimSpace(in.Email),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, usecase.ErrConflict("username already exists")
		}
		return model.User{}, usecase.ErrPersistence(err)
	}

	// 起動時の初期管理者作成（actorなし）は記録しない
	if actorID > 0 && u.auditLogs != nil {
		if err := u.auditLogs.Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionCreateUser,
			ResourceType: model.AuditResourceUser,
			ResourceID:   fmt.Sprintf("%d", user.ID),
			AfterJSON:    fmt.Sprintf(`{"username":%q,"role":%q}`, user.Username, user.Role),
			CreatedAt:    now,
		}); err != nil {
			zap.L().Warn("audit log insert failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	return *user, nil
}

// よくある弱いパスワード
func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":    {},
		"password123": {},
		"1234567890":  {},
		"12345678":    {},
		"qwertyuiop":  {},
		"admin123":    {},
	}

	_, ok := weak[normalized]
	return ok
}
