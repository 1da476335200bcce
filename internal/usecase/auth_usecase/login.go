package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"salesapp/internal/domain/model"
	"salesapp/internal/repository"
	"salesapp/internal/usecase"

	"go.uber.org/zap"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Username string
	Password string
}

type JwtAccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User     `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type LoginUsecase struct {
	userRepo repository.UserRepository
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo: userRepo,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return out, usecase.ErrValidation("username and password required")
	}

	//ユーザー名でユーザー取得
	user, err := u.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, usecase.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return out, usecase.ErrPersistence(err)
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return out, usecase.NewHTTPError(http.StatusUnauthorized, "user is inactive")
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, usecase.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//AccessToken発行
	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, usecase.NewHTTPError(http.StatusInternalServerError, "token issue failed")
	}

	//最終ログイン時刻更新（失敗してもログインは通す）
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		zap.L().Warn("update last_login_at failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	out.User = *user
	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	return out, nil
}
