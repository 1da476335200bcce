package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salesapp/internal/config"
	"salesapp/internal/domain/model"
	"salesapp/internal/middleware"
	"salesapp/internal/repository"
	auth "salesapp/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "mw-secret"

type userRepoStub struct {
	user *model.User
	err  error
}

func (s userRepoStub) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	return s.user, s.err
}
func (s userRepoStub) Create(ctx context.Context, user *model.User) error { panic("not used") }
func (s userRepoStub) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	panic("not used")
}
func (s userRepoStub) Update(ctx context.Context, user *model.User) error { panic("not used") }
func (s userRepoStub) List(ctx context.Context, f repository.UserListFilter) ([]model.User, int64, error) {
	panic("not used")
}

func issue(t *testing.T, userID int64, role model.Role, tv int, now time.Time) string {
	t.Helper()
	tok, _, err := auth.NewJWTIssuer(secret, time.Hour).Issue(userID, role, tv, now)
	require.NoError(t, err)
	return tok
}

// AuthJWT → TokenVersionGuard → AdminRoleGuard の順に組んだecho
func newEcho(users repository.UserRepository) *echo.Echo {
	e := echo.New()
	cfg := config.Config{JWTSecret: secret}

	ok := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"user_id": c.Get(middleware.CtxUserIDKey),
			"role":    c.Get(middleware.CtxUserRoleKey),
		})
	}
	e.GET("/me", ok, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(users))
	e.GET("/admin", ok, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(users), middleware.AdminRoleGuard())
	return e
}

func do(e *echo.Echo, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT_OK(t *testing.T) {
	e := newEcho(userRepoStub{user: &model.User{ID: 5, TokenVersion: 1, IsActive: true}})

	rec := do(e, "/me", "Bearer "+issue(t, 5, model.RoleUser, 1, time.Now()))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":5,"role":"USER"}`, rec.Body.String())
}

func TestAuthJWT_Rejects(t *testing.T) {
	users := userRepoStub{user: &model.User{ID: 5, TokenVersion: 1, IsActive: true}}

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "5", "role": "USER", "tv": 1, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		authz string
	}{
		{name: "missing header", authz: ""},
		{name: "not bearer", authz: "Basic abc"},
		{name: "empty token", authz: "Bearer  "},
		{name: "garbage", authz: "Bearer abc.def.ghi"},
		{name: "wrong secret", authz: "Bearer " + other},
		{name: "expired", authz: "Bearer " + issue(t, 5, model.RoleUser, 1, time.Now().Add(-2*time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newEcho(users), "/me", tt.authz)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"code":0,"msg":"unauthorized","kind":"UNAUTHORIZED"}`, rec.Body.String())
		})
	}
}

func TestTokenVersionGuard(t *testing.T) {
	tests := []struct {
		name  string
		users userRepoStub
		want  int
	}{
		{name: "version bumped", users: userRepoStub{user: &model.User{ID: 5, TokenVersion: 2, IsActive: true}}, want: http.StatusUnauthorized},
		{name: "inactive", users: userRepoStub{user: &model.User{ID: 5, TokenVersion: 1}}, want: http.StatusUnauthorized},
		{name: "lookup error", users: userRepoStub{err: errors.New("db down")}, want: http.StatusUnauthorized},
		{name: "match", users: userRepoStub{user: &model.User{ID: 5, TokenVersion: 1, IsActive: true}}, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newEcho(tt.users), "/me", "Bearer "+issue(t, 5, model.RoleUser, 1, time.Now()))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAdminRoleGuard(t *testing.T) {
	users := userRepoStub{user: &model.User{ID: 5, TokenVersion: 0, IsActive: true}}

	rec := do(newEcho(users), "/admin", "Bearer "+issue(t, 5, model.RoleUser, 0, time.Now()))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"code":0,"msg":"admin only","kind":"FORBIDDEN"}`, rec.Body.String())

	rec = do(newEcho(users), "/admin", "Bearer "+issue(t, 5, model.RoleAdmin, 0, time.Now()))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger_PassesThroughAndResolvesErrors(t *testing.T) {
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "boom") })

	rec := do(e, "/ok", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, "/boom", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
