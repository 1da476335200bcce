package server

import (
	"salesapp/internal/config"
	"salesapp/internal/middleware"
	"salesapp/internal/repository"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	// ログイン済みユーザー
	user := e.Group("",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)

	// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := e.Group("/admin",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	)

	h.Auth.RegisterRoutes(e)
	h.Message.RegisterRoutes(e, admin)

	h.Catalog.RegisterRoutes(user, admin)
	h.Order.RegisterRoutes(user)
	h.Query.RegisterRoutes(user)
	h.Forecast.RegisterRoutes(user, admin)

	h.AdminUser.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)
	h.Statistics.RegisterRoutes(admin)
	h.AuditLog.RegisterRoutes(admin)
}
