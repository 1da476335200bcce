package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"salesapp/internal/config"
	"salesapp/internal/handler"
	"salesapp/internal/middleware"
	"salesapp/internal/repository"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// ルーティングに必要なhandler一式
type Handlers struct {
	Auth       *handler.AuthHandler
	AdminUser  *handler.AdminUserHandler
	Catalog    *handler.CatalogHandler
	Order      *handler.OrderHandler
	AdminOrder *handler.AdminOrderHandler
	Query      *handler.QueryHandler
	Forecast   *handler.ForecastHandler
	Statistics *handler.StatisticsHandler
	Message    *handler.MessageHandler
	AuditLog   *handler.AuditLogHandler
}

// echoを組み立てる（起動はしない）
func New(cfg config.Config, userRepo repository.UserRepository, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(metricsMiddleware())

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.SuccessResponse{Code: 1, Msg: "ok"})
	})

	RegisterRoutes(e, cfg, userRepo, h)
	return e
}

// collectorはデフォルトregistryに1回だけ登録する
var metricsMiddleware = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddleware("salesapp")
})

// ctxがキャンセルされたらgraceful shutdown
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
