package handler

import (
	"time"

	"salesapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ForecastHandler struct {
	uc  *usecase.ForecastUsecase
	loc *time.Location
}

func NewForecastHandler(uc *usecase.ForecastUsecase, loc *time.Location) *ForecastHandler {
	return &ForecastHandler{uc: uc, loc: loc}
}

func (h *ForecastHandler) RegisterRoutes(user *echo.Group, admin *echo.Group) {
	user.GET("/forecast/history", h.history)
	admin.POST("/forecast", h.run)
}

// 手動実行（定期実行と同じ処理）
func (h *ForecastHandler) run(c echo.Context) error {
	out, err := h.uc.Forecast(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

// ?date=YYYY-MM-DD で1日分、なしなら全件
func (h *ForecastHandler) history(c echo.Context) error {
	var date *time.Time
	if v := c.QueryParam("date"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, h.loc)
		if err != nil {
			return badRequest(c, "invalid date")
		}
		date = &d
	}

	preds, err := h.uc.History(c.Request().Context(), date)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, preds)
}
