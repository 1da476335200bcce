package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"salesapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type StatisticsHandler struct {
	uc  *usecase.StatisticsUsecase
	loc *time.Location
}

func NewStatisticsHandler(uc *usecase.StatisticsUsecase, loc *time.Location) *StatisticsHandler {
	return &StatisticsHandler{uc: uc, loc: loc}
}

func (h *StatisticsHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/statistics/sales", h.sales)
	admin.GET("/statistics/top-goods", h.topGoods)
	admin.GET("/statistics/export", h.export)
}

func (h *StatisticsHandler) sales(c echo.Context) error {
	out, err := h.uc.Sales(c.Request().Context(), usecase.SalesStatsInput{
		Period:    c.QueryParam("period"),
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *StatisticsHandler) topGoods(c echo.Context) error {
	limit, valid := queryInt(c, "limit", 10)
	if !valid {
		return badRequest(c, "invalid limit")
	}

	items, err := h.uc.TopGoods(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, items)
}

// CSVダウンロード。途中で失敗しても半端なCSVを返さないよう一度バッファに書く
func (h *StatisticsHandler) export(c echo.Context) error {
	kind, valid := usecase.ParseExportKind(c.QueryParam("type"))
	if !valid {
		return badRequest(c, "invalid export type")
	}

	var buf bytes.Buffer
	if err := h.uc.Export(c.Request().Context(), kind, &buf); err != nil {
		return writeError(c, err)
	}

	filename := fmt.Sprintf("%s_%s.csv", kind, time.Now().In(h.loc).Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
