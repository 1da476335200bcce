package handler

import (
	"salesapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 自然言語の販売問い合わせ
type QueryHandler struct {
	uc *usecase.QueryUsecase
}

func NewQueryHandler(uc *usecase.QueryUsecase) *QueryHandler {
	return &QueryHandler{uc: uc}
}

type queryRequest struct {
	Query string `json:"query"`
}

func (h *QueryHandler) RegisterRoutes(user *echo.Group) {
	user.POST("/query", h.resolve)
	user.GET("/query/history", h.history)
}

func (h *QueryHandler) resolve(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}

	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	res, err := h.uc.Resolve(c.Request().Context(), userID, req.Query)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, res)
}

func (h *QueryHandler) history(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}
	limit, valid := queryInt(c, "limit", 0)
	if !valid {
		return badRequest(c, "invalid limit")
	}

	logs, err := h.uc.History(c.Request().Context(), userID, limit)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, logs)
}
