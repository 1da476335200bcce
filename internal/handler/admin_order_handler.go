package handler

import (
	"strconv"
	"time"

	"salesapp/internal/repository"
	"salesapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc  *usecase.AdminOrderUsecase
	loc *time.Location
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, loc *time.Location) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, loc: loc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/orders", h.list)
	admin.GET("/orders/:id", h.detail)
	admin.PUT("/orders/:id/status", h.updateStatus)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, valid := queryInt(c, "page", 1)
	if !valid {
		return badRequest(c, "invalid page")
	}
	limit, valid := queryInt(c, "limit", 50)
	if !valid {
		return badRequest(c, "invalid limit")
	}

	var userID *int64
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid user_id")
		}
		userID = &id
	}

	//RFC3339 か YYYY-MM-DD
	var fromPtr, toPtr *time.Time
	if v := c.QueryParam("from"); v != "" {
		if fromPtr, valid = usecase.ParseDateTimeParam(v, h.loc); !valid {
			return badRequest(c, "invalid from")
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if toPtr, valid = usecase.ParseDateTimeParam(v, h.loc); !valid {
			return badRequest(c, "invalid to")
		}
	}

	out, err := h.uc.List(c.Request().Context(), repository.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
		From:   fromPtr,
		To:     toPtr,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	out, err := h.uc.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	//操作した管理者ID（監査ログ用）
	adminID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.uc.UpdateStatus(
		c.Request().Context(),
		adminID,
		c.Param("id"),
		usecase.AdminUpdateOrderStatusInput{Status: req.Status},
	); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}
