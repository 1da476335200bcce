package handler

import (
	"salesapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderCreateRequest struct {
	Items           []usecase.OrderLineInput `json:"items"`
	ShippingAddress string                   `json:"shipping_address"`
	ContactPhone    string                   `json:"contact_phone"`
	Remark          string                   `json:"remark"`
}

func (h *OrderHandler) RegisterRoutes(user *echo.Group) {
	user.POST("/orders", h.create)
	user.GET("/orders", h.list)
	user.GET("/orders/:id", h.detail)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		ContactPhone:    req.ContactPhone,
		Remark:          req.Remark,
		IdempotencyKey:  idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}

	page, valid := queryInt(c, "page", 1)
	if !valid {
		return badRequest(c, "invalid page")
	}
	limit, valid := queryInt(c, "limit", 20)
	if !valid {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}
