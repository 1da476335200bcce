package handler

import (
	"strconv"

	"salesapp/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 種類と商品
type CatalogHandler struct {
	categories *usecase.CategoryUsecase
	goods      *usecase.GoodsUsecase
}

func NewCatalogHandler(categories *usecase.CategoryUsecase, goods *usecase.GoodsUsecase) *CatalogHandler {
	return &CatalogHandler{categories: categories, goods: goods}
}

type categoryCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parent_id"`
	SortOrder   int    `json:"sort_order"`
}

type goodsRequest struct {
	Name        string          `json:"name"`
	CategoryID  int64           `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	Description string          `json:"description"`
	IsActive    *bool           `json:"is_active"`
}

type stockUpdateRequest struct {
	Stock  *int64 `json:"stock"`
	Reason string `json:"reason"`
}

func (h *CatalogHandler) RegisterRoutes(user *echo.Group, admin *echo.Group) {
	user.GET("/categories", h.listCategories)
	user.GET("/goods", h.listGoods)
	user.GET("/goods/:id", h.goodsDetail)

	admin.POST("/categories", h.createCategory)
	admin.POST("/goods", h.createGoods)
	admin.PUT("/goods/:id", h.updateGoods)
	admin.PUT("/goods/:id/stock", h.updateStock)
}

func (h *CatalogHandler) listCategories(c echo.Context) error {
	cs, err := h.categories.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, cs)
}

func (h *CatalogHandler) createCategory(c echo.Context) error {
	var req categoryCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	cat, err := h.categories.Create(c.Request().Context(), usecase.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, cat)
}

// 一般ユーザーには公開中の商品だけ
func (h *CatalogHandler) listGoods(c echo.Context) error {
	page, valid := queryInt(c, "page", 1)
	if !valid {
		return badRequest(c, "invalid page")
	}
	limit, valid := queryInt(c, "limit", 20)
	if !valid {
		return badRequest(c, "invalid limit")
	}

	var categoryID *int64
	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid category_id")
		}
		categoryID = &id
	}

	out, err := h.goods.List(c.Request().Context(), usecase.ListGoodsInput{
		Page:       page,
		Limit:      limit,
		Q:          c.QueryParam("q"),
		CategoryID: categoryID,
		ActiveOnly: true,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *CatalogHandler) goodsDetail(c echo.Context) error {
	id, valid := pathInt64(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	g, err := h.goods.Detail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, g)
}

func (r goodsRequest) toInput() usecase.AdminGoodsInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return usecase.AdminGoodsInput{
		Name:        r.Name,
		CategoryID:  r.CategoryID,
		Price:       r.Price,
		Stock:       r.Stock,
		Description: r.Description,
		IsActive:    active,
	}
}

func (h *CatalogHandler) createGoods(c echo.Context) error {
	adminID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}

	var req goodsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	g, err := h.goods.AdminCreate(c.Request().Context(), adminID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, g)
}

func (h *CatalogHandler) updateGoods(c echo.Context) error {
	adminID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}
	id, valid := pathInt64(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	var req goodsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	if err := h.goods.AdminUpdate(c.Request().Context(), adminID, id, req.toInput()); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}

func (h *CatalogHandler) updateStock(c echo.Context) error {
	adminID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}
	id, valid := pathInt64(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	var req stockUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Stock == nil {
		return badRequest(c, "stock required")
	}

	if err := h.goods.AdminUpdateStock(c.Request().Context(), adminID, id, *req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}
