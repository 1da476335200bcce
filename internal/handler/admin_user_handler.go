package handler

import (
	"salesapp/internal/usecase"
	auth "salesapp/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	users    *usecase.UserUsecase
	createUC *auth.CreateUserUsecase
}

func NewAdminUserHandler(users *usecase.UserUsecase, createUC *auth.CreateUserUsecase) *AdminUserHandler {
	return &AdminUserHandler{users: users, createUC: createUC}
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	RealName string `json:"real_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// adminはAuthJWT + TokenVersionGuard + AdminRoleGuard 済みのグループ
func (h *AdminUserHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/users", h.list)
	admin.POST("/users", h.create)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, valid := queryInt(c, "page", 1)
	if !valid {
		return badRequest(c, "invalid page")
	}
	limit, valid := queryInt(c, "limit", 20)
	if !valid {
		return badRequest(c, "invalid limit")
	}

	out, err := h.users.List(c.Request().Context(), page, limit, c.QueryParam("keyword"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *AdminUserHandler) create(c echo.Context) error {
	adminID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	u, err := h.createUC.Execute(c.Request().Context(), adminID, auth.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		RealName: req.RealName,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, u)
}
