package handler

import (
	"strconv"
	"time"

	"salesapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditLogHandler struct {
	uc  *usecase.AuditLogUsecase
	loc *time.Location
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase, loc *time.Location) *AuditLogHandler {
	return &AuditLogHandler{uc: uc, loc: loc}
}

func (h *AuditLogHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/audit-logs", h.list)
}

func (h *AuditLogHandler) list(c echo.Context) error {
	page, valid := queryInt(c, "page", 1)
	if !valid {
		return badRequest(c, "invalid page")
	}
	limit, valid := queryInt(c, "limit", 50)
	if !valid {
		return badRequest(c, "invalid limit")
	}

	in := usecase.AuditLogListInput{
		Page:         page,
		Limit:        limit,
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
	}
	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid actor_user_id")
		}
		in.ActorUserID = &id
	}
	if v := c.QueryParam("from"); v != "" {
		if in.From, valid = usecase.ParseDateTimeParam(v, h.loc); !valid {
			return badRequest(c, "invalid from")
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if in.To, valid = usecase.ParseDateTimeParam(v, h.loc); !valid {
			return badRequest(c, "invalid to")
		}
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}
