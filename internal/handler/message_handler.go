package handler

import (
	"salesapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type MessageHandler struct {
	uc *usecase.MessageUsecase
}

func NewMessageHandler(uc *usecase.MessageUsecase) *MessageHandler {
	return &MessageHandler{uc: uc}
}

type messageSubmitRequest struct {
	CustomerName string `json:"customer_name"`
	ContactInfo  string `json:"contact_info"`
	Content      string `json:"content"`
}

type messageReplyRequest struct {
	ReplyContent string `json:"reply_content"`
}

// 投稿はログイン不要
func (h *MessageHandler) RegisterRoutes(e *echo.Echo, admin *echo.Group) {
	e.POST("/messages", h.submit)

	admin.GET("/messages", h.list)
	admin.GET("/messages/stats", h.stats)
	admin.PUT("/messages/:id/reply", h.reply)
	admin.PUT("/messages/:id/read", h.markRead)
	admin.DELETE("/messages/:id", h.delete)
}

func (h *MessageHandler) submit(c echo.Context) error {
	var req messageSubmitRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	m, err := h.uc.Submit(c.Request().Context(), usecase.SubmitMessageInput{
		CustomerName: req.CustomerName,
		ContactInfo:  req.ContactInfo,
		Content:      req.Content,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, map[string]int64{"message_id": m.ID})
}

func (h *MessageHandler) list(c echo.Context) error {
	page, valid := queryInt(c, "page", 1)
	if !valid {
		return badRequest(c, "invalid page")
	}
	limit, valid := queryInt(c, "limit", 20)
	if !valid {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.List(c.Request().Context(), usecase.MessageListInput{
		Page:    page,
		Limit:   limit,
		Status:  c.QueryParam("status"),
		Keyword: c.QueryParam("keyword"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *MessageHandler) stats(c echo.Context) error {
	s, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, s)
}

func (h *MessageHandler) reply(c echo.Context) error {
	adminID, found := getUserIDFromContext(c)
	if !found {
		return unauthorized(c)
	}
	id, valid := pathInt64(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	var req messageReplyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	if err := h.uc.Reply(c.Request().Context(), adminID, id, req.ReplyContent); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}

func (h *MessageHandler) markRead(c echo.Context) error {
	id, valid := pathInt64(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.MarkRead(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}

func (h *MessageHandler) delete(c echo.Context) error {
	id, valid := pathInt64(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}
