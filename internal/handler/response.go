package handler

import (
	"net/http"
	"strconv"

	"salesapp/internal/middleware"
	"salesapp/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// 成功レスポンス {"code":1,"msg":"ok","data":...}
type SuccessResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// 失敗レスポンス {"code":0,"msg":...,"kind":...}
type ErrorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Kind string `json:"kind"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, SuccessResponse{Code: 1, Msg: "ok", Data: data})
}

func fail(c echo.Context, status int, kind usecase.ErrorKind, msg string) error {
	return c.JSON(status, ErrorResponse{Code: 0, Msg: msg, Kind: string(kind)})
}

func badRequest(c echo.Context, msg string) error {
	return fail(c, http.StatusBadRequest, usecase.KindValidation, msg)
}

// usecaseのエラーをHTTPに変換する。原因はログにだけ出す
func writeError(c echo.Context, err error) error {
	he, isHTTP := usecase.AsHTTPError(err)
	if !isHTTP {
		zap.L().Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return fail(c, http.StatusInternalServerError, usecase.KindPersistence, "internal error")
	}

	if he.Status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.Path()),
			zap.String("kind", string(he.Kind)),
			zap.Error(err),
		)
	}
	return fail(c, he.Status, he.Kind, he.Message)
}

// AuthJWTが入れたuser_id
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, isInt := c.Get(middleware.CtxUserIDKey).(int64)
	if !isInt || id <= 0 {
		return 0, false
	}
	return id, true
}

func unauthorized(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, usecase.KindUnauthorized, "unauthorized")
}

// クエリの整数。空ならdef
func queryInt(c echo.Context, key string, def int) (int, bool) {
	v := c.QueryParam(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func pathInt64(c echo.Context, key string) (int64, bool) {
	n, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
