package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの種類。handlerはKindとStatusだけを見る
type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindInsufficientStock   ErrorKind = "INSUFFICIENT_STOCK"
	KindUnrecognizedMetric  ErrorKind = "UNRECOGNIZED_METRIC"
	KindInsufficientHistory ErrorKind = "INSUFFICIENT_HISTORY"
	KindExternalService     ErrorKind = "EXTERNAL_SERVICE"
	KindPersistence         ErrorKind = "PERSISTENCE"
	KindUnauthorized        ErrorKind = "UNAUTHORIZED"
	KindForbidden           ErrorKind = "FORBIDDEN"
	KindConflict            ErrorKind = "CONFLICT"
)

var kindStatus = map[ErrorKind]int{
	KindValidation:          http.StatusBadRequest,
	KindNotFound:            http.StatusNotFound,
	KindInsufficientStock:   http.StatusBadRequest,
	KindUnrecognizedMetric:  http.StatusBadRequest,
	KindInsufficientHistory: http.StatusUnprocessableEntity,
	KindExternalService:     http.StatusBadGateway,
	KindPersistence:         http.StatusInternalServerError,
	KindUnauthorized:        http.StatusUnauthorized,
	KindForbidden:           http.StatusForbidden,
	KindConflict:            http.StatusConflict,
}

var statusKind = map[int]ErrorKind{
	http.StatusBadRequest:          KindValidation,
	http.StatusNotFound:            KindNotFound,
	http.StatusUnprocessableEntity: KindInsufficientHistory,
	http.StatusBadGateway:          KindExternalService,
	http.StatusInternalServerError: KindPersistence,
	http.StatusUnauthorized:        KindUnauthorized,
	http.StatusForbidden:           KindForbidden,
	http.StatusConflict:            KindConflict,
}

type HTTPError struct {
	Status  int
	Kind    ErrorKind
	Message string
	Err     error // 原因（レスポンスには出さない）
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Kind:    statusKind[status],
		Message: message,
	}
}

func newKindError(kind ErrorKind, message string, cause error) error {
	return &HTTPError{
		Status:  kindStatus[kind],
		Kind:    kind,
		Message: message,
		Err:     cause,
	}
}

func ErrValidation(message string) error { return newKindError(KindValidation, message, nil) }
func ErrNotFound(message string) error   { return newKindError(KindNotFound, message, nil) }
func ErrConflict(message string) error   { return newKindError(KindConflict, message, nil) }
func ErrUnauthorized() error             { return newKindError(KindUnauthorized, "unauthorized", nil) }

func ErrInsufficientStock(name string, stock int64) error {
	return newKindError(KindInsufficientStock, fmt.Sprintf("insufficient stock: %s (stock=%d)", name, stock), nil)
}

// DB障害。原因はErrに残してログで見る
func ErrPersistence(cause error) error {
	return newKindError(KindPersistence, "db error", cause)
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func IsKind(err error, kind ErrorKind) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Kind == kind
}
