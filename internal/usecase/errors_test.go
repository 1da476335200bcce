package usecase

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPError_KindAndStatus(t *testing.T) {
	err := ErrInsufficientStock("Phone", 2)

	he, ok := AsHTTPError(err)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusBadRequest, he.Status)
		assert.Equal(t, KindInsufficientStock, he.Kind)
		assert.Equal(t, "insufficient stock: Phone (stock=2)", he.Message)
	}
	assert.True(t, IsKind(err, KindInsufficientStock))
	assert.False(t, IsKind(err, KindNotFound))
}

func TestHTTPError_PersistenceUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrPersistence(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "db error")
	assert.True(t, IsKind(err, KindPersistence))
}

func TestNewHTTPError_DerivesKind(t *testing.T) {
	err := NewHTTPError(http.StatusNotFound, "not found")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestIsKind_PlainError(t *testing.T) {
	assert.False(t, IsKind(errors.New("x"), KindValidation))
}
