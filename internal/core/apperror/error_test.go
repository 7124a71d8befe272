package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInsufficientStock_EnumeratesAllLines(t *testing.T) {
	err := NewInsufficientStock([]StockShortage{
		{Product: "Widget", ProductID: "p1", Available: 30, Required: 40},
		{Product: "Gadget", ProductID: "p2", Available: 0, Required: 5},
	})

	assert.Equal(t, CodeInsufficientStock, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t,
		"Insufficient stock: Widget: available 30, required 40; Gadget: available 0, required 5",
		err.Message)

	shortages, ok := err.Details["shortages"].([]StockShortage)
	require.True(t, ok)
	assert.Len(t, shortages, 2)
}

func TestNewInsufficientStock_FractionalQuantities(t *testing.T) {
	err := NewInsufficientStock([]StockShortage{
		{Product: "Rice", Available: 2.5, Required: 3.25},
	})

	assert.Equal(t, "Insufficient stock: Rice: available 2.5, required 3.25", err.Message)
}

func TestNewReversalBlocked(t *testing.T) {
	err := NewReversalBlocked("Widget", 30, 50)

	assert.Equal(t, CodeReversalBlocked, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, "Cannot reverse purchase for Widget: available 30, required 50", err.Message)
	assert.Equal(t, float64(30), err.Details["available"])
	assert.Equal(t, float64(50), err.Details["required"])
}

func TestAppError_WrappingAndHelpers(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: connection refused")
	assert.True(t, IsAppError(err))

	wrapped := fmt.Errorf("query products: %w", NewNotFound("product", "abc"))
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))

	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
}

func TestAppError_WithDetail(t *testing.T) {
	err := NewValidation("quantity must be positive").
		WithDetail("field", "lines").
		WithDetail("lineNo", 2)

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "lines", err.Details["field"])
	assert.Equal(t, 2, err.Details["lineNo"])
}

func TestNewConcurrentModification(t *testing.T) {
	err := NewConcurrentModification("purchase", "doc-1")

	assert.Equal(t, CodeConcurrentModification, err.Code)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	assert.True(t, IsConcurrentModification(err))
	assert.False(t, IsConcurrentModification(NewConflict("other")))
}

func TestNewDuplicate(t *testing.T) {
	err := NewDuplicate("product", "code", "SKU-1")

	assert.Equal(t, CodeDuplicate, err.Code)
	assert.Equal(t, "product with this code already exists", err.Message)
	assert.Equal(t, "SKU-1", err.Details["value"])
}
