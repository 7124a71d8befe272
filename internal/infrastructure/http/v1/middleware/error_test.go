package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
)

func setupRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", handler)
	return r
}

func doRequest(r *gin.Engine) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestErrorHandler_AppError(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		err := apperror.NewInsufficientStock([]apperror.StockShortage{
			{Product: "Widget", ProductID: "p1", Available: 30, Required: 40},
		})
		_ = c.Error(err)
		c.Abort()
	})

	rec, body := doRequest(r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, apperror.CodeInsufficientStock, body["code"])
	assert.Equal(t, "Insufficient stock: Widget: available 30, required 40", body["message"])
	require.NotNil(t, body["details"])
}

func TestErrorHandler_NotFound(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("product", "abc"))
		c.Abort()
	})

	rec, body := doRequest(r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperror.CodeNotFound, body["code"])
}

func TestErrorHandler_UnknownErrorHidesDetails(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
		c.Abort()
	})

	rec, body := doRequest(r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestErrorHandler_NoErrorPassesThrough(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	rec, body := doRequest(r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
}

func TestErrorHandler_DoesNotOverrideWrittenResponse(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"status": "success"})
		_ = c.Error(errors.New("late failure"))
	})

	rec, _ := doRequest(r)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}
