package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/types"
)

func TestBaseHandler_CreatedDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h := NewBaseHandler()
	h.CreatedDocument(c, "0195f0a2-1111-7222-8333-444455556666", types.MustMoney("999.50"))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{
		"status": "success",
		"data": {
			"id": "0195f0a2-1111-7222-8333-444455556666",
			"totalAmount": "999.5"
		}
	}`, w.Body.String())
}

func TestBaseHandler_CreatedDocument_ZeroTotal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h := NewBaseHandler()
	h.CreatedDocument(c, "0195f0a2-1111-7222-8333-444455556666", types.Zero())

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			ID          string `json:"id"`
			TotalAmount string `json:"totalAmount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "0195f0a2-1111-7222-8333-444455556666", body.Data.ID)
	assert.Equal(t, "0", body.Data.TotalAmount)
}

func TestBaseHandler_Created(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h := NewBaseHandler()
	h.Created(c, "0195f0a2-1111-7222-8333-444455556666")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{
		"status": "success",
		"data": {"id": "0195f0a2-1111-7222-8333-444455556666"}
	}`, w.Body.String())
}
