package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-patrol/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// =========================================
// Stub Service
// =========================================

type stubService struct {
	got domain.EnforceRequest
}

func (m *stubService) LoadPolicy(ctx context.Context) error {
	return nil
}

func (m *stubService) Enforce(req domain.EnforceRequest) (bool, error) {
	m.got = req
	return req.Role == "supervisor" && req.Resource == "site_attendance" && req.Action == "monitor", nil
}

type envelope struct {
	Ok   bool                   `json:"ok"`
	Data domain.EnforceResponse `json:"data"`
}

func TestHandler_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)

	service := &stubService{}
	handler := NewHandler(service)

	router := gin.New()
	router.POST("/rbac/check", func(c *gin.Context) {
		c.Set("role", "supervisor")
		c.Next()
	}, handler.Check)

	jsonBody, _ := json.Marshal(CheckRequest{Resource: "site_attendance", Action: "monitor"})
	req, _ := http.NewRequest(http.MethodPost, "/rbac/check", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Ok)
	assert.True(t, resp.Data.Allowed)
	assert.Equal(t, "supervisor", service.got.Role)
}

func TestHandler_Check_MissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/rbac/check", NewHandler(&stubService{}).Check)

	req, _ := http.NewRequest(http.MethodPost, "/rbac/check", bytes.NewBufferString(`{"resource":"site"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
