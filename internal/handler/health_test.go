package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Readyz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &HealthHandler{checks: []dependencyCheck{
		{"postgres", func(context.Context) error { return nil }},
		{"redis", func(context.Context) error { return errors.New("dial tcp: refused") }},
	}}
	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "connected", body["postgres"])
	assert.Equal(t, "unavailable", body["redis"])
}

func TestHealthHandler_NoDependencies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/readyz", NewHealthHandler(nil, nil, nil).Readyz)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
