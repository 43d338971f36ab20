package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshops/internal/config"
	"workshops/internal/handlers"
	"workshops/internal/security"
)

func TestServerMountsMetricsAndHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{Environment: "test", HTTP: config.HTTPConfig{Host: "127.0.0.1", Port: 0}}
	tokens := security.NewTokenIssuer("secret", "workshops-api", "workshops-web", time.Hour)
	srv := NewHTTPServer(cfg, zerolog.Nop(), handlers.NewHandlerSet(zerolog.Nop(), cfg, tokens, handlers.Services{}))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "workshops_http_requests_total"))
}

func TestServerUnknownRouteIsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{Environment: "test"}
	tokens := security.NewTokenIssuer("secret", "workshops-api", "workshops-web", time.Hour)
	srv := NewHTTPServer(cfg, zerolog.Nop(), handlers.NewHandlerSet(zerolog.Nop(), cfg, tokens, handlers.Services{}))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, w.Body.String())
}
