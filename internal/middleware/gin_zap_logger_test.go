package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(GinZapLogger(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/verify_email", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/api/me", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, logs
}

func TestGinZapLogger_SkipsHealth(t *testing.T) {
	r, logs := newRouter(t)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, 0, logs.Len())
}

func TestGinZapLogger_OmitsQueryString(t *testing.T) {
	r, logs := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/verify_email?token=secret-token", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "/api/verify_email", entry.ContextMap()["path"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGinZapLogger_KeepsRequestID(t *testing.T) {
	r, logs := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc", logs.All()[0].ContextMap()["request_id"])
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestGinZapLogger_GinErrorsLoggedAsError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(GinZapLogger(zap.New(core)))
	r.GET("/api/fail", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/fail", nil))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
	assert.Equal(t, "Request error", logs.All()[0].Message)
}

func TestLevelFor(t *testing.T) {
	lvl, _ := levelFor(http.StatusOK, false)
	assert.Equal(t, zapcore.InfoLevel, lvl)
	lvl, _ = levelFor(http.StatusNotFound, false)
	assert.Equal(t, zapcore.WarnLevel, lvl)
	lvl, _ = levelFor(http.StatusServiceUnavailable, false)
	assert.Equal(t, zapcore.ErrorLevel, lvl)
}
