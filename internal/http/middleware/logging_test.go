package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(ZapLogger(zap.New(core)), ZapRecovery(zap.New(core)))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/notifications", func(c *gin.Context) {
		c.Set(ctxKeyUserID, "user-b")
		c.Status(http.StatusOK)
	})
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	serve := func(path string) int {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Code
	}

	require.Equal(t, http.StatusOK, serve("/health"))
	require.Zero(t, logs.Len())

	require.Equal(t, http.StatusOK, serve("/notifications?limit=2"))
	entries := logs.TakeAll()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "user-b", fields["user_id"])
	require.Equal(t, "limit=2", fields["query"])

	require.Equal(t, http.StatusInternalServerError, serve("/boom"))
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	require.Equal(t, 1, logs.FilterMessage("request completed").FilterField(zap.Int("status", http.StatusInternalServerError)).Len())
}
