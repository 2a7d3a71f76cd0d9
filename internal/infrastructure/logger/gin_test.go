package logger

import (
	"context"
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

func newObservedRouter(level zapcore.Level) (*gin.Engine, *observer.ObservedLogs, *zap.Logger) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(level)
	zapLogger := zap.New(core)
	return gin.New(), recorded, zapLogger
}

func findHTTPLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			return entry
		}
	}
	require.Fail(t, "HTTP Request log should exist")
	return observer.LoggedEntry{}
}

func TestGinMiddleware(t *testing.T) {
	router, recorded, zapLogger := newObservedRouter(zapcore.InfoLevel)
	router.Use(GinMiddleware(zapLogger))
	router.GET("/products/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/products/P1?verbose=1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	entry := findHTTPLog(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "/products/:id", fields["route"])
	assert.Equal(t, "verbose=1", fields["query"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.Contains(t, fields, "latency")
}

func TestGinMiddleware_StatusLevels(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusCreated, zapcore.InfoLevel},
		{http.StatusConflict, zapcore.WarnLevel},
		{http.StatusServiceUnavailable, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			router, recorded, zapLogger := newObservedRouter(zapcore.InfoLevel)
			router.Use(GinMiddleware(zapLogger))
			router.GET("/x", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/x", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.level, findHTTPLog(t, recorded).Level)
		})
	}
}

func TestGinMiddleware_PropagatesRequestContext(t *testing.T) {
	router, recorded, zapLogger := newObservedRouter(zapcore.InfoLevel)
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	router.Use(GinMiddleware(zapLogger))

	var ctx context.Context
	router.POST("/sales", func(c *gin.Context) {
		ctx = c.Request.Context()
		L(ctx).Info("inside handler")
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/sales", nil)
	req.Header.Set("Idempotency-Key", "k-1")
	router.ServeHTTP(w, req)

	require.NotNil(t, ctx)
	assert.Equal(t, "req-42", GetRequestID(ctx))
	assert.Equal(t, "k-1", GetIdempotencyKey(ctx))

	inside := recorded.FilterMessage("inside handler").All()
	require.Len(t, inside, 1)
	assert.Equal(t, "req-42", inside[0].ContextMap()["request_id"])
	assert.Equal(t, "k-1", inside[0].ContextMap()["idempotency_key"])
}

func TestRecovery(t *testing.T) {
	router, recorded, zapLogger := newObservedRouter(zapcore.ErrorLevel)
	router.Use(Recovery(zapLogger))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/panic", nil)

	assert.NotPanics(t, func() {
		router.ServeHTTP(w, req)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")

	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0].Message, "Panic recovered")
}

func TestGetGinLogger(t *testing.T) {
	router, _, zapLogger := newObservedRouter(zapcore.InfoLevel)

	var withMiddleware, without *zap.Logger
	router.GET("/bare", func(c *gin.Context) {
		without = GetGinLogger(c)
		c.Status(http.StatusOK)
	})
	router.GET("/logged", GinMiddleware(zapLogger), func(c *gin.Context) {
		withMiddleware = GetGinLogger(c)
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/bare", "/logged"} {
		req, _ := http.NewRequest("GET", path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.NotNil(t, withMiddleware)
	require.NotNil(t, without)
	assert.NotPanics(t, func() { without.Info("test") })
}
