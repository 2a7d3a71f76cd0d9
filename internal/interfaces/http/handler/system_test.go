package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func() error

func (f pingerFunc) Ping() error { return f() }

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	env := newStoreEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/system/info", nil)

	require.Equal(t, http.StatusOK, w.Code)
	info := data[SystemInfoResponse](t, w)
	assert.Equal(t, "sicua", info.Name)
	assert.Equal(t, "Corner Shop", info.StoreName)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Uptime)
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("sicua", "test", "", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/system/ping", nil)

	h.Ping(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", data[PingResponse](t, w).Message)
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantState  string
	}{
		{name: "no database", db: nil, wantStatus: http.StatusOK, wantState: "healthy"},
		{name: "database up", db: pingerFunc(func() error { return nil }), wantStatus: http.StatusOK, wantState: "healthy"},
		{name: "database down", db: pingerFunc(func() error { return errors.New("refused") }), wantStatus: http.StatusServiceUnavailable, wantState: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("sicua", "test", "", tt.db)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			h.Health(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body["status"])
		})
	}
}

func TestSystemHandler_HealthWithSQLite(t *testing.T) {
	env := newStoreEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}
