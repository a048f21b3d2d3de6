package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"retail-desk/internal/config"
	"retail-desk/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, overrides map[string]interface{}) *config.Config {
	t.Helper()
	v := viper.New()
	v.Set("GATEWAY_LATENCY_MS", 0)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return config.FromViper(v)
}

func TestNewServer_MemoryGateway(t *testing.T) {
	srv, err := NewServer(context.Background(), testConfig(t, nil), zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sales", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var page service.SalesPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 25, page.TotalMatches)
	assert.Len(t, page.Items, 12)
}

func TestNewServer_RateLimited(t *testing.T) {
	srv, err := NewServer(context.Background(), testConfig(t, map[string]interface{}{
		"RATE_LIMIT_REQUESTS": 2,
	}), zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	var last int
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/inventory/report", nil)
		req.RemoteAddr = "10.1.1.1:4000"
		srv.Handler.ServeHTTP(w, req)
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)

	// health is outside the limited group
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.1.1.1:4000"
	srv.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewServer_WithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	srv, err := NewServer(context.Background(), testConfig(t, map[string]interface{}{
		"REDIS_ENABLED": true,
		"REDIS_HOST":    host,
		"REDIS_PORT":    port,
	}), zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	require.NotNil(t, srv.redis)
	// the initial load went through the cache
	assert.NotEmpty(t, mr.Keys())
}

func TestNewServer_RedisDown(t *testing.T) {
	srv, err := NewServer(context.Background(), testConfig(t, map[string]interface{}{
		"REDIS_ENABLED": true,
		"REDIS_HOST":    "127.0.0.1",
		"REDIS_PORT":    "1",
	}), zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	assert.Nil(t, srv.redis)
}

func TestNewServer_UnknownDriver(t *testing.T) {
	_, err := NewServer(context.Background(), testConfig(t, map[string]interface{}{
		"GATEWAY_DRIVER": "mongo",
	}), zap.NewNop())
	assert.Error(t, err)
}

func TestNewServer_ManualRefresh(t *testing.T) {
	srv, err := NewServer(context.Background(), testConfig(t, nil), zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	before := srv.ws.Snapshot().RefreshedAt

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	assert.Eventually(t, func() bool {
		return srv.ws.Snapshot().RefreshedAt.After(before)
	}, 2*time.Second, 10*time.Millisecond)
}
