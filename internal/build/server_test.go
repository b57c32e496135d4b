package build

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/real-comp/mvr-common/internal/metrics"
)

func TestNewMetricsHandler(t *testing.T) {
	metricsService := metrics.NewMetricsService(nil)
	metricsService.IncRecordsRead(CommandBuild, 3)
	handler := NewMetricsHandler(metricsService)

	t.Run("🟢metrics", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `mvr_records_read_total{stage="build"} 3`)
	})

	t.Run("🟢health", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("🔴unknown_route", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/documents", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestMetricsServer(t *testing.T) {
	ctx := context.Background()
	metricsService := metrics.NewMetricsService(nil)

	server, err := startMetricsServer(ctx, "127.0.0.1:0", metricsService)
	require.NoError(t, err)

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	require.NoError(t, server.Shutdown(ctx))
	_, err = http.Get("http://" + server.Addr() + "/health")
	assert.Error(t, err)
}
