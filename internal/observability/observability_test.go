package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/a", http.MethodGet, 200, 10*time.Millisecond)
	m.RecordRequest("/a", http.MethodGet, 200, 30*time.Millisecond)
	m.RecordError("/a", http.MethodGet, "FORBIDDEN")
	m.RecordEvent("order_booked")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(2), snap.Requests["/a|GET|200"])
	assert.Equal(t, int64(20), snap.AvgLatencyMs["/a|GET|200"])
	assert.Equal(t, []string{"/a|GET|FORBIDDEN"}, snap.ErrorKeys())
	assert.Equal(t, int64(1), snap.Events["order_booked"])

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", http.MethodGet, 200, 0)
	nilMetrics.RecordEvent("x")
	assert.Zero(t, nilMetrics.Snapshot().TotalRequests)
}

func TestRequestLogger(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	assert.Equal(t, int64(2), metrics.Snapshot().Requests["/ping|GET|200"])
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level"}, "marketplace")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
