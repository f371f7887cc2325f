package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderpulse/internal/config"
	"orderpulse/internal/middleware"
	"orderpulse/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Dir = testutil.WriteCSVDataset(t, t.TempDir())
	cfg.Telemetry.Environment = "test"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	app, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop(context.Background()) })
	return app
}

func serve(app *Application, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNew(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	require.NotNil(t, app.Store)
	assert.Equal(t, testutil.SampleOrderRows, app.Store.OrderCount())
	assert.Equal(t, testutil.SampleSkippedRows, app.LoadStats.OrdersSkipped)
	assert.NotNil(t, app.MetricsService)
	assert.NotNil(t, app.HealthService)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
}

func TestNew_LoadFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Dir = filepath.Join(t.TempDir(), "missing")

	logger, _ := testutil.NewTestLogger(t)
	_, err := New(context.Background(), cfg, logger)
	assert.ErrorContains(t, err, "failed to load data")
}

func TestApplication_setupRouter(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{"health", "/api/health", http.StatusOK},
		{"readiness", "/api/health/ready", http.StatusOK},
		{"liveness", "/api/health/live", http.StatusOK},
		{"version", "/api/version", http.StatusOK},
		{"bounds", "/api/metrics/bounds", http.StatusOK},
		{"dashboard", "/api/metrics/dashboard", http.StatusOK},
		{"rfm", "/api/metrics/rfm?start=2017-01-01&end=2017-12-31", http.StatusOK},
		{"reviews", "/api/metrics/reviews", http.StatusOK},
		{"export", "/api/metrics/tables/sla/export?format=csv", http.StatusOK},
		{"invalid window", "/api/metrics/rfm?start=2018-01-01&end=2017-01-01", http.StatusBadRequest},
		{"unknown route", "/api/unknown", http.StatusNotFound},
		{"prometheus", "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestApplication_Middleware(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := serve(app, "/api/metrics/rfm")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = serve(app, "/api/nowhere")
	require.Equal(t, http.StatusNotFound, rec.Code)
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "/api/nowhere", problem["instance"])
	assert.NotEmpty(t, problem["trace_id"])

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/metrics/rfm", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestApplication_PrometheusMetrics(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	require.Equal(t, http.StatusOK, serve(app, "/api/metrics/dashboard").Code)

	body := serve(app, "/metrics").Body.String()
	assert.Contains(t, body, "records_loaded_total")
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "aggregation_runs_total")
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RateLimit.RPS = 0.001
	cfg.Security.RateLimit.Burst = 1
	app := newTestApp(t, cfg)

	assert.Equal(t, http.StatusOK, serve(app, "/api/health").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(app, "/api/health").Code)
	// the scrape endpoint is outside the limited group
	assert.Equal(t, http.StatusOK, serve(app, "/metrics").Code)
}

func TestApplication_EmptyDataset(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSVDataset(t, dir)
	header := "order_id,customer_id,order_approved_at,order_delivered_customer_date,order_estimated_delivery_date,payment_value,payment_type,review_score,review_comment_title,review_comment_message\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, testutil.SampleOrdersFile), []byte(header), 0644))

	cfg := testConfig(t)
	cfg.Data.Dir = dir
	app := newTestApp(t, cfg)

	assert.Equal(t, http.StatusServiceUnavailable, serve(app, "/api/health/ready").Code)
	assert.Equal(t, http.StatusNotFound, serve(app, "/api/metrics/dashboard").Code)
}

func TestNewApplication(t *testing.T) {
	dataDir := testutil.WriteCSVDataset(t, t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: 18080\ndata:\n  dir: " + dataDir + "\ntelemetry:\n  metric_exporter: none\n"
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))

	app, err := NewApplication(context.Background(), configPath)
	require.NoError(t, err)
	defer app.Stop(context.Background())

	assert.Equal(t, 18080, app.Config.Server.Port)
	assert.Nil(t, app.OTelProviders.PrometheusHTTP)
	assert.Equal(t, http.StatusNotFound, serve(app, "/metrics").Code)
}

func TestApplication_Run(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	app := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, app.Run(ctx))
}
