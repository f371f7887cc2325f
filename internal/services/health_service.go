package services

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	api "orderpulse/pkg/contracts/api/v1"
)

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// DatasetState is the part of the store the health checks look at
type DatasetState interface {
	IsEmpty() bool
	OrderCount() int
}

// BuildInfo identifies the running binary
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// HealthService provides health check functionality
type HealthService struct {
	build     BuildInfo
	dataset   DatasetState
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a new health service
func NewHealthService(build BuildInfo, dataset DatasetState, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", build.Version),
		slog.String("commit", build.Commit))

	return &HealthService{
		build:     build,
		dataset:   dataset,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) api.HealthResponse {
	status := api.HealthResponse{
		Status:    StatusOK,
		Version:   hs.build.Version,
		Timestamp: time.Now().UTC(),
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))
	return status
}

// ReadinessCheck reports ready once orders are loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) api.HealthResponse {
	status := api.HealthResponse{
		Status:    StatusReady,
		Version:   hs.build.Version,
		Timestamp: time.Now().UTC(),
		Checks:    map[string]string{"data": StatusReady},
	}

	if hs.dataset == nil || hs.dataset.IsEmpty() {
		status.Status = StatusNotReady
		status.Checks["data"] = StatusNotReady + ": no orders loaded"
		hs.logger.WarnContext(ctx, "readiness check failed", slog.String("reason", "no orders loaded"))
	}
	return status
}

// LivenessCheck returns liveness status with runtime details
func (hs *HealthService) LivenessCheck(ctx context.Context) api.HealthResponse {
	orders := 0
	if hs.dataset != nil {
		orders = hs.dataset.OrderCount()
	}
	return api.HealthResponse{
		Status:    StatusAlive,
		Version:   hs.build.Version,
		Timestamp: time.Now().UTC(),
		Checks: map[string]string{
			"uptime":     time.Since(hs.startTime).Round(time.Second).String(),
			"go_version": runtime.Version(),
			"goroutines": strconv.Itoa(runtime.NumGoroutine()),
			"orders":     strconv.Itoa(orders),
		},
	}
}

// Version returns build information
func (hs *HealthService) Version() api.VersionResponse {
	return api.VersionResponse{
		Version:   hs.build.Version,
		Commit:    hs.build.Commit,
		BuildTime: hs.build.BuildTime,
	}
}
