package http

import (
	"context"

	"orderpulse/internal/metrics"
	"orderpulse/internal/services"
	"orderpulse/pkg/contracts/domain"
)

// MetricsServiceInterface defines the interface for the metrics service
type MetricsServiceInterface interface {
	DefaultWindow() (domain.DateWindow, error)
	Dataset(ctx context.Context) (services.DatasetInfo, error)
	Table(ctx context.Context, table string, window domain.DateWindow) (interface{}, error)
	Dashboard(ctx context.Context, window domain.DateWindow) (domain.Dashboard, error)
	LateOrders(ctx context.Context, window domain.DateWindow) ([]metrics.LateRow, error)
}

var _ MetricsServiceInterface = (*services.MetricsService)(nil)
