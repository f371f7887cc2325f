package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"orderpulse/internal/infrastructure"
	"orderpulse/internal/metrics"
	"orderpulse/internal/store"
	"orderpulse/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of the service spans
const TracerName = "orderpulse.metrics"

// aggregateInput is the read-only data every aggregator may look at
type aggregateInput struct {
	orders []domain.Order // already inside the window
	states metrics.StateLookup
	anchor domain.Date
	store  *store.Store
}

type aggregator func(in aggregateInput) interface{}

var aggregators = map[string]aggregator{
	metrics.TableRFM: func(in aggregateInput) interface{} {
		return metrics.ComputeRFM(in.orders, in.states, in.anchor)
	},
	metrics.TableRFMSummary: func(in aggregateInput) interface{} {
		return metrics.SummarizeRFM(metrics.ComputeRFM(in.orders, in.states, in.anchor))
	},
	metrics.TableRFMRanking: func(in aggregateInput) interface{} {
		return metrics.RankRFM(metrics.ComputeRFM(in.orders, in.states, in.anchor))
	},
	metrics.TableSLA: func(in aggregateInput) interface{} {
		return metrics.ComputeSLA(in.orders, in.states)
	},
	metrics.TableMonthlyVolume: func(in aggregateInput) interface{} {
		return metrics.MonthlyOrderVolume(in.orders)
	},
	metrics.TablePaymentMethods: func(in aggregateInput) interface{} {
		return metrics.PaymentMethodCounts(in.orders)
	},
	metrics.TableReviewScores: func(in aggregateInput) interface{} {
		return metrics.ReviewScoreCounts(in.orders)
	},
	metrics.TableLowScoreReviews: func(in aggregateInput) interface{} {
		return metrics.LowScoreReviews(in.orders)
	},
	metrics.TableTopCategories: func(in aggregateInput) interface{} {
		return metrics.TopCategoriesPerYear(in.store.Categories())
	},
	metrics.TableCustomersPerState: func(in aggregateInput) interface{} {
		return metrics.CustomersPerState(in.store.Customers())
	},
}

// MetricsService computes aggregate tables over a store
type MetricsService struct {
	store   *store.Store
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
	now     func() time.Time
}

// NewMetricsService creates a metrics service. tracer and businessMetrics may
// be nil, in which case the global tracer is used and nothing is recorded.
func NewMetricsService(st *store.Store, logger *slog.Logger, tracer trace.Tracer, businessMetrics *infrastructure.BusinessMetrics) *MetricsService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &MetricsService{
		store:   st,
		logger:  logger.With(slog.String("component", "metrics_service")),
		tracer:  tracer,
		metrics: businessMetrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// DefaultWindow returns the dataset bounds, the window used when a caller
// gives no dates
func (s *MetricsService) DefaultWindow() (domain.DateWindow, error) {
	window, ok := s.store.Bounds()
	if !ok {
		return domain.DateWindow{}, ErrNoData
	}
	return window, nil
}

// DatasetInfo describes the loaded records
type DatasetInfo struct {
	Window        domain.DateWindow
	RecencyAnchor domain.Date
	Orders        int
	Customers     int
	Categories    int
}

// Dataset returns the bounds and size of the loaded records
func (s *MetricsService) Dataset(ctx context.Context) (DatasetInfo, error) {
	window, err := s.DefaultWindow()
	if err != nil {
		return DatasetInfo{}, err
	}
	anchor, _ := s.store.RecencyAnchor()
	return DatasetInfo{
		Window:        window,
		RecencyAnchor: anchor,
		Orders:        s.store.OrderCount(),
		Customers:     s.store.CustomerCount(),
		Categories:    s.store.CategoryCount(),
	}, nil
}

// prepare validates the window and filters the orders once
func (s *MetricsService) prepare(window domain.DateWindow) (aggregateInput, error) {
	if s.store.IsEmpty() {
		return aggregateInput{}, ErrNoData
	}

	filtered, err := metrics.FilterByDateRange(s.store.Orders(), window.Start, window.End)
	if err != nil {
		return aggregateInput{}, fmt.Errorf("filter orders: %w", err)
	}

	anchor, _ := s.store.RecencyAnchor()
	return aggregateInput{
		orders: filtered,
		states: s.store.CustomerStates(),
		anchor: anchor,
		store:  s.store,
	}, nil
}

// compute runs one aggregator inside a span and records its duration
func (s *MetricsService) compute(ctx context.Context, table string, in aggregateInput) (result interface{}, err error) {
	ctx, span := s.tracer.Start(ctx, "metrics."+table,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("metrics.table", table),
			attribute.Int("metrics.input_rows", len(in.orders)),
		),
	)
	defer span.End()

	started := time.Now()
	defer func() {
		infrastructure.RecordAggregation(ctx, s.metrics, table, time.Since(started), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	agg, ok := aggregators[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	result = agg(in)

	s.logger.DebugContext(ctx, "table computed",
		slog.String("table", table),
		slog.Duration("duration", time.Since(started)))
	return result, nil
}

// Table computes one named table for the window
func (s *MetricsService) Table(ctx context.Context, table string, window domain.DateWindow) (interface{}, error) {
	if _, ok := aggregators[table]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	in, err := s.prepare(window)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, table, in)
}

// Dashboard computes every table for the window. The aggregators run
// concurrently; they only share read-only inputs.
func (s *MetricsService) Dashboard(ctx context.Context, window domain.DateWindow) (domain.Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "metrics.dashboard",
		trace.WithAttributes(
			attribute.String("window.start", window.Start.String()),
			attribute.String("window.end", window.End.String()),
		),
	)
	defer span.End()

	started := time.Now()
	in, err := s.prepare(window)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.Dashboard{}, err
	}

	tables := metrics.Tables()
	results := make([]interface{}, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	for i, table := range tables {
		g.Go(func() error {
			r, err := s.compute(gctx, table, in)
			if err != nil {
				return fmt.Errorf("%s: %w", table, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.Dashboard{}, err
	}

	dashboard := domain.Dashboard{
		Window:        window,
		RecencyAnchor: in.anchor,
		FilterScopes:  metrics.Scopes(),
		GeneratedAt:   s.now(),
	}
	for i, table := range tables {
		switch table {
		case metrics.TableRFM:
			dashboard.RFM = results[i].([]domain.RFMRow)
		case metrics.TableRFMSummary:
			dashboard.RFMSummary = results[i].(domain.RFMSummary)
		case metrics.TableRFMRanking:
			dashboard.RFMRanking = results[i].(domain.RFMRanking)
		case metrics.TableSLA:
			dashboard.SLA = results[i].(domain.SLAReport)
		case metrics.TableMonthlyVolume:
			dashboard.MonthlyVolume = results[i].(domain.MonthlyVolumeSeries)
		case metrics.TablePaymentMethods:
			dashboard.PaymentMethods = results[i].([]domain.CategoryCount)
		case metrics.TableReviewScores:
			dashboard.ReviewScores = results[i].([]domain.ReviewScoreCount)
		case metrics.TableLowScoreReviews:
			dashboard.LowScoreReviews = results[i].([]domain.ReviewComment)
		case metrics.TableTopCategories:
			dashboard.TopCategories = results[i].([]domain.YearlyTopCategories)
		case metrics.TableCustomersPerState:
			dashboard.CustomersPerState = results[i].([]domain.StateCount)
		}
	}

	s.logger.InfoContext(ctx, "dashboard computed",
		slog.String("start", window.Start.String()),
		slog.String("end", window.End.String()),
		slog.Int("orders_in_window", len(in.orders)),
		slog.Duration("duration", time.Since(started)))
	return dashboard, nil
}

// LateOrders lists every late order row in the window with its state and lateness
func (s *MetricsService) LateOrders(ctx context.Context, window domain.DateWindow) ([]metrics.LateRow, error) {
	in, err := s.prepare(window)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return metrics.LateOrderTable(in.orders, in.states), nil
}

func tableAs[T any](ctx context.Context, s *MetricsService, table string, window domain.DateWindow) (T, error) {
	var zero T
	v, err := s.Table(ctx, table, window)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// RFM returns recency, frequency and monetary value per customer state
func (s *MetricsService) RFM(ctx context.Context, window domain.DateWindow) ([]domain.RFMRow, error) {
	return tableAs[[]domain.RFMRow](ctx, s, metrics.TableRFM, window)
}

// RFMSummary returns the averages over the RFM table
func (s *MetricsService) RFMSummary(ctx context.Context, window domain.DateWindow) (domain.RFMSummary, error) {
	return tableAs[domain.RFMSummary](ctx, s, metrics.TableRFMSummary, window)
}

// RFMRanking returns the best states per RFM dimension
func (s *MetricsService) RFMRanking(ctx context.Context, window domain.DateWindow) (domain.RFMRanking, error) {
	return tableAs[domain.RFMRanking](ctx, s, metrics.TableRFMRanking, window)
}

// SLA returns the late delivery report
func (s *MetricsService) SLA(ctx context.Context, window domain.DateWindow) (domain.SLAReport, error) {
	return tableAs[domain.SLAReport](ctx, s, metrics.TableSLA, window)
}

// MonthlyVolume returns the distinct order count per month
func (s *MetricsService) MonthlyVolume(ctx context.Context, window domain.DateWindow) (domain.MonthlyVolumeSeries, error) {
	return tableAs[domain.MonthlyVolumeSeries](ctx, s, metrics.TableMonthlyVolume, window)
}

// PaymentMethods returns the distinct order count per payment type
func (s *MetricsService) PaymentMethods(ctx context.Context, window domain.DateWindow) ([]domain.CategoryCount, error) {
	return tableAs[[]domain.CategoryCount](ctx, s, metrics.TablePaymentMethods, window)
}

// ReviewScores returns the distinct order count per review score
func (s *MetricsService) ReviewScores(ctx context.Context, window domain.DateWindow) ([]domain.ReviewScoreCount, error) {
	return tableAs[[]domain.ReviewScoreCount](ctx, s, metrics.TableReviewScores, window)
}

// LowScoreReviews returns low-score reviews that carry a full comment
func (s *MetricsService) LowScoreReviews(ctx context.Context, window domain.DateWindow) ([]domain.ReviewComment, error) {
	return tableAs[[]domain.ReviewComment](ctx, s, metrics.TableLowScoreReviews, window)
}

// TopCategories returns the best selling categories per year. The window is
// validated but does not filter this table.
func (s *MetricsService) TopCategories(ctx context.Context, window domain.DateWindow) ([]domain.YearlyTopCategories, error) {
	return tableAs[[]domain.YearlyTopCategories](ctx, s, metrics.TableTopCategories, window)
}

// CustomersPerState returns the customer count per state. The window is
// validated but does not filter this table.
func (s *MetricsService) CustomersPerState(ctx context.Context, window domain.DateWindow) ([]domain.StateCount, error) {
	return tableAs[[]domain.StateCount](ctx, s, metrics.TableCustomersPerState, window)
}
