package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "orderpulse/internal/errors"
	"orderpulse/internal/exporter"
	"orderpulse/internal/metrics"
	"orderpulse/internal/middleware"
	"orderpulse/internal/services"
	api "orderpulse/pkg/contracts/api/v1"
	"orderpulse/pkg/contracts/domain"
)

// tableRoutes maps each table endpoint below /api/metrics to its table name
var tableRoutes = []struct {
	path  string
	table string
}{
	{"/rfm", metrics.TableRFM},
	{"/rfm/summary", metrics.TableRFMSummary},
	{"/rfm/ranking", metrics.TableRFMRanking},
	{"/sla", metrics.TableSLA},
	{"/orders/monthly", metrics.TableMonthlyVolume},
	{"/payments", metrics.TablePaymentMethods},
	{"/reviews", metrics.TableReviewScores},
	{"/reviews/low-score", metrics.TableLowScoreReviews},
	{"/categories/top", metrics.TableTopCategories},
	{"/customers/states", metrics.TableCustomersPerState},
}

// MetricsHandler serves the aggregate tables with RFC 7807 errors
type MetricsHandler struct {
	service      MetricsServiceInterface
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	reporter     *exporter.Reporter
	logger       *slog.Logger
	now          func() time.Time
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(service MetricsServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *MetricsHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MetricsHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		reporter:     exporter.NewReporter(logger),
		logger:       logger.With(slog.String("handler", "metrics")),
		now:          time.Now,
	}
}

// Routes returns the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/bounds", h.GetBounds)
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/dashboard/export", h.ExportDashboard)
	r.Get("/sla/late-orders", h.GetLateOrders)

	for _, route := range tableRoutes {
		r.Get(route.path, h.GetTable(route.table))
	}

	r.Route("/tables/{table}", func(r chi.Router) {
		r.Use(h.TableCtx)
		r.Get("/", h.GetNamedTable)
		r.Get("/export", h.ExportTable)
	})

	return r
}

// TableCtx validates the {table} parameter and stores it in the context
func (h *MetricsHandler) TableCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := chi.URLParam(r, "table")
		if _, ok := metrics.ScopeOf(table); !ok && table != exporter.TableLateOrders {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("table %q", table)))
			return
		}
		next.ServeHTTP(w, r.WithContext(withTable(r, table)))
	})
}

// window resolves the start/end query parameters against the dataset bounds.
// It writes the error response itself and reports whether to continue.
func (h *MetricsHandler) window(w http.ResponseWriter, r *http.Request) (domain.DateWindow, bool) {
	q := r.URL.Query()
	req := api.DateRangeRequest{Start: q.Get("start"), End: q.Get("end")}
	if !h.validator.Validate(w, r, req) {
		return domain.DateWindow{}, false
	}

	defaults, err := h.service.DefaultWindow()
	if err != nil {
		h.handleServiceError(w, r, err)
		return domain.DateWindow{}, false
	}

	window, err := req.Window(defaults)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return domain.DateWindow{}, false
	}
	return window, true
}

// handleServiceError maps service failures onto API errors
func (h *MetricsHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, metrics.ErrInvalidDateRange):
		err = apierrors.InvalidDateRange(err)
	case errors.Is(err, services.ErrNoData):
		err = apierrors.NoData(err)
	case errors.Is(err, services.ErrUnknownTable):
		err = apierrors.NotFoundError("table")
	}
	h.errorHandler.HandleError(w, r, err)
}

// GetBounds handles GET /api/metrics/bounds
func (h *MetricsHandler) GetBounds(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Dataset(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, api.BoundsResponse{
		Window:        info.Window,
		RecencyAnchor: info.RecencyAnchor,
		Orders:        info.Orders,
		Customers:     info.Customers,
		Categories:    info.Categories,
	})
}

// GetDashboard handles GET /api/metrics/dashboard
func (h *MetricsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	window, ok := h.window(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), window)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, dashboard)
}

// GetTable returns the handler for one fixed table
func (h *MetricsHandler) GetTable(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveTable(w, r, table)
	}
}

// GetNamedTable handles GET /api/metrics/tables/{table}
func (h *MetricsHandler) GetNamedTable(w http.ResponseWriter, r *http.Request) {
	table := tableFrom(r)
	if table == exporter.TableLateOrders {
		h.GetLateOrders(w, r)
		return
	}
	h.serveTable(w, r, table)
}

func (h *MetricsHandler) serveTable(w http.ResponseWriter, r *http.Request, table string) {
	window, ok := h.window(w, r)
	if !ok {
		return
	}

	data, err := h.service.Table(r.Context(), table, window)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	scope, _ := metrics.ScopeOf(table)
	render.JSON(w, r, api.TableResponse{
		Table:       table,
		Window:      window,
		FilterScope: scope,
		Data:        data,
		GeneratedAt: h.now().UTC(),
	})
}

// GetLateOrders handles GET /api/metrics/sla/late-orders
func (h *MetricsHandler) GetLateOrders(w http.ResponseWriter, r *http.Request) {
	window, ok := h.window(w, r)
	if !ok {
		return
	}

	rows, err := h.service.LateOrders(r.Context(), window)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []metrics.LateRow{}
	}

	render.JSON(w, r, api.TableResponse{
		Table:       exporter.TableLateOrders,
		Window:      window,
		FilterScope: domain.FilterScopeDateRange,
		Data:        rows,
		GeneratedAt: h.now().UTC(),
	})
}

// ExportTable handles GET /api/metrics/tables/{table}/export?format=csv|xlsx
func (h *MetricsHandler) ExportTable(w http.ResponseWriter, r *http.Request) {
	format, ok := h.validator.ValidateEnum(w, r, "format", []string{exporter.FormatCSV, exporter.FormatXLSX}, exporter.FormatCSV)
	if !ok {
		return
	}
	window, ok := h.window(w, r)
	if !ok {
		return
	}

	table := tableFrom(r)
	var (
		data interface{}
		err  error
	)
	if table == exporter.TableLateOrders {
		data, err = h.service.LateOrders(r.Context(), window)
	} else {
		data, err = h.service.Table(r.Context(), table, window)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	sheet, err := exporter.TableSheet(table, data)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewInternalError("failed to export table", err))
		return
	}

	setAttachment(w, format, table)
	if err := h.reporter.WriteTable(w, format, sheet); err != nil {
		// headers are already sent
		h.logger.ErrorContext(r.Context(), "Failed to write table export",
			slog.String("table", table),
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}

// ExportDashboard handles GET /api/metrics/dashboard/export?format=xlsx|json
func (h *MetricsHandler) ExportDashboard(w http.ResponseWriter, r *http.Request) {
	format, ok := h.validator.ValidateEnum(w, r, "format", []string{exporter.FormatXLSX, exporter.FormatJSON}, exporter.FormatXLSX)
	if !ok {
		return
	}
	window, ok := h.window(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), window)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	late, err := h.service.LateOrders(r.Context(), window)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	setAttachment(w, format, "dashboard")
	if err := h.reporter.WriteDashboard(w, format, dashboard, late); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write dashboard export",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}

func setAttachment(w http.ResponseWriter, format, name string) {
	w.Header().Set("Content-Type", exporter.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+format))
	w.WriteHeader(http.StatusOK)
}
