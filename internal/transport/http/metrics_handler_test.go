package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "orderpulse/internal/errors"
	"orderpulse/internal/metrics"
	"orderpulse/internal/middleware"
	"orderpulse/internal/services"
	"orderpulse/internal/shared/testutil"
	"orderpulse/pkg/contracts/domain"
)

// MockMetricsService is a mock implementation of the metrics service
type MockMetricsService struct {
	mock.Mock
}

func (m *MockMetricsService) DefaultWindow() (domain.DateWindow, error) {
	args := m.Called()
	return args.Get(0).(domain.DateWindow), args.Error(1)
}

func (m *MockMetricsService) Dataset(ctx context.Context) (services.DatasetInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.DatasetInfo), args.Error(1)
}

func (m *MockMetricsService) Table(ctx context.Context, table string, window domain.DateWindow) (interface{}, error) {
	args := m.Called(ctx, table, window)
	return args.Get(0), args.Error(1)
}

func (m *MockMetricsService) Dashboard(ctx context.Context, window domain.DateWindow) (domain.Dashboard, error) {
	args := m.Called(ctx, window)
	return args.Get(0).(domain.Dashboard), args.Error(1)
}

func (m *MockMetricsService) LateOrders(ctx context.Context, window domain.DateWindow) ([]metrics.LateRow, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]metrics.LateRow), args.Error(1)
}

var handlerNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, service MetricsServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	h := NewMetricsHandler(service, middleware.NewValidator(logger, errorHandler), errorHandler, logger)
	h.now = func() time.Time { return handlerNow }

	r := chi.NewRouter()
	r.Mount("/api/metrics", h.Routes())
	return r
}

func sampleRouter(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return newTestRouter(t, services.NewMetricsService(testutil.SampleStore(), logger, nil, nil))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// tableBody mirrors api.TableResponse with the data left undecoded
type tableBody struct {
	Table       string            `json:"table"`
	Window      domain.DateWindow `json:"window"`
	FilterScope string            `json:"filter_scope"`
	Data        json.RawMessage   `json:"data"`
	GeneratedAt time.Time         `json:"generated_at"`
}

func decodeTable(t *testing.T, rec *httptest.ResponseRecorder) tableBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body tableBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestMetricsHandler_Bounds(t *testing.T) {
	rec := get(t, sampleRouter(t), "/api/metrics/bounds")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Window        domain.DateWindow `json:"window"`
		RecencyAnchor domain.Date       `json:"recency_anchor"`
		Orders        int               `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, testutil.SampleWindow(), body.Window)
	assert.Equal(t, domain.MustParseDate(testutil.SampleLastDate), body.RecencyAnchor)
	assert.Equal(t, testutil.SampleOrderRows, body.Orders)
}

func TestMetricsHandler_Tables(t *testing.T) {
	router := sampleRouter(t)

	tests := []struct {
		name      string
		target    string
		table     string
		scope     domain.FilterScope
		window    domain.DateWindow
		wantItems int
	}{
		{"rfm full bounds", "/api/metrics/rfm", metrics.TableRFM, domain.FilterScopeDateRange, testutil.SampleWindow(), 4},
		{
			"rfm 2017", "/api/metrics/rfm?start=2017-01-01&end=2017-12-31", metrics.TableRFM, domain.FilterScopeDateRange,
			domain.DateWindow{Start: domain.MustParseDate("2017-01-01"), End: domain.MustParseDate("2017-12-31")}, 2,
		},
		{
			"open ended window", "/api/metrics/payments?start=2018-01-01", metrics.TablePaymentMethods, domain.FilterScopeDateRange,
			domain.DateWindow{Start: domain.MustParseDate("2018-01-01"), End: domain.MustParseDate(testutil.SampleLastDate)}, 2,
		},
		{"low score reviews", "/api/metrics/reviews/low-score", metrics.TableLowScoreReviews, domain.FilterScopeDateRange, testutil.SampleWindow(), 2},
		{
			"customers ignore the window", "/api/metrics/customers/states?start=2018-01-01", metrics.TableCustomersPerState, domain.FilterScopeUnfiltered,
			domain.DateWindow{Start: domain.MustParseDate("2018-01-01"), End: domain.MustParseDate(testutil.SampleLastDate)}, 3,
		},
		{"table by name", "/api/metrics/tables/review_scores", metrics.TableReviewScores, domain.FilterScopeDateRange, testutil.SampleWindow(), 4},
		{"late orders", "/api/metrics/sla/late-orders", "late_orders", domain.FilterScopeDateRange, testutil.SampleWindow(), 3},
		{"late orders by name", "/api/metrics/tables/late_orders?end=2017-12-31", "late_orders", domain.FilterScopeDateRange,
			domain.DateWindow{Start: domain.MustParseDate(testutil.SampleFirstDate), End: domain.MustParseDate("2017-12-31")}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := decodeTable(t, get(t, router, tt.target))
			assert.Equal(t, tt.table, body.Table)
			assert.Equal(t, string(tt.scope), body.FilterScope)
			assert.Equal(t, tt.window, body.Window)
			assert.True(t, handlerNow.Equal(body.GeneratedAt))

			var items []json.RawMessage
			require.NoError(t, json.Unmarshal(body.Data, &items))
			assert.Len(t, items, tt.wantItems)
		})
	}
}

func TestMetricsHandler_SingleObjectTables(t *testing.T) {
	router := sampleRouter(t)

	body := decodeTable(t, get(t, router, "/api/metrics/sla"))
	var sla domain.SLAReport
	require.NoError(t, json.Unmarshal(body.Data, &sla))
	assert.Equal(t, testutil.SampleLateOrders, sla.LateOrderCount)

	body = decodeTable(t, get(t, router, "/api/metrics/rfm/summary"))
	var summary domain.RFMSummary
	require.NoError(t, json.Unmarshal(body.Data, &summary))
	require.NotNil(t, summary.AverageMonetary)
	assert.Equal(t, 88.75, *summary.AverageMonetary)

	body = decodeTable(t, get(t, router, "/api/metrics/orders/monthly"))
	var volume map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body.Data, &volume))
	assert.JSONEq(t, `{"month":"2017-02","count":2}`, string(volume["peak"]))
}

func TestMetricsHandler_Dashboard(t *testing.T) {
	rec := get(t, sampleRouter(t), "/api/metrics/dashboard?start=2017-01-01")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, table := range metrics.Tables() {
		assert.Contains(t, body, table)
	}
	assert.JSONEq(t, `{"start":"2017-01-01","end":"2018-03-20"}`, string(body["window"]))
}

func TestMetricsHandler_Errors(t *testing.T) {
	router := sampleRouter(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
		wantType   string
	}{
		{"malformed start", "/api/metrics/rfm?start=2017-13-01", http.StatusBadRequest, apierrors.CodeValidationFailed, apierrors.TypeValidation},
		{"start after end", "/api/metrics/sla?start=2018-01-01&end=2017-01-01", http.StatusBadRequest, apierrors.CodeInvalidDateRange, apierrors.TypeDateRange},
		{"start after unfiltered table end", "/api/metrics/customers/states?start=2019-01-01", http.StatusBadRequest, apierrors.CodeInvalidDateRange, apierrors.TypeDateRange},
		{"unknown table", "/api/metrics/tables/revenue", http.StatusNotFound, apierrors.CodeNotFound, apierrors.TypeNotFound},
		{"bad export format", "/api/metrics/tables/rfm/export?format=pdf", http.StatusBadRequest, apierrors.CodeValidationFailed, apierrors.TypeValidation},
		{"bad dashboard format", "/api/metrics/dashboard/export?format=csv", http.StatusBadRequest, apierrors.CodeValidationFailed, apierrors.TypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code)

			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.wantCode, problem["error_code"])
			assert.Equal(t, tt.wantType, problem["type"])
			assert.EqualValues(t, tt.wantStatus, problem["status"])
		})
	}

	t.Run("validation details name the query parameter", func(t *testing.T) {
		problem := decodeProblem(t, get(t, router, "/api/metrics/rfm?end=31-12-2017"))
		details := problem["details"].(map[string]interface{})
		errs := details["errors"].([]interface{})
		require.Len(t, errs, 1)
		assert.Equal(t, "end", errs[0].(map[string]interface{})["field"])
	})
}

func TestMetricsHandler_ServiceFailures(t *testing.T) {
	window := testutil.SampleWindow()

	t.Run("no data", func(t *testing.T) {
		svc := new(MockMetricsService)
		svc.On("DefaultWindow").Return(domain.DateWindow{}, services.ErrNoData)

		rec := get(t, newTestRouter(t, svc), "/api/metrics/rfm")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.CodeNoData, decodeProblem(t, rec)["error_code"])
		svc.AssertExpectations(t)
	})

	t.Run("bounds without data", func(t *testing.T) {
		svc := new(MockMetricsService)
		svc.On("Dataset", mock.Anything).Return(services.DatasetInfo{}, services.ErrNoData)

		rec := get(t, newTestRouter(t, svc), "/api/metrics/bounds")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		svc := new(MockMetricsService)
		svc.On("DefaultWindow").Return(window, nil)
		svc.On("Table", mock.Anything, metrics.TableSLA, window).Return(nil, context.DeadlineExceeded)

		rec := get(t, newTestRouter(t, svc), "/api/metrics/sla")
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.Equal(t, apierrors.TypeTimeout, decodeProblem(t, rec)["type"])
		svc.AssertExpectations(t)
	})

	t.Run("unexpected failure", func(t *testing.T) {
		svc := new(MockMetricsService)
		svc.On("DefaultWindow").Return(window, nil)
		svc.On("LateOrders", mock.Anything, window).Return(nil, assert.AnError)

		rec := get(t, newTestRouter(t, svc), "/api/metrics/sla/late-orders")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestMetricsHandler_Export(t *testing.T) {
	router := sampleRouter(t)

	t.Run("csv table", func(t *testing.T) {
		rec := get(t, router, "/api/metrics/tables/payment_methods/export")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="payment_methods.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "\ufeffpayment_type,order_count\nboleto,1\ncredit_card,3\nvoucher,1\n", rec.Body.String())
	})

	t.Run("xlsx late orders", func(t *testing.T) {
		rec := get(t, router, "/api/metrics/tables/late_orders/export?format=xlsx&end=2017-12-31")
		require.Equal(t, http.StatusOK, rec.Code)

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("late_orders")
		require.NoError(t, err)
		assert.Len(t, rows, 3, "header plus o2 and o3")
	})

	t.Run("json dashboard", func(t *testing.T) {
		rec := get(t, router, "/api/metrics/dashboard/export?format=json")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="dashboard.json"`, rec.Header().Get("Content-Disposition"))

		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body, "late_orders")
		assert.Contains(t, body, metrics.TableRFM)
	})

	t.Run("xlsx dashboard", func(t *testing.T) {
		rec := get(t, router, "/api/metrics/dashboard/export")
		require.Equal(t, http.StatusOK, rec.Code)

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		assert.Len(t, f.GetSheetList(), len(metrics.Tables())+1)
	})
}
