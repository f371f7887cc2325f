package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"orderpulse/internal/config"
	"orderpulse/internal/dataprocessing"
	apierrors "orderpulse/internal/errors"
	"orderpulse/internal/infrastructure"
	customMiddleware "orderpulse/internal/middleware"
	"orderpulse/internal/services"
	"orderpulse/internal/store"
	handlers "orderpulse/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Store           *store.Store
	LoadStats       dataprocessing.LoadStats
	MetricsService  *services.MetricsService
	HealthService   *services.HealthService
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	BusinessMetrics *infrastructure.BusinessMetrics

	errorHandler *apierrors.ErrorHandler
	logCloser    io.Closer
}

// NewApplication loads the configuration at configPath (or the default
// locations when empty), initializes logging and builds the application
func NewApplication(ctx context.Context, configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closer, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app, err := New(ctx, cfg, logger)
	if err != nil {
		closer.Close()
		return nil, err
	}
	app.logCloser = closer
	return app, nil
}

// New builds the application from an already loaded configuration.
// It loads the records, so the returned application is ready to serve.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.Version),
		slog.String("commit", config.Commit))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	businessMetrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		otelProviders.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:          cfg,
		Logger:          logger,
		OTelProviders:   otelProviders,
		BusinessMetrics: businessMetrics,
		errorHandler:    apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
	}

	if err := app.loadData(ctx); err != nil {
		otelProviders.Shutdown(ctx)
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// loadData reads the configured source into the record store
func (a *Application) loadData(ctx context.Context) error {
	source, err := dataprocessing.NewSource(dataprocessing.SourceOptions{
		Format:       a.Config.Data.Format,
		Dir:          a.Config.Data.Dir,
		Workbook:     a.Config.Data.Workbook,
		DSN:          a.Config.Data.DSN,
		OrdersFile:   a.Config.Data.OrdersFile,
		CustomerFile: a.Config.Data.CustomersFile,
		CategoryFile: a.Config.Data.CategoriesFile,
	}, a.Logger)
	if err != nil {
		return err
	}

	st, stats, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", source.Name(), err)
	}

	infrastructure.RecordLoad(ctx, a.BusinessMetrics, "orders", stats.OrdersRead)
	infrastructure.RecordLoad(ctx, a.BusinessMetrics, "customers", stats.CustomersRead)
	infrastructure.RecordLoad(ctx, a.BusinessMetrics, "categories", stats.CategoriesRead)

	if st.IsEmpty() {
		a.Logger.WarnContext(ctx, "Data source holds no orders; metrics endpoints will answer NO_DATA",
			slog.String("source", stats.Source))
	}

	a.Store = st
	a.LoadStats = stats
	return nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.MetricsService = services.NewMetricsService(a.Store, a.Logger, a.OTelProviders.Tracer, a.BusinessMetrics)
	a.HealthService = services.NewHealthService(services.BuildInfo{
		Version:   config.Version,
		Commit:    config.Commit,
		BuildTime: config.BuildTime,
	}, a.Store, a.Logger)
}

// setupRouter builds the router.
// Middleware order: RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.BusinessMetrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.errorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.errorHandler,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus scrape endpoint, outside the middleware group
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewValidator(a.Logger, a.errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.Compress(5))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		metricsHandler := handlers.NewMetricsHandler(a.MetricsService, validator, a.errorHandler, a.Logger)
		r.Mount("/metrics", metricsHandler.Routes())
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "HTTP server listening",
			slog.String("address", a.Server.Addr),
			slog.Int("orders", a.Store.OrderCount()))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			_ = a.Stop(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	}

	return a.Stop(context.Background())
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")

	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}
