// Package services implements the business logic layer between the HTTP
// handlers and the record store.
//
// MetricsService validates a date window, filters the orders once and runs
// the aggregators from internal/metrics, concurrently for the dashboard. Every
// computation is traced and timed through the OpenTelemetry instruments in
// internal/infrastructure.
//
// HealthService reports liveness, readiness and build information.
//
// Services receive their dependencies through constructors and log with the
// injected *slog.Logger, tagged with a component attribute.
package services
