// Package http implements the HTTP handlers of the order metrics service.
// Handlers stay thin: they parse and validate the request, call a service,
// and render the result as JSON or as a file download.
//
// # Routes
//
// MetricsHandler.Routes is mounted at /api/metrics:
//
//	GET /bounds                      dataset window, recency anchor and sizes
//	GET /dashboard                   every table for one window
//	GET /dashboard/export            the dashboard as xlsx or json
//	GET /rfm, /rfm/summary, /rfm/ranking
//	GET /sla, /sla/late-orders
//	GET /orders/monthly
//	GET /payments
//	GET /reviews, /reviews/low-score
//	GET /categories/top              ignores the window
//	GET /customers/states            ignores the window
//	GET /tables/{table}              any table by name
//	GET /tables/{table}/export       one table as csv or xlsx
//
// Every table endpoint takes optional start and end query parameters in
// YYYY-MM-DD format. Missing bounds default to the dataset bounds.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/invalid-date-range",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "invalid date range: start is after end",
//	    "instance": "/api/metrics/rfm",
//	    "error_code": "INVALID_DATE_RANGE",
//	    "trace_id": "..."
//	}
package http
