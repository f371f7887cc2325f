// Package app wires the order metrics service together and runs it.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, ORDERPULSE_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Load the records from the configured source into the store
//	4. Create the metrics and health services
//	5. Build the chi router with middleware and handlers
//	6. Create the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication(ctx, "")
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. Active
// requests are given ShutdownTimeout to finish, then telemetry is flushed
// and the log file is closed.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit, leaving the exit code to main.
package app
