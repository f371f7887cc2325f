// Command metrics-report computes every aggregate table once and writes
// them as CSV files, a JSON document or an XLSX workbook.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"orderpulse/internal/config"
	"orderpulse/internal/dataprocessing"
	"orderpulse/internal/exporter"
	"orderpulse/internal/infrastructure"
	"orderpulse/internal/services"
	api "orderpulse/pkg/contracts/api/v1"
)

type options struct {
	api.ReportRequest
	DataDir  string
	Workbook string
	DSN      string
	LogLevel string
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("metrics-report", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.DataDir, "data", "data", "directory holding the order, customer and category CSV files")
	fs.StringVar(&opts.Workbook, "workbook", "", "read the records from this XLSX workbook instead of CSV files")
	fs.StringVar(&opts.DSN, "dsn", "", "read the records from this PostgreSQL database instead of CSV files")
	fs.StringVar(&opts.Start, "start", "", "first order date to include (YYYY-MM-DD, defaults to the earliest order)")
	fs.StringVar(&opts.End, "end", "", "last order date to include (YYYY-MM-DD, defaults to the latest order)")
	fs.StringVar(&opts.Format, "format", exporter.FormatCSV, "report format: "+strings.Join(exporter.Formats(), ", "))
	fs.StringVar(&opts.OutputDir, "out", "reports", "output directory")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// sourceOptions picks the record source from the flags: DSN, then workbook, then CSV
func (o options) sourceOptions() dataprocessing.SourceOptions {
	switch {
	case o.DSN != "":
		return dataprocessing.SourceOptions{Format: dataprocessing.FormatPostgres, DSN: o.DSN}
	case o.Workbook != "":
		return dataprocessing.SourceOptions{Format: dataprocessing.FormatXLSX, Workbook: o.Workbook}
	default:
		return dataprocessing.SourceOptions{Format: dataprocessing.FormatCSV, Dir: o.DataDir}
	}
}

func validateRequest(req api.ReportRequest) error {
	err := validator.New().Struct(req)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("invalid arguments: %s", strings.Join(msgs, "; "))
}

func run(ctx context.Context, opts options, logger *slog.Logger) ([]string, error) {
	if err := validateRequest(opts.ReportRequest); err != nil {
		return nil, err
	}

	source, err := dataprocessing.NewSource(opts.sourceOptions(), logger)
	if err != nil {
		return nil, err
	}
	st, _, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source.Name(), err)
	}

	svc := services.NewMetricsService(st, logger, nil, nil)
	defaults, err := svc.DefaultWindow()
	if err != nil {
		return nil, err
	}
	window, err := opts.DateRangeRequest.Window(defaults)
	if err != nil {
		return nil, err
	}

	dashboard, err := svc.Dashboard(ctx, window)
	if err != nil {
		return nil, err
	}
	late, err := svc.LateOrders(ctx, window)
	if err != nil {
		return nil, err
	}

	return exporter.NewReporter(logger).Export(opts.Format, opts.OutputDir, dashboard, late)
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	logger, _, err := infrastructure.NewLogger(config.LoggingConfig{
		Level:  opts.LogLevel,
		Format: "text",
		Output: "console",
	}, os.Stderr)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	files, err := run(context.Background(), opts, logger)
	if err != nil {
		logger.Error("Report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, f := range files {
		fmt.Println(f)
	}
}
