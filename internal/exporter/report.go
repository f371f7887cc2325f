package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"orderpulse/internal/metrics"
	"orderpulse/pkg/contracts/domain"
)

// Report formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// Report file names for the single-file formats
const (
	JSONReportFile = "dashboard.json"
	XLSXReportFile = "dashboard.xlsx"
)

// Formats lists every supported report format
func Formats() []string {
	return []string{FormatCSV, FormatJSON, FormatXLSX}
}

// Report is the JSON document of a full export
type Report struct {
	domain.Dashboard
	LateOrders []metrics.LateRow `json:"late_orders"`
}

// Reporter writes a dashboard in one of the report formats
type Reporter struct {
	csv      *CSVWriter
	workbook *WorkbookWriter
	logger   *slog.Logger
}

// NewReporter creates a reporter
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{
		csv:      NewCSVWriter(logger),
		workbook: NewWorkbookWriter(logger),
		logger:   logger.With(slog.String("component", "reporter")),
	}
}

// Export writes the report into dir and returns the files it created.
// CSV produces one file per table, JSON and XLSX a single file.
func (r *Reporter) Export(format, dir string, d domain.Dashboard, lateOrders []metrics.LateRow) ([]string, error) {
	if lateOrders == nil {
		lateOrders = []metrics.LateRow{}
	}

	var files []string
	switch format {
	case FormatCSV:
		sheets, err := DashboardSheets(d, lateOrders)
		if err != nil {
			return nil, err
		}
		if files, err = r.csv.WriteSheets(dir, sheets); err != nil {
			return files, err
		}
	case FormatXLSX:
		sheets, err := DashboardSheets(d, lateOrders)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, XLSXReportFile)
		if err := r.workbook.Save(path, sheets); err != nil {
			return nil, err
		}
		files = []string{path}
	case FormatJSON:
		path := filepath.Join(dir, JSONReportFile)
		if err := writeJSONFile(path, Report{Dashboard: d, LateOrders: lateOrders}); err != nil {
			return nil, err
		}
		files = []string{path}
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}

	r.logger.Info("Report exported",
		slog.String("format", format),
		slog.String("dir", dir),
		slog.Int("file_count", len(files)))
	return files, nil
}

// WriteTable streams a single table as CSV or XLSX
func (r *Reporter) WriteTable(w io.Writer, format string, sheet Sheet) error {
	switch format {
	case FormatCSV:
		return r.csv.WriteSheet(w, sheet)
	case FormatXLSX:
		return r.workbook.Write(w, []Sheet{sheet})
	default:
		return fmt.Errorf("unsupported table format %q", format)
	}
}

// WriteDashboard streams a full dashboard as an XLSX workbook or a JSON document
func (r *Reporter) WriteDashboard(w io.Writer, format string, d domain.Dashboard, lateOrders []metrics.LateRow) error {
	if lateOrders == nil {
		lateOrders = []metrics.LateRow{}
	}

	switch format {
	case FormatXLSX:
		sheets, err := DashboardSheets(d, lateOrders)
		if err != nil {
			return err
		}
		return r.workbook.Write(w, sheets)
	case FormatJSON:
		return json.NewEncoder(w).Encode(Report{Dashboard: d, LateOrders: lateOrders})
	default:
		return fmt.Errorf("unsupported dashboard format %q", format)
	}
}

// ContentType returns the MIME type of a format
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

func writeJSONFile(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return f.Close()
}
