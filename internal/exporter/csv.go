package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// utf8BOM lets spreadsheet applications recognize UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// Write streams a CSV document to w
func (c *CSVWriter) Write(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSheet streams one sheet as a BOM-prefixed CSV document
func (c *CSVWriter) WriteSheet(w io.Writer, sheet Sheet) error {
	return c.Write(w, WriteOptions{Headers: sheet.Headers, Records: sheet.Rows, BOMPrefix: true})
}

// WriteCSV writes data to a CSV file, creating parent directories
func (c *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	c.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if err := c.Write(file, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteSheets writes one <sheet>.csv file per sheet into dir and returns the paths
func (c *CSVWriter) WriteSheets(dir string, sheets []Sheet) ([]string, error) {
	paths := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		path := filepath.Join(dir, sheet.Name+".csv")
		if err := c.WriteCSV(path, WriteOptions{Headers: sheet.Headers, Records: sheet.Rows, BOMPrefix: true}); err != nil {
			return paths, fmt.Errorf("write %s: %w", sheet.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
