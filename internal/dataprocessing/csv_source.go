package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"orderpulse/internal/store"
)

// CSVFiles names the three files inside a data directory
type CSVFiles struct {
	Orders     string
	Customers  string
	Categories string
}

// DefaultCSVFiles returns the file names written by the dataset export
func DefaultCSVFiles() CSVFiles {
	return CSVFiles{
		Orders:     "order_details.csv",
		Customers:  "customers.csv",
		Categories: "order_prod_category.csv",
	}
}

// CSVSource reads the records from CSV files in a directory
type CSVSource struct {
	dir    string
	files  CSVFiles
	logger *slog.Logger
}

// NewCSVSource creates a CSV source
func NewCSVSource(dir string, files CSVFiles, logger *slog.Logger) *CSVSource {
	return &CSVSource{
		dir:    dir,
		files:  files,
		logger: logger.With(slog.String("component", "csv_source")),
	}
}

// Name identifies the source in logs and stats
func (s *CSVSource) Name() string { return "csv:" + s.dir }

// Load reads and decodes all three files
func (s *CSVSource) Load(ctx context.Context) (*store.Store, LoadStats, error) {
	started := time.Now()

	tables := make([]rawTable, 0, 3)
	for _, name := range []string{s.files.Orders, s.files.Customers, s.files.Categories} {
		if err := ctx.Err(); err != nil {
			return nil, LoadStats{Source: s.Name()}, err
		}
		table, err := readCSVFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, LoadStats{Source: s.Name()}, err
		}
		s.logger.Debug("csv file read", slog.String("file", name), slog.Int("rows", len(table.rows)))
		tables = append(tables, table)
	}

	st, stats, err := buildStore(s.Name(), tables[0], tables[1], tables[2], started)
	if err != nil {
		return nil, stats, err
	}
	logLoaded(s.logger, stats)
	return st, stats, nil
}

// readCSVFile reads a whole CSV file, tolerating a UTF-8 BOM
func readCSVFile(path string) (rawTable, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return rawTable{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return rawTable{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return rawTable{}, fmt.Errorf("%s: empty file", path)
	}
	return rawTable{header: records[0], rows: records[1:]}, nil
}
