package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"orderpulse/internal/store"
)

// WorkbookSource reads the records from one XLSX workbook with a sheet per table
type WorkbookSource struct {
	path   string
	logger *slog.Logger
}

// NewWorkbookSource creates a workbook source
func NewWorkbookSource(path string, logger *slog.Logger) *WorkbookSource {
	return &WorkbookSource{
		path:   path,
		logger: logger.With(slog.String("component", "workbook_source")),
	}
}

// Name identifies the source in logs and stats
func (s *WorkbookSource) Name() string { return "xlsx:" + s.path }

// Load opens the workbook and decodes the orders, customers and product_categories sheets
func (s *WorkbookSource) Load(ctx context.Context) (*store.Store, LoadStats, error) {
	started := time.Now()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, LoadStats{Source: s.Name()}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	tables := make([]rawTable, 0, 3)
	for _, sheet := range []string{tableOrders, tableCustomers, tableCategories} {
		if err := ctx.Err(); err != nil {
			return nil, LoadStats{Source: s.Name()}, err
		}
		table, err := readSheet(f, sheet)
		if err != nil {
			return nil, LoadStats{Source: s.Name()}, err
		}
		s.logger.Debug("sheet read", slog.String("sheet", sheet), slog.Int("rows", len(table.rows)))
		tables = append(tables, table)
	}

	st, stats, err := buildStore(s.Name(), tables[0], tables[1], tables[2], started)
	if err != nil {
		return nil, stats, err
	}
	logLoaded(s.logger, stats)
	return st, stats, nil
}

// readSheet finds a sheet by case-insensitive name and returns its rows
func readSheet(f *excelize.File, want string) (rawTable, error) {
	name := ""
	for _, sheet := range f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(sheet), want) {
			name = sheet
			break
		}
	}
	if name == "" {
		return rawTable{}, fmt.Errorf("workbook has no %q sheet", want)
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return rawTable{}, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return rawTable{}, fmt.Errorf("sheet %q is empty", name)
	}
	return rawTable{header: rows[0], rows: rows[1:]}, nil
}
