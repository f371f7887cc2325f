package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderpulse/internal/store"
)

const (
	tableOrders     = "orders"
	tableCustomers  = "customers"
	tableCategories = "product_categories"
)

var (
	// ErrMissingColumns is returned when a required column is absent from a header
	ErrMissingColumns = errors.New("missing required columns")
	// ErrUnknownFormat is returned for an unsupported source format
	ErrUnknownFormat = errors.New("unknown data format")
)

// Source formats
const (
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
	FormatPostgres = "postgres"
)

// LoadStats reports what a source read
type LoadStats struct {
	Source         string        `json:"source"`
	OrdersRead     int           `json:"orders_read"`
	OrdersSkipped  int           `json:"orders_skipped"`
	CustomersRead  int           `json:"customers_read"`
	CategoriesRead int           `json:"categories_read"`
	Duration       time.Duration `json:"duration"`
}

// Source loads the record collections into a store
type Source interface {
	Load(ctx context.Context) (*store.Store, LoadStats, error)
	Name() string
}

// SourceOptions selects and configures a Source
type SourceOptions struct {
	Format       string
	Dir          string
	Workbook     string
	DSN          string
	OrdersFile   string
	CustomerFile string
	CategoryFile string
}

// NewSource creates the Source for the configured format
func NewSource(opts SourceOptions, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Format {
	case FormatCSV, "":
		files := DefaultCSVFiles()
		if opts.OrdersFile != "" {
			files.Orders = opts.OrdersFile
		}
		if opts.CustomerFile != "" {
			files.Customers = opts.CustomerFile
		}
		if opts.CategoryFile != "" {
			files.Categories = opts.CategoryFile
		}
		return NewCSVSource(opts.Dir, files, logger), nil
	case FormatXLSX:
		return NewWorkbookSource(opts.Workbook, logger), nil
	case FormatPostgres:
		return NewPostgresSource(opts.DSN, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

// buildStore decodes the three tables and assembles the store
func buildStore(name string, orders, customers, categories rawTable, started time.Time) (*store.Store, LoadStats, error) {
	stats := LoadStats{Source: name}

	orderRows, skipped, err := decodeOrders(orders.header, orders.rows)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to decode orders: %w", err)
	}
	customerRows, err := decodeCustomers(customers.header, customers.rows)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to decode customers: %w", err)
	}
	categoryRows, err := decodeCategories(categories.header, categories.rows)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to decode product categories: %w", err)
	}

	stats.OrdersRead = len(orderRows)
	stats.OrdersSkipped = skipped
	stats.CustomersRead = len(customerRows)
	stats.CategoriesRead = len(categoryRows)
	stats.Duration = time.Since(started)

	return store.New(orderRows, customerRows, categoryRows), stats, nil
}

// rawTable is a header plus string rows, the common shape of every source
type rawTable struct {
	header []string
	rows   [][]string
}

func logLoaded(logger *slog.Logger, stats LoadStats) {
	logger.Info("records loaded",
		slog.String("source", stats.Source),
		slog.Int("orders", stats.OrdersRead),
		slog.Int("orders_skipped", stats.OrdersSkipped),
		slog.Int("customers", stats.CustomersRead),
		slog.Int("categories", stats.CategoriesRead),
		slog.Duration("duration", stats.Duration),
	)
}
