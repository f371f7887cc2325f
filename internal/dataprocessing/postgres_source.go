package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"orderpulse/internal/store"
)

// Every column is selected as text so the rows share the tabular decoder
const (
	selectOrders = `SELECT order_id::text AS order_id, customer_id::text AS customer_id, order_approved_at::text AS order_approved_at,
	order_delivered_customer_date::text AS order_delivered_customer_date, order_estimated_delivery_date::text AS order_estimated_delivery_date,
	payment_value::text AS payment_value, payment_type::text AS payment_type, review_score::text AS review_score,
	review_comment_title::text AS review_comment_title, review_comment_message::text AS review_comment_message
FROM orders`

	selectCustomers = `SELECT customer_id::text AS customer_id, customer_state::text AS customer_state FROM customers`

	selectCategories = `SELECT product_category::text AS product_category, year::text AS year FROM product_categories`
)

// PostgresSource reads the records from the orders, customers and
// product_categories tables of a PostgreSQL database
type PostgresSource struct {
	dsn    string
	logger *slog.Logger
}

// NewPostgresSource creates a PostgreSQL source
func NewPostgresSource(dsn string, logger *slog.Logger) *PostgresSource {
	return &PostgresSource{
		dsn:    dsn,
		logger: logger.With(slog.String("component", "postgres_source")),
	}
}

// Name identifies the source in logs and stats
func (s *PostgresSource) Name() string { return "postgres" }

// Load runs the three queries on a single connection
func (s *PostgresSource) Load(ctx context.Context) (*store.Store, LoadStats, error) {
	started := time.Now()

	conn, err := pgx.Connect(ctx, s.dsn)
	if err != nil {
		return nil, LoadStats{Source: s.Name()}, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer conn.Close(context.Background())

	tables := make([]rawTable, 0, 3)
	for _, query := range []string{selectOrders, selectCustomers, selectCategories} {
		table, err := queryTable(ctx, conn, query)
		if err != nil {
			return nil, LoadStats{Source: s.Name()}, err
		}
		tables = append(tables, table)
	}

	st, stats, err := buildStore(s.Name(), tables[0], tables[1], tables[2], started)
	if err != nil {
		return nil, stats, err
	}
	logLoaded(s.logger, stats)
	return st, stats, nil
}

func queryTable(ctx context.Context, conn *pgx.Conn, query string) (rawTable, error) {
	rows, err := conn.Query(ctx, query)
	if err != nil {
		return rawTable{}, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, fd := range fields {
		header[i] = fd.Name
	}

	table := rawTable{header: header}
	for rows.Next() {
		values := make([]*string, len(fields))
		dest := make([]any, len(fields))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return rawTable{}, fmt.Errorf("scan failed: %w", err)
		}

		row := make([]string, len(values))
		for i, v := range values {
			if v != nil {
				row[i] = *v
			}
		}
		table.rows = append(table.rows, row)
	}
	if err := rows.Err(); err != nil {
		return rawTable{}, fmt.Errorf("rows failed: %w", err)
	}
	return table, nil
}
