package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"orderpulse/pkg/contracts/domain"
)

// Column names shared by every source
const (
	colOrderID              = "order_id"
	colCustomerID           = "customer_id"
	colOrderApprovedAt      = "order_approved_at"
	colOrderDate            = "order_date"
	colDeliveredCustomer    = "order_delivered_customer_date"
	colEstimatedDelivery    = "order_estimated_delivery_date"
	colPaymentValue         = "payment_value"
	colPaymentType          = "payment_type"
	colReviewScore          = "review_score"
	colReviewCommentTitle   = "review_comment_title"
	colReviewCommentMessage = "review_comment_message"
	colCustomerState        = "customer_state"
	colProductCategory      = "product_category"
	colYear                 = "year"
)

// timestampLayouts are tried in order when parsing source timestamps
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05.999999-07",
	time.RFC3339,
	"2006-01-02T15:04:05",
	domain.DateLayout,
}

// RowError describes a row that could not be decoded
type RowError struct {
	Table  string
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d column %s: %v", e.Table, e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// columnIndex maps normalized header names to positions
type columnIndex map[string]int

// indexHeader normalizes header cells, stripping BOM and zero-width characters
func indexHeader(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, col := range header {
		clean := strings.TrimSpace(col)
		clean = strings.TrimLeft(clean, "\ufeff\u200b\u200c\u200d\u2060")
		clean = strings.ToLower(strings.TrimSpace(clean))
		if _, exists := idx[clean]; !exists {
			idx[clean] = i
		}
	}
	return idx
}

func (idx columnIndex) require(table string, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w: %v", table, ErrMissingColumns, missing)
	}
	return nil
}

// cell returns the trimmed value at the named column, or "" when absent
func (idx columnIndex) cell(row []string, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// optional returns nil for empty cells
func (idx columnIndex) optional(row []string, name string) *string {
	v := idx.cell(row, name)
	if v == "" {
		return nil
	}
	return &v
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// decodeOrders turns tabular rows into orders. Rows without an approval
// timestamp are skipped and counted; any other malformed row is an error.
func decodeOrders(header []string, rows [][]string) ([]domain.Order, int, error) {
	idx := indexHeader(header)
	dateCol := colOrderApprovedAt
	if _, ok := idx[colOrderApprovedAt]; !ok {
		dateCol = colOrderDate
	}
	if err := idx.require(tableOrders, colOrderID, colCustomerID, dateCol, colEstimatedDelivery, colPaymentValue); err != nil {
		return nil, 0, err
	}

	orders := make([]domain.Order, 0, len(rows))
	skipped := 0
	for n, row := range rows {
		line := n + 2 // 1-based, after the header

		approved := idx.cell(row, dateCol)
		if approved == "" {
			skipped++
			continue
		}
		ts, err := parseTimestamp(approved)
		if err != nil {
			return nil, skipped, &RowError{Table: tableOrders, Row: line, Column: dateCol, Err: err}
		}

		estimated, err := parseTimestamp(idx.cell(row, colEstimatedDelivery))
		if err != nil {
			return nil, skipped, &RowError{Table: tableOrders, Row: line, Column: colEstimatedDelivery, Err: err}
		}

		order := domain.Order{
			OrderID:               idx.cell(row, colOrderID),
			CustomerID:            idx.cell(row, colCustomerID),
			OrderDate:             domain.DateOf(ts),
			EstimatedDeliveryDate: estimated,
			PaymentType:           idx.cell(row, colPaymentType),
			ReviewCommentTitle:    idx.optional(row, colReviewCommentTitle),
			ReviewCommentMessage:  idx.optional(row, colReviewCommentMessage),
		}

		if v := idx.cell(row, colDeliveredCustomer); v != "" {
			delivered, err := parseTimestamp(v)
			if err != nil {
				return nil, skipped, &RowError{Table: tableOrders, Row: line, Column: colDeliveredCustomer, Err: err}
			}
			order.DeliveredCustomerDate = &delivered
		}

		if v := idx.cell(row, colPaymentValue); v != "" {
			value, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, skipped, &RowError{Table: tableOrders, Row: line, Column: colPaymentValue, Err: err}
			}
			order.PaymentValue = value
		}

		if v := idx.cell(row, colReviewScore); v != "" {
			// scores may be exported as floats ("4.0") when the column had gaps
			score, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, skipped, &RowError{Table: tableOrders, Row: line, Column: colReviewScore, Err: err}
			}
			s := int(score)
			order.ReviewScore = &s
		}

		orders = append(orders, order)
	}
	return orders, skipped, nil
}

func decodeCustomers(header []string, rows [][]string) ([]domain.Customer, error) {
	idx := indexHeader(header)
	if err := idx.require(tableCustomers, colCustomerID, colCustomerState); err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		id := idx.cell(row, colCustomerID)
		if id == "" {
			continue
		}
		customers = append(customers, domain.Customer{
			CustomerID:    id,
			CustomerState: idx.cell(row, colCustomerState),
		})
	}
	return customers, nil
}

func decodeCategories(header []string, rows [][]string) ([]domain.ProductCategoryObservation, error) {
	idx := indexHeader(header)
	if err := idx.require(tableCategories, colProductCategory, colYear); err != nil {
		return nil, err
	}

	observations := make([]domain.ProductCategoryObservation, 0, len(rows))
	for n, row := range rows {
		category := idx.cell(row, colProductCategory)
		if category == "" {
			continue
		}
		year, err := strconv.ParseFloat(idx.cell(row, colYear), 64)
		if err != nil {
			return nil, &RowError{Table: tableCategories, Row: n + 2, Column: colYear, Err: err}
		}
		observations = append(observations, domain.ProductCategoryObservation{
			ProductCategory: category,
			Year:            int(year),
		})
	}
	return observations, nil
}
