// Package dataprocessing loads the e-commerce records into a store.Store.
//
// # Sources
//
// Three sources share one header-driven decoder:
//
//	CSVSource       order_details.csv, customers.csv, order_prod_category.csv in a directory
//	WorkbookSource  an XLSX workbook with orders, customers and product_categories sheets
//	PostgresSource  the orders, customers and product_categories tables
//
// Columns are located by header name, so their order does not matter. A UTF-8
// BOM or zero-width characters in front of a header are ignored.
//
// # Orders
//
// order_date is derived from order_approved_at, truncated to the calendar day.
// A source that already carries an order_date column is accepted as well. Rows
// without an approval timestamp are skipped and reported in LoadStats; any
// other malformed cell fails the load with a *RowError naming the row and column.
//
// Empty optional cells (delivery date, review score, comment title and message)
// become absent values.
//
// # Usage
//
//	src, err := dataprocessing.NewSource(dataprocessing.SourceOptions{Format: "csv", Dir: "data"}, logger)
//	if err != nil {
//	    return err
//	}
//	st, stats, err := src.Load(ctx)
package dataprocessing
