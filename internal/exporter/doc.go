// Package exporter writes aggregate tables to files and HTTP responses.
//
// Every table is first flattened into a Sheet (headers plus string cells) by
// TableSheet or DashboardSheets. Sheets are then rendered by:
//
// CSVWriter: BOM-prefixed CSV, one document per sheet.
//
// WorkbookWriter: a single XLSX workbook with one worksheet per sheet.
//
// Reporter: full dashboard exports in csv, json or xlsx format.
//
// Example usage:
//
//	reporter := exporter.NewReporter(logger)
//	files, err := reporter.Export(exporter.FormatXLSX, "reports", dashboard, lateOrders)
package exporter
