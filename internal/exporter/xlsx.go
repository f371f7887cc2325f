package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet every new excelize workbook starts with
const defaultSheet = "Sheet1"

// WorkbookWriter renders sheets into a single XLSX workbook
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	return &WorkbookWriter{logger: logger.With(slog.String("component", "xlsx_writer"))}
}

// build lays out one worksheet per sheet with a bold, frozen header row
func (x *WorkbookWriter) build(sheets []Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}

		if err := writeRows(f, sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}

		if len(sheet.Headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
			if err := f.SetCellStyle(sheet.Name, "A1", last, bold); err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetPanes(sheet.Name, &excelize.Panes{
				Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
			}); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet Sheet) error {
	row := 1
	if len(sheet.Headers) > 0 {
		if err := setRow(f, sheet.Name, row, sheet.Headers); err != nil {
			return err
		}
		row++
	}
	for _, record := range sheet.Rows {
		if err := setRow(f, sheet.Name, row, record); err != nil {
			return err
		}
		row++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// Write streams the workbook to w
func (x *WorkbookWriter) Write(w io.Writer, sheets []Sheet) error {
	f, err := x.build(sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

// Save writes the workbook to path, creating parent directories
func (x *WorkbookWriter) Save(path string, sheets []Sheet) error {
	x.logger.Info("Writing XLSX workbook",
		slog.String("file_path", path),
		slog.Int("sheet_count", len(sheets)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := x.build(sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.SaveAs(path)
}
