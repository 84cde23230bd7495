// Package xlsx stores journal sheets in a local Excel workbook.
package xlsx

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	ports "tradejournal/internal/sheets"
)

const (
	defaultSheet = "Sheet1"
	scratchSheet = "journal~tmp"
)

// SheetRecords returns every row of the named sheet. Trailing empty cells
// are trimmed by excelize, so rows may be shorter than the header.
func SheetRecords(f *excelize.File, name string) ([][]string, error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return nil, fmt.Errorf("sheet index %q: %w", name, err)
	}
	if idx < 0 {
		return nil, ports.ErrSheetNotFound
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read rows %q: %w", name, err)
	}
	return rows, nil
}

// ReplaceSheet swaps the content of name for records. The rows are first
// written to a scratch sheet which then takes the place of the old one.
func ReplaceSheet(f *excelize.File, name string, records [][]string) error {
	if name == "" {
		return errors.New("empty sheet name")
	}
	if idx, _ := f.GetSheetIndex(scratchSheet); idx >= 0 {
		if err := f.DeleteSheet(scratchSheet); err != nil {
			return fmt.Errorf("drop scratch sheet: %w", err)
		}
	}
	if _, err := f.NewSheet(scratchSheet); err != nil {
		return fmt.Errorf("create scratch sheet: %w", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		if err := f.SetSheetRow(scratchSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+1, name, err)
		}
	}
	if idx, _ := f.GetSheetIndex(name); idx >= 0 {
		if err := f.DeleteSheet(name); err != nil {
			return fmt.Errorf("drop sheet %q: %w", name, err)
		}
	}
	if err := f.SetSheetName(scratchSheet, name); err != nil {
		return fmt.Errorf("rename scratch sheet to %q: %w", name, err)
	}
	// Workbooks created from scratch carry an empty default sheet.
	if name != defaultSheet {
		if idx, _ := f.GetSheetIndex(defaultSheet); idx >= 0 {
			if rows, err := f.GetRows(defaultSheet); err == nil && len(rows) == 0 {
				if err := f.DeleteSheet(defaultSheet); err != nil {
					return fmt.Errorf("drop default sheet: %w", err)
				}
			}
		}
	}
	if idx, _ := f.GetSheetIndex(name); idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return nil
}
