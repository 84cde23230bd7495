package sheets

import (
	"context"
	"errors"
)

var (
	// ErrStoreNotFound is returned when the backing workbook or file does
	// not exist yet.
	ErrStoreNotFound = errors.New("store not found")
	// ErrSheetNotFound is returned when the store exists but has no sheet
	// with the requested name.
	ErrSheetNotFound = errors.New("sheet not found")
)

// Ports for outbound adapters. Sheets are exchanged as raw records: the
// first record is the header row, every value is the cell's text.
type (
	SheetReader interface {
		// ReadSheet returns every record of the named sheet.
		ReadSheet(ctx context.Context, name string) ([][]string, error)
	}

	SheetWriter interface {
		// WriteSheet replaces the named sheet with records, creating the
		// store and the sheet when needed. A failed write leaves the
		// previous content in place.
		WriteSheet(ctx context.Context, name string, records [][]string) error
	}

	// SheetLister enumerates sheet names in store order.
	SheetLister interface {
		ListSheets(ctx context.Context) ([]string, error)
	}

	Backend interface {
		SheetReader
		SheetWriter
	}
)

// IsMissing reports whether err means the sheet has never been written.
func IsMissing(err error) bool {
	return errors.Is(err, ErrStoreNotFound) || errors.Is(err, ErrSheetNotFound)
}

// CloneRecords returns a deep copy of records.
func CloneRecords(records [][]string) [][]string {
	if records == nil {
		return nil
	}
	out := make([][]string, len(records))
	for i, r := range records {
		out[i] = append([]string(nil), r...)
	}
	return out
}
