package xlsx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	ports "tradejournal/internal/sheets"
)

// Store reads and writes sheets of a single .xlsx file. Writes go through
// a temporary file in the same directory followed by a rename, so readers
// never observe a half-written workbook.
type Store struct {
	path string
	mu   sync.Mutex
}

var (
	_ ports.Backend     = (*Store)(nil)
	_ ports.SheetLister = (*Store)(nil)
)

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the workbook location.
func (s *Store) Path() string { return s.path }

func (s *Store) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return SheetRecords(f, name)
}

func (s *Store) ListSheets(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (s *Store) WriteSheet(ctx context.Context, name string, records [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	switch {
	case errors.Is(err, ports.ErrStoreNotFound):
		f = excelize.NewFile()
	case err != nil:
		// Never replace a workbook we could not read.
		return err
	}
	defer f.Close()

	if err := ReplaceSheet(f, name, records); err != nil {
		return err
	}
	if err := s.commit(f); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Workbook sheet written", "path", s.path, "sheet", name, "rows", len(records))
	return nil
}

func (s *Store) open() (*excelize.File, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ports.ErrStoreNotFound
		}
		return nil, fmt.Errorf("stat workbook: %w", err)
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	return f, nil
}

func (s *Store) commit(f *excelize.File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create workbook dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".journal-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("encode workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush workbook: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}
