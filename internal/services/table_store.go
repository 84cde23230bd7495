package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tradejournal/internal/core"
	"tradejournal/internal/sheets"
)

// Origin tells where a loaded table came from.
type Origin int

const (
	// OriginLoaded means the sheet was read from the store.
	OriginLoaded Origin = iota
	// OriginCreated means the sheet was missing and the default was
	// written in its place.
	OriginCreated
	// OriginDefault means the default is returned without being saved,
	// because the store could not be read or the sheet was empty.
	OriginDefault
)

func (o Origin) String() string {
	switch o {
	case OriginLoaded:
		return "loaded"
	case OriginCreated:
		return "created"
	default:
		return "default"
	}
}

// LoadResult is the outcome of TableStore.Load. Table is always usable;
// Err keeps the cause when Origin is not OriginLoaded.
type LoadResult struct {
	Table  core.Table
	Origin Origin
	Err    error
}

// Notifier is told about successful saves.
type Notifier interface {
	NotifySheetSaved(ctx context.Context, sheet string, rows int, withHistory bool) error
}

// TableStore runs the load / save / save-with-history cycle shared by
// every page on top of a sheet backend.
type TableStore struct {
	backend  sheets.Backend
	notifier Notifier
	now      func() time.Time

	// mu serialises history read-append-write cycles.
	mu sync.Mutex
}

type TableStoreOption func(*TableStore)

func WithNotifier(n Notifier) TableStoreOption {
	return func(s *TableStore) { s.notifier = n }
}

func WithClock(now func() time.Time) TableStoreOption {
	return func(s *TableStore) { s.now = now }
}

func NewTableStore(backend sheets.Backend, opts ...TableStoreOption) *TableStore {
	s := &TableStore{backend: backend, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Backend returns the underlying sheet backend.
func (s *TableStore) Backend() sheets.Backend { return s.backend }

// Load reads sheet and reconciles it with def. It never fails: when the
// sheet cannot be used, def is returned and the reason kept in Err.
func (s *TableStore) Load(ctx context.Context, sheet string, def core.Table) LoadResult {
	records, err := s.backend.ReadSheet(ctx, sheet)
	switch {
	case sheets.IsMissing(err):
		if werr := s.backend.WriteSheet(ctx, sheet, def.Records()); werr != nil {
			slog.WarnContext(ctx, "Could not persist default sheet", "sheet", sheet, "error", werr)
			return LoadResult{Table: def.Clone(), Origin: OriginDefault, Err: fmt.Errorf("persist default %s: %w", sheet, werr)}
		}
		slog.InfoContext(ctx, "Default sheet created", "sheet", sheet, "rows", len(def.Rows))
		return LoadResult{Table: def.Clone(), Origin: OriginCreated, Err: err}
	case err != nil:
		slog.WarnContext(ctx, "Sheet unreadable, using defaults", "sheet", sheet, "error", err)
		return LoadResult{Table: def.Clone(), Origin: OriginDefault, Err: fmt.Errorf("read %s: %w", sheet, err)}
	}

	t := core.FromRecords(records, def.Columns)
	if len(t.Columns) == 0 {
		slog.WarnContext(ctx, "Sheet is empty, using defaults", "sheet", sheet)
		return LoadResult{Table: def.Clone(), Origin: OriginDefault, Err: fmt.Errorf("sheet %s has no header", sheet)}
	}
	return LoadResult{Table: core.Reconcile(t, def), Origin: OriginLoaded}
}

// Save replaces sheet with t.
func (s *TableStore) Save(ctx context.Context, t core.Table, sheet string) error {
	if err := s.write(ctx, t, sheet); err != nil {
		return err
	}
	s.notify(ctx, sheet, len(t.Rows), false)
	return nil
}

// SaveWithHistory saves t and appends a timestamped copy of every row to
// the sheet's history. The history is never rewritten, only extended.
func (s *TableStore) SaveWithHistory(ctx context.Context, t core.Table, sheet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(ctx, t, sheet); err != nil {
		return err
	}

	hist := core.HistorySheet(sheet)
	var existing core.Table
	records, err := s.backend.ReadSheet(ctx, hist)
	switch {
	case err == nil:
		existing = core.FromRecords(records, core.HistoryColumns(t.Columns))
	case sheets.IsMissing(err):
	default:
		slog.WarnContext(ctx, "History unreadable, starting a new one", "sheet", hist, "error", err)
	}

	merged := core.AppendHistory(existing, core.Stamp(t, s.now()))
	if err := s.write(ctx, merged, hist); err != nil {
		return err
	}
	s.notify(ctx, sheet, len(t.Rows), true)
	return nil
}

// History returns the history of sheet, or an empty table when there is
// none yet.
func (s *TableStore) History(ctx context.Context, sheet string, cols []core.Column) (core.Table, error) {
	hcols := core.HistoryColumns(cols)
	records, err := s.backend.ReadSheet(ctx, core.HistorySheet(sheet))
	if sheets.IsMissing(err) {
		return core.Table{Columns: hcols}, nil
	}
	if err != nil {
		return core.Table{}, fmt.Errorf("read history of %s: %w", sheet, err)
	}
	return core.FromRecords(records, hcols), nil
}

func (s *TableStore) write(ctx context.Context, t core.Table, sheet string) error {
	if err := s.backend.WriteSheet(ctx, sheet, t.Records()); err != nil {
		slog.ErrorContext(ctx, "Sheet write failed", "sheet", sheet, "error", err)
		return fmt.Errorf("write %s: %w", sheet, err)
	}
	return nil
}

func (s *TableStore) notify(ctx context.Context, sheet string, rows int, withHistory bool) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifySheetSaved(ctx, sheet, rows, withHistory); err != nil {
		slog.WarnContext(ctx, "Failed to publish sheet saved message", "sheet", sheet, "error", err)
	}
}
