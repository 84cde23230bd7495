package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"tradejournal/internal/amqp"
	"tradejournal/internal/core"
	"tradejournal/internal/pages"
	"tradejournal/internal/sheets"
)

// Mirror copies sheets from the primary backend to a secondary one,
// typically the Google spreadsheet.
type Mirror struct {
	source      sheets.SheetReader
	target      sheets.SheetWriter
	concurrency int
}

func NewMirror(source sheets.SheetReader, target sheets.SheetWriter, concurrency int) *Mirror {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Mirror{source: source, target: target, concurrency: concurrency}
}

// HandleSheetSaved copies the sheet named by msg and, when the save also
// appended history, its history sheet.
func (m *Mirror) HandleSheetSaved(ctx context.Context, msg *amqp.SheetSavedMessage) error {
	slog.InfoContext(ctx, "Mirroring sheet",
		"id", msg.ID,
		"sheet", msg.Sheet,
		"with_history", msg.WithHistory)

	if _, err := m.copySheet(ctx, msg.Sheet); err != nil {
		return err
	}
	if msg.WithHistory {
		if _, err := m.copySheet(ctx, core.HistorySheet(msg.Sheet)); err != nil {
			return err
		}
	}
	return nil
}

// MirrorAll copies every known sheet and history sheet. Sheets missing
// from the source are skipped. It returns the number of sheets copied and
// the first error encountered.
func (m *Mirror) MirrorAll(ctx context.Context) (int, error) {
	names, err := m.sheetNames(ctx)
	if err != nil {
		return 0, err
	}

	var copied atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, name := range names {
		g.Go(func() error {
			ok, err := m.copySheet(ctx, name)
			if ok {
				copied.Add(1)
			}
			return err
		})
	}
	err = g.Wait()

	slog.InfoContext(ctx, "Startup mirror completed",
		"candidates", len(names),
		"copied", copied.Load())
	return int(copied.Load()), err
}

func (m *Mirror) sheetNames(ctx context.Context) ([]string, error) {
	if lister, ok := m.source.(sheets.SheetLister); ok {
		names, err := lister.ListSheets(ctx)
		if err == nil {
			return names, nil
		}
		if !errors.Is(err, sheets.ErrStoreNotFound) {
			return nil, fmt.Errorf("list source sheets: %w", err)
		}
		return nil, nil
	}

	var names []string
	for _, s := range pages.Sheets() {
		names = append(names, s, core.HistorySheet(s))
	}
	return names, nil
}

func (m *Mirror) copySheet(ctx context.Context, name string) (bool, error) {
	records, err := m.source.ReadSheet(ctx, name)
	if sheets.IsMissing(err) {
		slog.DebugContext(ctx, "Sheet absent from source, skipping", "sheet", name)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := m.target.WriteSheet(ctx, name, records); err != nil {
		return false, fmt.Errorf("mirror %s: %w", name, err)
	}
	slog.InfoContext(ctx, "Sheet mirrored", "sheet", name, "rows", len(records))
	return true, nil
}
