// Package cached decorates a sheet backend with a read-through,
// write-through cache.
package cached

import (
	"context"
	"log/slog"

	"tradejournal/internal/cache"
	ports "tradejournal/internal/sheets"
)

type Backend struct {
	next  ports.Backend
	cache cache.Cache[[][]string]
}

var _ ports.Backend = (*Backend)(nil)

func New(next ports.Backend, c cache.Cache[[][]string]) *Backend {
	return &Backend{next: next, cache: c}
}

func (b *Backend) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	if records, ok := b.cache.Get(name); ok {
		return ports.CloneRecords(records), nil
	}
	records, err := b.next.ReadSheet(ctx, name)
	if err != nil {
		return nil, err
	}
	b.cache.Set(name, ports.CloneRecords(records))
	return records, nil
}

func (b *Backend) WriteSheet(ctx context.Context, name string, records [][]string) error {
	if err := b.next.WriteSheet(ctx, name, records); err != nil {
		// The remote state is unknown after a failed write.
		b.cache.Delete(name)
		return err
	}
	b.cache.Set(name, ports.CloneRecords(records))
	slog.DebugContext(ctx, "Sheet cache refreshed", "sheet", name)
	return nil
}

// ListSheets is forwarded when the wrapped backend supports it.
func (b *Backend) ListSheets(ctx context.Context) ([]string, error) {
	if l, ok := b.next.(ports.SheetLister); ok {
		return l.ListSheets(ctx)
	}
	return nil, nil
}

// Invalidate forgets a cached sheet, e.g. after an out-of-band change.
func (b *Backend) Invalidate(name string) {
	b.cache.Delete(name)
}
