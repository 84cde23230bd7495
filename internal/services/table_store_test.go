package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"

	"tradejournal/internal/core"
	"tradejournal/internal/sheets"
	"tradejournal/internal/sheets/memory"
)

// flakyBackend wraps a memory store and fails on demand.
type flakyBackend struct {
	*memory.Store
	readErr  map[string]error
	writeErr map[string]error
	writes   []string
}

func newFlaky() *flakyBackend {
	return &flakyBackend{Store: memory.New(), readErr: map[string]error{}, writeErr: map[string]error{}}
}

func (f *flakyBackend) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	if err := f.readErr[name]; err != nil {
		return nil, err
	}
	return f.Store.ReadSheet(ctx, name)
}

func (f *flakyBackend) WriteSheet(ctx context.Context, name string, records [][]string) error {
	if err := f.writeErr[name]; err != nil {
		return err
	}
	f.writes = append(f.writes, name)
	return f.Store.WriteSheet(ctx, name, records)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *recordingNotifier) NotifySheetSaved(_ context.Context, sheet string, rows int, withHistory bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, fmt.Sprintf("%s:%d:%v", sheet, rows, withHistory))
	return n.err
}

func matrice(statuses ...string) core.Table {
	rows := make([][]string, len(statuses))
	for i, s := range statuses {
		rows[i] = []string{fmt.Sprintf("critère %d", i+1), s}
	}
	return core.NewTable([]core.Column{core.Text("Critère"), core.Option("Statut", core.Done, core.NotDone)}, rows)
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestLoadCreatesMissingSheetOnce(t *testing.T) {
	ctx := context.Background()
	b := newFlaky()
	s := NewTableStore(b)
	def := matrice(core.NotDone, core.NotDone)

	first := s.Load(ctx, "Matrice", def)
	if first.Origin != OriginCreated || !sheets.IsMissing(first.Err) {
		t.Fatalf("first load = %v, %v", first.Origin, first.Err)
	}
	second := s.Load(ctx, "Matrice", def)
	if second.Origin != OriginLoaded || second.Err != nil {
		t.Fatalf("second load = %v, %v", second.Origin, second.Err)
	}
	if len(b.writes) != 1 {
		t.Fatalf("writes = %v, want exactly one default write", b.writes)
	}
	if got, want := second.Table.Records(), def.Records(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("loaded %v, want %v", got, want)
	}
}

func TestLoadFallsBackWithoutWriting(t *testing.T) {
	ctx := context.Background()
	b := newFlaky()
	_ = b.Store.WriteSheet(ctx, "Matrice", [][]string{{"Critère", "Statut"}, {"x", core.Done}})
	b.readErr["Matrice"] = errors.New("zip: not a valid zip file")
	s := NewTableStore(b)

	res := s.Load(ctx, "Matrice", matrice(core.NotDone))
	if res.Origin != OriginDefault || res.Err == nil {
		t.Fatalf("load = %v, %v", res.Origin, res.Err)
	}
	if len(b.writes) != 0 {
		t.Fatalf("corrupt store must not be overwritten, writes=%v", b.writes)
	}
	if res.Table.Cell(0, "Statut").String() != core.NotDone {
		t.Fatalf("expected default table")
	}
}

func TestLoadDefaultWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	b := newFlaky()
	b.writeErr["Matrice"] = errors.New("disk full")
	res := NewTableStore(b).Load(ctx, "Matrice", matrice(core.NotDone))
	if res.Origin != OriginDefault || res.Err == nil {
		t.Fatalf("load = %v, %v", res.Origin, res.Err)
	}
}

func TestLoadEmptySheetUsesDefault(t *testing.T) {
	ctx := context.Background()
	b := newFlaky()
	_ = b.Store.WriteSheet(ctx, "Matrice", [][]string{})
	res := NewTableStore(b).Load(ctx, "Matrice", matrice(core.NotDone))
	if res.Origin != OriginDefault || len(res.Table.Rows) != 1 {
		t.Fatalf("load = %v rows=%d", res.Origin, len(res.Table.Rows))
	}
}

func TestLoadReconcilesMissingColumns(t *testing.T) {
	ctx := context.Background()
	b := newFlaky()
	_ = b.Store.WriteSheet(ctx, "Matrice", [][]string{{"Critère", "Extra"}, {"a", "keep"}})
	res := NewTableStore(b).Load(ctx, "Matrice", matrice(core.NotDone))
	if res.Origin != OriginLoaded {
		t.Fatalf("origin = %v (%v)", res.Origin, res.Err)
	}
	names := res.Table.Names()
	if fmt.Sprint(names) != "[Critère Extra Statut]" {
		t.Fatalf("columns = %v", names)
	}
	if res.Table.Cell(0, "Extra").String() != "keep" || !res.Table.Cell(0, "Statut").IsEmpty() {
		t.Fatalf("row = %v", res.Table.Records()[1])
	}
}

func TestSaveWithHistoryAppends(t *testing.T) {
	ctx := context.Background()
	b := newFlaky()
	n := &recordingNotifier{}
	at := time.Date(2024, 5, 1, 14, 3, 22, 0, time.Local)
	s := NewTableStore(b, WithClock(fixedClock(at)), WithNotifier(n))

	if err := s.SaveWithHistory(ctx, matrice(core.Done, core.NotDone), "Matrice"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveWithHistory(ctx, matrice(core.Done, core.Done), "Matrice"); err != nil {
		t.Fatal(err)
	}

	hist, err := s.History(ctx, "Matrice", matrice().Columns)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist.Rows) != 4 {
		t.Fatalf("history rows = %d, want 4", len(hist.Rows))
	}
	if hist.Cell(1, "Statut").String() != core.NotDone || hist.Cell(3, "Statut").String() != core.Done {
		t.Fatalf("history = %v", hist.Records())
	}
	if hist.Cell(0, core.TimestampColumn).String() != "2024-05-01 14:03:22" {
		t.Fatalf("timestamp = %q", hist.Cell(0, core.TimestampColumn))
	}
	if len(n.calls) != 2 || n.calls[0] != "Matrice:2:true" {
		t.Fatalf("notifications = %v", n.calls)
	}
}

func TestSaveWithHistoryTreatsUnreadableHistoryAsEmpty(t *testing.T) {
	ctx := context.Background()
	b := newFlaky()
	b.readErr["Matrice_Historique"] = errors.New("bad range")
	s := NewTableStore(b)
	if err := s.SaveWithHistory(ctx, matrice(core.Done), "Matrice"); err != nil {
		t.Fatal(err)
	}
	delete(b.readErr, "Matrice_Historique")
	hist, _ := s.History(ctx, "Matrice", matrice().Columns)
	if len(hist.Rows) != 1 {
		t.Fatalf("history rows = %d", len(hist.Rows))
	}
}

func TestSaveSurfacesWriteErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("permission denied")
	n := &recordingNotifier{}

	b := newFlaky()
	b.writeErr["Matrice"] = boom
	s := NewTableStore(b, WithNotifier(n))
	if err := s.Save(ctx, matrice(core.Done), "Matrice"); !errors.Is(err, boom) {
		t.Fatalf("Save err = %v", err)
	}
	if err := s.SaveWithHistory(ctx, matrice(core.Done), "Matrice"); !errors.Is(err, boom) {
		t.Fatalf("SaveWithHistory err = %v", err)
	}

	b = newFlaky()
	b.writeErr["Matrice_Historique"] = boom
	s = NewTableStore(b, WithNotifier(n))
	if err := s.SaveWithHistory(ctx, matrice(core.Done), "Matrice"); !errors.Is(err, boom) {
		t.Fatalf("history write err = %v", err)
	}
	if len(n.calls) != 0 {
		t.Fatalf("failed saves must not notify: %v", n.calls)
	}
}

func TestNotifierFailureIsNotFatal(t *testing.T) {
	n := &recordingNotifier{err: errors.New("broker down")}
	s := NewTableStore(memory.New(), WithNotifier(n))
	if err := s.Save(context.Background(), matrice(core.Done), "Matrice"); err != nil {
		t.Fatalf("Save = %v", err)
	}
}

func TestHistoryIsAppendOnly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s := NewTableStore(memory.New(), WithClock(fixedClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local))))
		status := rapid.SampledFrom([]string{core.Done, core.NotDone})

		var prev [][]string
		total := 0
		saves := rapid.IntRange(1, 5).Draw(t, "saves")
		for i := 0; i < saves; i++ {
			statuses := rapid.SliceOfN(status, 1, 4).Draw(t, fmt.Sprintf("statuses%d", i))
			if err := s.SaveWithHistory(ctx, matrice(statuses...), "Matrice"); err != nil {
				t.Fatal(err)
			}
			total += len(statuses)

			hist, err := s.History(ctx, "Matrice", matrice().Columns)
			if err != nil {
				t.Fatal(err)
			}
			if len(hist.Rows) != total {
				t.Fatalf("history rows = %d, want %d", len(hist.Rows), total)
			}
			records := hist.Records()[1:]
			for r := range prev {
				if fmt.Sprint(records[r]) != fmt.Sprint(prev[r]) {
					t.Fatalf("history row %d changed: %v -> %v", r, prev[r], records[r])
				}
			}
			prev = records
		}
	})
}

func TestDefaultCreationIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		b := newFlaky()
		s := NewTableStore(b)
		def := matrice(rapid.SliceOfN(rapid.SampledFrom([]string{core.Done, core.NotDone}), 1, 6).Draw(t, "statuses")...)
		loads := rapid.IntRange(1, 4).Draw(t, "loads")
		for i := 0; i < loads; i++ {
			res := s.Load(ctx, "Matrice", def)
			if fmt.Sprint(res.Table.Records()) != fmt.Sprint(def.Records()) {
				t.Fatalf("load %d = %v", i, res.Table.Records())
			}
		}
		if len(b.writes) != 1 {
			t.Fatalf("writes = %d", len(b.writes))
		}
	})
}
