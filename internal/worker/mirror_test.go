package worker

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"tradejournal/internal/amqp"
	"tradejournal/internal/sheets"
	"tradejournal/internal/sheets/memory"
)

var matrice = [][]string{{"Critère", "Statut"}, {"Plan écrit", "✅"}}

// readOnly hides ListSheets so the mirror falls back to the catalog.
type readOnly struct{ sheets.SheetReader }

type failingWriter struct {
	mu     sync.Mutex
	failOn string
	got    []string
}

func (w *failingWriter) WriteSheet(_ context.Context, name string, _ [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if name == w.failOn {
		return errors.New("quota exceeded")
	}
	w.got = append(w.got, name)
	return nil
}

func seed(t *testing.T, sheetsByName map[string][][]string) *memory.Store {
	t.Helper()
	src := memory.New()
	for name, rec := range sheetsByName {
		if err := src.WriteSheet(context.Background(), name, rec); err != nil {
			t.Fatal(err)
		}
	}
	return src
}

func TestHandleSheetSaved(t *testing.T) {
	ctx := context.Background()
	src := seed(t, map[string][][]string{
		"Matrice":            matrice,
		"Matrice_Historique": {{"Critère", "Statut", "Horodatage"}},
	})
	dst := memory.New()
	m := NewMirror(src, dst, 2)

	if err := m.HandleSheetSaved(ctx, amqp.NewSheetSavedMessage("Matrice", 1, true)); err != nil {
		t.Fatal(err)
	}
	got, err := dst.ReadSheet(ctx, "Matrice")
	if err != nil || !reflect.DeepEqual(got, matrice) {
		t.Fatalf("mirrored = %v, %v", got, err)
	}
	if _, err := dst.ReadSheet(ctx, "Matrice_Historique"); err != nil {
		t.Fatalf("history not mirrored: %v", err)
	}
}

func TestHandleSheetSavedWithoutHistory(t *testing.T) {
	ctx := context.Background()
	src := seed(t, map[string][][]string{"Matrice": matrice})
	dst := memory.New()
	if err := NewMirror(src, dst, 1).HandleSheetSaved(ctx, amqp.NewSheetSavedMessage("Matrice", 1, false)); err != nil {
		t.Fatal(err)
	}
	names, _ := dst.ListSheets(ctx)
	if !reflect.DeepEqual(names, []string{"Matrice"}) {
		t.Fatalf("target sheets = %v", names)
	}
}

func TestHandleSheetSavedSurfacesWriteErrors(t *testing.T) {
	src := seed(t, map[string][][]string{"Matrice": matrice})
	w := &failingWriter{failOn: "Matrice"}
	err := NewMirror(src, w, 1).HandleSheetSaved(context.Background(), amqp.NewSheetSavedMessage("Matrice", 1, false))
	if err == nil {
		t.Fatal("expected the write error so the message is requeued")
	}
}

func TestMirrorAllUsesLister(t *testing.T) {
	src := seed(t, map[string][][]string{
		"Matrice":    matrice,
		"Suivi":      {{"Indicateur"}},
		"Discipline": {{"Date"}},
	})
	dst := memory.New()
	n, err := NewMirror(src, dst, 2).MirrorAll(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("MirrorAll = %d, %v", n, err)
	}
}

func TestMirrorAllFallsBackToCatalog(t *testing.T) {
	src := seed(t, map[string][][]string{
		"Matrice":  matrice,
		"Unlisted": {{"x"}},
	})
	w := &failingWriter{}
	n, err := NewMirror(readOnly{src}, w, 4).MirrorAll(context.Background())
	if err != nil || n != 1 || !reflect.DeepEqual(w.got, []string{"Matrice"}) {
		t.Fatalf("MirrorAll = %d, %v, wrote %v", n, err, w.got)
	}
}

func TestMirrorAllEmptySource(t *testing.T) {
	n, err := NewMirror(memory.New(), memory.New(), 2).MirrorAll(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("MirrorAll on empty source = %d, %v", n, err)
	}
}

func TestMirrorAllReportsFailure(t *testing.T) {
	src := seed(t, map[string][][]string{"Matrice": matrice})
	_, err := NewMirror(src, &failingWriter{failOn: "Matrice"}, 2).MirrorAll(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
}
