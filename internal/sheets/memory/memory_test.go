package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	ports "tradejournal/internal/sheets"
)

func TestMemoryStoreReadWrite(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.ReadSheet(ctx, "Suivi"); !errors.Is(err, ports.ErrStoreNotFound) {
		t.Fatalf("empty store: got %v", err)
	}

	in := [][]string{{"A", "B"}, {"1", "2"}}
	if err := s.WriteSheet(ctx, "Suivi", in); err != nil {
		t.Fatalf("write: %v", err)
	}
	in[1][0] = "mutated"

	got, err := s.ReadSheet(ctx, "Suivi")
	if err != nil || got[1][0] != "1" {
		t.Fatalf("read = %v, %v", got, err)
	}
	got[0][0] = "mutated"
	again, _ := s.ReadSheet(ctx, "Suivi")
	if again[0][0] != "A" {
		t.Fatalf("store leaked its slices")
	}

	if _, err := s.ReadSheet(ctx, "Matrice"); !errors.Is(err, ports.ErrSheetNotFound) {
		t.Fatalf("missing sheet: got %v", err)
	}
	if err := s.WriteSheet(ctx, " ", nil); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestListSheetsKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, n := range []string{"b", "a", "b", "c"} {
		_ = s.WriteSheet(ctx, n, [][]string{{"x"}})
	}
	names, _ := s.ListSheets(ctx)
	if len(names) != 3 || names[0] != "b" || names[1] != "a" || names[2] != "c" {
		t.Fatalf("names = %v", names)
	}
}

func TestNewFromDirSeeds(t *testing.T) {
	dir := t.TempDir()
	// No files -> empty store
	s, err := NewFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if names, _ := s.ListSheets(context.Background()); len(names) != 0 {
		t.Fatalf("expected no sheets, got %v", names)
	}

	content := "# seeded\nCritère,Statut\nRevenu,✅\n"
	if err := os.WriteFile(filepath.Join(dir, "Matrice.csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err = NewFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadSheet(context.Background(), "Matrice")
	if err != nil || len(got) != 2 || got[1][1] != "✅" {
		t.Fatalf("seeded = %v, %v", got, err)
	}
}
