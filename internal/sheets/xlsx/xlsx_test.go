package xlsx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	ports "tradejournal/internal/sheets"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "nested", "journal.xlsx"))

	if _, err := s.ReadSheet(ctx, "Suivi"); !errors.Is(err, ports.ErrStoreNotFound) {
		t.Fatalf("missing workbook: got %v", err)
	}

	in := [][]string{{"Critère", "Statut"}, {"Revenu net", "✅"}, {"Runway", "❌"}}
	if err := s.WriteSheet(ctx, "Matrice", in); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.ReadSheet(ctx, "Matrice")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 || got[1][0] != "Revenu net" || got[2][1] != "❌" {
		t.Fatalf("records = %v", got)
	}

	names, _ := s.ListSheets(ctx)
	if len(names) != 1 || names[0] != "Matrice" {
		t.Fatalf("sheets = %v, want only Matrice", names)
	}
	if _, err := s.ReadSheet(ctx, "Suivi"); !errors.Is(err, ports.ErrSheetNotFound) {
		t.Fatalf("missing sheet: got %v", err)
	}
}

func TestStoreReplaceShrinksSheet(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "journal.xlsx"))
	_ = s.WriteSheet(ctx, "Journal_Mensuel", [][]string{{"Mois"}, {"1"}, {"2"}, {"3"}})
	_ = s.WriteSheet(ctx, "Suivi", [][]string{{"Indicateur"}, {"x"}})
	if err := s.WriteSheet(ctx, "Journal_Mensuel", [][]string{{"Mois"}, {"9"}}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.ReadSheet(ctx, "Journal_Mensuel")
	if len(got) != 2 || got[1][0] != "9" {
		t.Fatalf("records = %v", got)
	}
	other, _ := s.ReadSheet(ctx, "Suivi")
	if len(other) != 2 {
		t.Fatalf("unrelated sheet changed: %v", other)
	}
}

func TestStoreRefusesToOverwriteCorruptWorkbook(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.xlsx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(path)
	if _, err := s.ReadSheet(ctx, "Suivi"); err == nil || ports.IsMissing(err) {
		t.Fatalf("corrupt workbook must fail loudly, got %v", err)
	}
	if err := s.WriteSheet(ctx, "Suivi", [][]string{{"a"}}); err == nil {
		t.Fatalf("expected write to fail on corrupt workbook")
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "not a zip" {
		t.Fatalf("corrupt workbook was replaced")
	}
}

func TestStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "journal.xlsx"))
	for i := 0; i < 3; i++ {
		if err := s.WriteSheet(context.Background(), "Suivi", [][]string{{"a"}, {"b"}}); err != nil {
			t.Fatal(err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("dir entries = %d, want 1", len(entries))
	}
}
