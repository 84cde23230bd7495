package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tradejournal/internal/core"
)

func TestDayDir(t *testing.T) {
	at := time.Date(2024, 1, 5, 10, 0, 0, 0, time.Local)
	want := filepath.Join("2024", "01", "week_01", "05-01-2024")
	if got := DayDir(at); got != want {
		t.Fatalf("DayDir = %q, want %q", got, want)
	}
}

func TestFicheNumberingAndLookup(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	a := NewFicheArchive(root)
	a.now = fixedClock(time.Date(2024, 5, 1, 18, 0, 0, 0, time.Local))

	for i, propos := range []string{"premier", "deuxième", "troisième"} {
		ref, err := a.Create(ctx, core.FicheEntry{Date: "2024-05-01", Propos: propos}, nil)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if ref.Seq != i+1 {
			t.Fatalf("seq = %d, want %d", ref.Seq, i+1)
		}
	}

	refs, err := a.FindByDate(ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 3 {
		t.Fatalf("found %d fiches", len(refs))
	}
	if refs[0].Seq != 3 || refs[2].Seq != 1 || refs[0].Entry.Propos != "troisième" {
		t.Fatalf("order = %d,%d,%d", refs[0].Seq, refs[1].Seq, refs[2].Seq)
	}

	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(refs[0].Dir), "fiche_3.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "\n    \"date\": \"2024-05-01\"") || !strings.Contains(string(raw), "troisième") {
		t.Fatalf("unexpected document:\n%s", raw)
	}
}

func TestFicheSequenceSortsNumerically(t *testing.T) {
	refs := []FicheRef{
		{Dir: "2024/05/week_18/01-05-2024/fiche_9"},
		{Dir: "2024/05/week_18/01-05-2024/fiche_10"},
		{Dir: "2023/12/week_52/30-12-2023/fiche_1"},
		{Dir: "2024/05/week_18/02-05-2024/fiche_1"},
	}
	for i := range refs {
		refs[i].key = keyFromPath(refs[i].Dir)
	}
	SortFiches(refs)
	want := []string{
		"2024/05/week_18/02-05-2024/fiche_1",
		"2024/05/week_18/01-05-2024/fiche_10",
		"2024/05/week_18/01-05-2024/fiche_9",
		"2023/12/week_52/30-12-2023/fiche_1",
	}
	for i, w := range want {
		if refs[i].Dir != w {
			t.Fatalf("position %d = %s, want %s", i, refs[i].Dir, w)
		}
	}
}

func TestFindByDateSkipsBadRecords(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("2024/01/week_01/05-01-2024/fiche_1/fiche_1.json", `{"date": "05/01/2024", "propos": "ok"}`)
	write("2024/01/week_01/05-01-2024/fiche_2/fiche_2.json", `{"date": "", "propos": "no date"}`)
	write("2024/01/week_01/05-01-2024/fiche_3/fiche_3.json", `not json`)
	write("2024/01/week_01/05-01-2024/fiche_4/fiche_4.json", ``)
	write("2024/01/week_01/05-01-2024/fiche_5/fiche_5.json", `{"date": "yesterday"}`)
	write("2024/01/week_01/06-01-2024/fiche_1/fiche_1.json", `{"date": "2024-01-06"}`)

	refs, err := NewFicheArchive(root).FindByDate(ctx, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].Entry.Propos != "ok" {
		t.Fatalf("refs = %+v", refs)
	}
}

func TestFindByDateOnMissingRoot(t *testing.T) {
	refs, err := NewFicheArchive(filepath.Join(t.TempDir(), "absent")).FindByDate(context.Background(), time.Now())
	if err != nil || len(refs) != 0 {
		t.Fatalf("refs = %v, err = %v", refs, err)
	}
}

func TestFicheImage(t *testing.T) {
	ctx := context.Background()
	a := NewFicheArchive(t.TempDir())
	ref, err := a.Create(ctx, core.FicheEntry{Date: "2024-05-01", Constat: "x"}, strings.NewReader("PNG"))
	if err != nil {
		t.Fatal(err)
	}
	if !ref.HasImage {
		t.Fatal("expected image")
	}
	f, err := a.OpenImage(ref.ImagePath())
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	if _, err := a.OpenImage("../../etc/passwd"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("traversal err = %v", err)
	}
	if _, err := a.Create(ctx, core.FicheEntry{Date: "2024-05-01"}, nil); !errors.Is(err, core.ErrEmptyFiche) {
		t.Fatalf("empty fiche err = %v", err)
	}
	if _, err := a.Create(ctx, core.FicheEntry{Date: "demain", Constat: "x"}, nil); !errors.Is(err, core.ErrInvalidFicheDate) {
		t.Fatalf("unparsable date err = %v", err)
	}
}
