package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tradejournal/internal/config"
	"tradejournal/internal/sheets"
	"tradejournal/internal/sheets/memory"
)

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	seeds := filepath.Join(dir, "seeds")
	if err := os.MkdirAll(seeds, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(seeds, "Matrice.csv"), []byte("Critère,Statut\nPlan,✅\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		config Config
	}{
		{"xlsx", Config{Type: XLSXBackend, WorkbookPath: filepath.Join(dir, "journal.xlsx")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "journal.db")}},
		{"memory", Config{Type: MemoryBackend, SeedDir: seeds}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer res.Close()

			records := [][]string{{"Critère", "Statut"}, {"Plan", "❌"}}
			if err := res.Backend.WriteSheet(ctx, "Matrice", records); err != nil {
				t.Fatalf("WriteSheet() error = %v", err)
			}
			got, err := res.Backend.ReadSheet(ctx, "Matrice")
			if err != nil || len(got) != 2 || got[1][1] != "❌" {
				t.Fatalf("ReadSheet() = %v, %v", got, err)
			}
			if _, err := res.Backend.ReadSheet(ctx, "Suivi"); !sheets.IsMissing(err) {
				t.Fatalf("missing sheet error = %v", err)
			}
			if res.Ready != nil {
				if err := res.Ready(ctx); err != nil {
					t.Fatalf("Ready() = %v", err)
				}
			}
		})
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	tests := []Config{
		{Type: "csv"},
		{Type: XLSXBackend},
		{Type: SheetsBackend},
		{Type: DriveBackend},
		{Type: SQLiteBackend},
	}
	for _, cfg := range tests {
		if _, err := NewFactory(nil).CreateBackend(context.Background(), cfg); err == nil {
			t.Errorf("CreateBackend(%+v) should fail", cfg)
		}
	}
}

func TestSheetsBackendNeedsCredentials(t *testing.T) {
	cfg := Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"}
	if _, err := NewFactory(nil).CreateBackend(context.Background(), cfg); err == nil {
		t.Fatal("expected missing credentials error")
	}
}

func TestWithCacheCleanupStopsJanitor(t *testing.T) {
	f := NewFactory(nil).(*DefaultFactory)
	res := f.withCache(context.Background(), memory.New(), Config{CacheSize: 4, CacheTTL: time.Minute}, nil)
	if _, ok := res.Backend.(*memory.Store); ok {
		t.Fatal("expected a cached backend")
	}

	done := make(chan error, 1)
	go func() { done <- res.Close() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("cleanup did not return")
	}

	plain := f.withCache(context.Background(), memory.New(), Config{}, nil)
	if _, ok := plain.Backend.(*memory.Store); !ok {
		t.Fatal("caching disabled must return the backend itself")
	}
}

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		DataBackend:         "drive",
		GoogleDriveFileID:   "fid",
		GoogleSpreadsheetID: "sid",
		CacheSize:           8,
		CacheTTL:            time.Minute,
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != DriveBackend || !cfg.Type.Remote() || cfg.GoogleDriveFileID != "fid" || cfg.CacheSize != 8 {
		t.Fatalf("FromAppConfig() = %+v", cfg)
	}
	if m := MirrorConfig(app); m.Type != SheetsBackend || m.GoogleSpreadsheetID != "sid" {
		t.Fatalf("MirrorConfig() = %+v", m)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "nope"}); err == nil {
		t.Fatal("expected invalid backend error")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected nil config error")
	}
}
