package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tradejournal/internal/core"
)

func TestCEOSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings_ceo.json")
	s := NewCEOSettings(path)

	got, err := s.Load()
	if err != nil || len(got) != 4 || got["Humain"] != "" {
		t.Fatalf("initial = %v, %v", got, err)
	}

	axes := map[string]string{"Opérationnel": core.AxisOptions[0], "Humain": core.AxisOptions[2]}
	changed, err := s.Save(ctx, axes)
	if err != nil || !changed {
		t.Fatalf("first save = %v, %v", changed, err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"Financier": null`) {
		t.Fatalf("unset axes must be null:\n%s", raw)
	}

	info, _ := os.Stat(path)
	changed, err = s.Save(ctx, axes)
	if err != nil || changed {
		t.Fatalf("identical save = %v, %v", changed, err)
	}
	after, _ := os.Stat(path)
	if !after.ModTime().Equal(info.ModTime()) {
		t.Fatal("identical ratings must not rewrite the file")
	}

	got, _ = s.Load()
	if got["Opérationnel"] != core.AxisOptions[0] || got["Humain"] != core.AxisOptions[2] || got["Financier"] != "" {
		t.Fatalf("loaded = %v", got)
	}
}

func TestCEOSettingsRejectsUnknownRating(t *testing.T) {
	s := NewCEOSettings(filepath.Join(t.TempDir(), "settings_ceo.json"))
	if _, err := s.Save(context.Background(), map[string]string{"Humain": "bleu"}); !errors.Is(err, core.ErrUnknownOption) {
		t.Fatalf("err = %v", err)
	}
}
