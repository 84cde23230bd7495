package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/goccy/go-json"

	"tradejournal/internal/core"
)

// CEOSettings persists the last chosen rating of each CEO axis as a small
// JSON document: {"Opérationnel": "🟢 Vert", "Financier": null, ...}.
type CEOSettings struct {
	path string
	mu   sync.Mutex
}

func NewCEOSettings(path string) *CEOSettings {
	return &CEOSettings{path: path}
}

// Load returns the rating of every axis; unset axes map to "". A missing
// file yields all axes unset.
func (s *CEOSettings) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save writes axes when they differ from the stored ratings and reports
// whether the file changed. Ratings must be one of core.AxisOptions or "".
func (s *CEOSettings) Save(ctx context.Context, axes map[string]string) (bool, error) {
	next := make(map[string]string, len(core.Axes))
	for _, a := range core.Axes {
		v := axes[a]
		if v != "" && !contains(core.AxisOptions, v) {
			return false, fmt.Errorf("axe %s: %q: %w", a, v, core.ErrUnknownOption)
		}
		next[a] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load()
	if err != nil {
		slog.WarnContext(ctx, "CEO settings unreadable, rewriting", "path", s.path, "error", err)
	} else if equalAxes(current, next) {
		return false, nil
	}

	doc := make(map[string]*string, len(next))
	for a, v := range next {
		if v == "" {
			doc[a] = nil
			continue
		}
		v := v
		doc[a] = &v
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode ceo settings: %w", err)
	}
	if _, err := writeFileAtomic(s.path, bytes.NewReader(raw)); err != nil {
		return false, fmt.Errorf("save ceo settings: %w", err)
	}
	return true, nil
}

func (s *CEOSettings) load() (map[string]string, error) {
	out := make(map[string]string, len(core.Axes))
	for _, a := range core.Axes {
		out[a] = ""
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("read ceo settings: %w", err)
	}
	var doc map[string]*string
	if err := json.Unmarshal(raw, &doc); err != nil {
		return out, fmt.Errorf("decode ceo settings: %w", err)
	}
	for _, a := range core.Axes {
		if v := doc[a]; v != nil && contains(core.AxisOptions, *v) {
			out[a] = *v
		}
	}
	return out, nil
}

func equalAxes(a, b map[string]string) bool {
	for _, k := range core.Axes {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
