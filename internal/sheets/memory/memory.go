package memory

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	ports "tradejournal/internal/sheets"
)

// Store keeps sheets in memory. It is used by tests and by the "memory"
// backend for local development.
type Store struct {
	mu     sync.Mutex
	order  []string
	sheets map[string][][]string
}

var (
	_ ports.Backend     = (*Store)(nil)
	_ ports.SheetLister = (*Store)(nil)
)

func New() *Store {
	return &Store{sheets: map[string][][]string{}}
}

// NewFromDir seeds a store with every "<Sheet>.csv" file found in dir.
// Missing or unreadable files are skipped; a missing dir yields an empty
// store.
func NewFromDir(dir string) (*Store, error) {
	s := New()
	if strings.TrimSpace(dir) == "" {
		return s, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("glob seeds: %w", err)
	}
	sort.Strings(matches)
	for _, path := range matches {
		records, err := readCSV(path)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", filepath.Base(path), err)
		}
		name := strings.TrimSuffix(filepath.Base(path), ".csv")
		s.put(name, records)
	}
	return s, nil
}

func (s *Store) ReadSheet(_ context.Context, name string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, ok := s.sheets[name]
	if !ok {
		if len(s.sheets) == 0 {
			return nil, ports.ErrStoreNotFound
		}
		return nil, ports.ErrSheetNotFound
	}
	return ports.CloneRecords(records), nil
}

func (s *Store) WriteSheet(_ context.Context, name string, records [][]string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty sheet name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(name, records)
	return nil
}

func (s *Store) ListSheets(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}

// put must be called with mu held or before the store is shared.
func (s *Store) put(name string, records [][]string) {
	if _, ok := s.sheets[name]; !ok {
		s.order = append(s.order, name)
	}
	if records == nil {
		records = [][]string{}
	}
	s.sheets[name] = ports.CloneRecords(records)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	return r.ReadAll()
}
