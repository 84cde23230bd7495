package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"tradejournal/internal/core"
)

const ficheImage = "capture.png"

// FicheRef locates one stored fiche.
type FicheRef struct {
	// Dir is the fiche directory relative to the archive root, with
	// forward slashes.
	Dir      string
	Seq      int
	Entry    core.FicheEntry
	HasImage bool

	key sortKey
}

// ImagePath is the image location relative to the archive root.
func (r FicheRef) ImagePath() string { return r.Dir + "/" + ficheImage }

type sortKey [5]int

// FicheArchive stores fiches as one directory each:
// <root>/<YYYY>/<MM>/week_<WW>/<DD-MM-YYYY>/fiche_<n>/fiche_<n>.json.
type FicheArchive struct {
	root string
	now  func() time.Time
	mu   sync.Mutex
}

func NewFicheArchive(root string) *FicheArchive {
	return &FicheArchive{root: root, now: time.Now}
}

// DayDir returns the directory, relative to the root, holding the fiches
// created at t.
func DayDir(t time.Time) string {
	return filepath.Join(
		t.Format("2006"),
		t.Format("01"),
		fmt.Sprintf("week_%02d", core.MondayWeek(t)),
		t.Format("02-01-2006"),
	)
}

// Create stores e, with image when not nil, and returns its reference.
// The sequence number is one more than the number of directories already
// present for the day.
func (a *FicheArchive) Create(ctx context.Context, e core.FicheEntry, image io.Reader) (FicheRef, error) {
	if err := e.Validate(); err != nil {
		return FicheRef{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	dayDir := filepath.Join(a.root, DayDir(a.now()))
	if err := os.MkdirAll(dayDir, 0o755); err != nil {
		return FicheRef{}, fmt.Errorf("create day dir: %w", err)
	}
	entries, err := os.ReadDir(dayDir)
	if err != nil {
		return FicheRef{}, fmt.Errorf("list day dir: %w", err)
	}
	seq := 1
	for _, de := range entries {
		if de.IsDir() {
			seq++
		}
	}
	name := fmt.Sprintf("fiche_%d", seq)
	dir := filepath.Join(dayDir, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return FicheRef{}, fmt.Errorf("create fiche dir: %w", err)
	}

	ref := FicheRef{Seq: seq, Entry: e}
	if image != nil {
		if _, err := writeFileAtomic(filepath.Join(dir, ficheImage), image); err != nil {
			return FicheRef{}, fmt.Errorf("save fiche image: %w", err)
		}
		ref.HasImage = true
	}

	doc, err := encodeFiche(e)
	if err != nil {
		return FicheRef{}, err
	}
	if _, err := writeFileAtomic(filepath.Join(dir, name+".json"), strings.NewReader(doc)); err != nil {
		return FicheRef{}, fmt.Errorf("save fiche: %w", err)
	}

	rel, _ := filepath.Rel(a.root, dir)
	ref.Dir = filepath.ToSlash(rel)
	ref.key = keyFromPath(ref.Dir)
	slog.InfoContext(ctx, "Fiche saved", "dir", ref.Dir, "seq", seq, "has_image", ref.HasImage)
	return ref, nil
}

// FindByDate returns every fiche whose date field falls on day, most
// recently created first. Unreadable records are skipped.
func (a *FicheArchive) FindByDate(ctx context.Context, day time.Time) ([]FicheRef, error) {
	var out []FicheRef
	err := filepath.WalkDir(a.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == a.root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			slog.WarnContext(ctx, "Skipping unreadable fiche path", "path", p, "error", err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".json" {
			return nil
		}
		e, ok := readFiche(p)
		if !ok {
			return nil
		}
		at, ok := core.ParseFicheDate(e.Date)
		if !ok || !core.SameDay(at, day) {
			return nil
		}
		rel, err := filepath.Rel(a.root, filepath.Dir(p))
		if err != nil {
			return nil
		}
		ref := FicheRef{Dir: filepath.ToSlash(rel), Entry: e}
		ref.key = keyFromPath(ref.Dir)
		ref.Seq = ref.key[4]
		if _, err := os.Stat(filepath.Join(filepath.Dir(p), ficheImage)); err == nil {
			ref.HasImage = true
		}
		out = append(out, ref)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan fiches: %w", err)
	}
	SortFiches(out)
	return out, nil
}

// OpenImage opens a fiche image by its path relative to the root.
func (a *FicheArchive) OpenImage(rel string) (*os.File, error) {
	full, err := resolveWithin(a.root, rel)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// SortFiches orders refs most recent first by year, month, week, day and
// sequence number. Paths outside the usual layout fall back to reverse
// lexical order.
func SortFiches(refs []FicheRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].key != refs[j].key {
			for k := range refs[i].key {
				if refs[i].key[k] != refs[j].key[k] {
					return refs[i].key[k] > refs[j].key[k]
				}
			}
		}
		return refs[i].Dir > refs[j].Dir
	})
}

// keyFromPath parses "YYYY/MM/week_WW/DD-MM-YYYY/fiche_N". Unknown parts
// are zero.
func keyFromPath(dir string) sortKey {
	var k sortKey
	parts := strings.Split(dir, "/")
	if len(parts) != 5 {
		return k
	}
	k[0], _ = strconv.Atoi(parts[0])
	k[1], _ = strconv.Atoi(parts[1])
	k[2], _ = strconv.Atoi(strings.TrimPrefix(parts[2], "week_"))
	if day, _, ok := strings.Cut(parts[3], "-"); ok {
		k[3], _ = strconv.Atoi(day)
	}
	k[4], _ = strconv.Atoi(strings.TrimPrefix(parts[4], "fiche_"))
	return k
}

func readFiche(p string) (core.FicheEntry, bool) {
	raw, err := os.ReadFile(p)
	if err != nil || len(raw) == 0 {
		return core.FicheEntry{}, false
	}
	var e core.FicheEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return core.FicheEntry{}, false
	}
	if strings.TrimSpace(e.Date) == "" {
		return core.FicheEntry{}, false
	}
	return e, true
}

func encodeFiche(e core.FicheEntry) (string, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(e); err != nil {
		return "", fmt.Errorf("encode fiche: %w", err)
	}
	return b.String(), nil
}
