package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"time"
)

// CaptureStore keeps session screenshots partitioned by
// year / month name / ISO week / day.
type CaptureStore struct {
	root string
	now  func() time.Time
}

func NewCaptureStore(root string) *CaptureStore {
	return &CaptureStore{root: root, now: time.Now}
}

// CapturePath returns the slash-separated location of a capture taken at t,
// relative to the store root.
func CapturePath(t time.Time) string {
	_, week := t.ISOWeek()
	return path.Join(
		t.Format("2006"),
		t.Month().String(),
		fmt.Sprintf("Semaine_%d", week),
		"Jour_"+t.Format("02"),
		"capture_"+t.Format("20060102_150405")+".png",
	)
}

// Save writes the image and returns the relative path to store in the
// session row.
func (c *CaptureStore) Save(ctx context.Context, r io.Reader) (string, error) {
	rel := CapturePath(c.now())
	full, err := resolveWithin(c.root, rel)
	if err != nil {
		return "", err
	}
	n, err := writeFileAtomic(full, r)
	if err != nil {
		return "", fmt.Errorf("save capture: %w", err)
	}
	slog.InfoContext(ctx, "Capture saved", "path", rel, "bytes", n)
	return rel, nil
}

// Open returns the capture stored under rel.
func (c *CaptureStore) Open(rel string) (*os.File, error) {
	full, err := resolveWithin(c.root, rel)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Remove deletes the capture stored under rel. Failures are logged only.
func (c *CaptureStore) Remove(ctx context.Context, rel string) {
	full, err := resolveWithin(c.root, rel)
	if err == nil {
		err = os.Remove(full)
	}
	if err != nil && !os.IsNotExist(err) {
		slog.WarnContext(ctx, "Capture cleanup failed", "path", rel, "error", err)
	}
}
