// Package drive stores the journal workbook as an .xlsx file on Google
// Drive. Every read downloads the file; every write downloads, patches
// one sheet and uploads the new revision.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"

	ports "tradejournal/internal/sheets"
	"tradejournal/internal/sheets/xlsx"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Store struct {
	svc    *gdrive.Service
	fileID string
	mu     sync.Mutex
}

var (
	_ ports.Backend     = (*Store)(nil)
	_ ports.SheetLister = (*Store)(nil)
)

func New(ctx context.Context, fileID string, credentialsJSON []byte) (*Store, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil, errors.New("missing GOOGLE_DRIVE_FILE_ID")
	}
	svc, err := gdrive.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gdrive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return NewWithService(svc, fileID), nil
}

func NewWithService(svc *gdrive.Service, fileID string) *Store {
	return &Store{svc: svc, fileID: fileID}
}

func (s *Store) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	f, err := s.download(ctx)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return xlsx.SheetRecords(f, name)
}

func (s *Store) ListSheets(ctx context.Context) ([]string, error) {
	f, err := s.download(ctx)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (s *Store) WriteSheet(ctx context.Context, name string, records [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.download(ctx)
	switch {
	case errors.Is(err, errEmptyFile):
		f = excelize.NewFile()
	case err != nil:
		return err
	}
	defer f.Close()

	if err := xlsx.ReplaceSheet(f, name, records); err != nil {
		return err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	_, err = s.svc.Files.Update(s.fileID, &gdrive.File{}).
		Media(bytes.NewReader(buf.Bytes()), googleapi.ContentType(xlsxMime)).
		Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return ports.ErrStoreNotFound
		}
		return fmt.Errorf("upload workbook: %w", err)
	}
	slog.DebugContext(ctx, "Drive workbook uploaded", "file_id", s.fileID, "sheet", name, "bytes", buf.Len())
	return nil
}

// errEmptyFile marks a Drive file that exists but has no content yet. It
// reads as a missing store and is initialised by the first write.
var errEmptyFile = fmt.Errorf("empty drive file: %w", ports.ErrStoreNotFound)

func (s *Store) download(ctx context.Context) (*excelize.File, error) {
	resp, err := s.svc.Files.Get(s.fileID).Context(ctx).Download()
	if err != nil {
		if isNotFound(err) {
			return nil, ports.ErrStoreNotFound
		}
		return nil, fmt.Errorf("download workbook: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	if len(raw) == 0 {
		return nil, errEmptyFile
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return f, nil
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
