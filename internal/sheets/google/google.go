package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "tradejournal/internal/sheets"
)

const defaultTabsTTL = 5 * time.Minute

// Client stores journal sheets as tabs of one Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	// Tab titles are cached so that writes do not fetch spreadsheet
	// metadata every time.
	mu                 sync.Mutex
	tabs               map[string]struct{}
	tabsExpiresAt      time.Time
	cacheValidDuration time.Duration
}

var (
	_ ports.Backend     = (*Client)(nil)
	_ ports.SheetLister = (*Client)(nil)
)

// New creates a Sheets client authenticated with service account JSON.
func New(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test
// server.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID, cacheValidDuration: defaultTabsTTL}
}

func (c *Client) ListSheets(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, ports.ErrStoreNotFound
		}
		return nil, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	names := make([]string, 0, len(resp.Sheets))
	tabs := make(map[string]struct{}, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties == nil {
			continue
		}
		names = append(names, sh.Properties.Title)
		tabs[sh.Properties.Title] = struct{}{}
	}
	c.mu.Lock()
	c.tabs = tabs
	c.tabsExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()
	return names, nil
}

func (c *Client) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	ok, err := c.hasTab(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ports.ErrSheetNotFound
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteName(name)).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, ports.ErrStoreNotFound
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return toRecords(resp.Values), nil
}

// WriteSheet replaces the tab content with a single values update. The
// update range is padded with blanks up to the previous extent so stale
// cells are cleared in the same request.
func (c *Client) WriteSheet(ctx context.Context, name string, records [][]string) error {
	ok, err := c.hasTab(ctx, name)
	if err != nil {
		return err
	}
	var prev [][]string
	if ok {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteName(name)).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("read extent of %s: %w", name, err)
		}
		prev = toRecords(resp.Values)
	} else if err := c.addTab(ctx, name); err != nil {
		return err
	}

	values := padRecords(records, prev)
	if len(values) == 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoteName(name)+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", name, err)
	}
	return nil
}

func (c *Client) hasTab(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	if c.tabs != nil && time.Now().Before(c.tabsExpiresAt) {
		_, ok := c.tabs[name]
		c.mu.Unlock()
		return ok, nil
	}
	c.mu.Unlock()
	if _, err := c.ListSheets(ctx); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tabs[name]
	return ok, nil
}

func (c *Client) addTab(ctx context.Context, name string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	c.invalidateTabs()
	slog.InfoContext(ctx, "Created sheet tab", "sheet", name)
	return nil
}

func (c *Client) invalidateTabs() {
	c.mu.Lock()
	c.tabsExpiresAt = time.Time{}
	c.mu.Unlock()
}

// quoteName returns an A1 range covering the whole tab.
func quoteName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toRecords(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = fmt.Sprint(v)
		}
		out[i] = rec
	}
	return out
}

// padRecords returns records as a rectangular grid at least as large as
// prev, blanks filling the difference.
func padRecords(records, prev [][]string) [][]interface{} {
	rows := max(len(records), len(prev))
	cols := 0
	for _, r := range records {
		cols = max(cols, len(r))
	}
	for _, r := range prev {
		cols = max(cols, len(r))
	}
	out := make([][]interface{}, rows)
	for i := range out {
		row := make([]interface{}, cols)
		for j := range row {
			row[j] = ""
			if i < len(records) && j < len(records[i]) {
				row[j] = records[i][j]
			}
		}
		out[i] = row
	}
	return out
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
