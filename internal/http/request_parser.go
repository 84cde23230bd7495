// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// month and date filters, submitted grids and multipart uploads.

package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tradejournal/internal/core"
	"tradejournal/internal/pages"
)

// maxUploadBytes bounds multipart bodies (session captures, fiche images).
const maxUploadBytes = 10 << 20

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month time.Month
}

// ParseMonthParams extracts year and month from query parameters, using
// now as default. Out-of-range months fall back to the current month.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	params := MonthParams{Year: now.Year(), Month: now.Month()}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = time.Month(m)
		}
	}
	return params
}

// ParseSessionFilter reads the statistics filters: year, month (1-12) and
// a from/to date range (YYYY-MM-DD). Unparseable values are ignored.
func ParseSessionFilter(query url.Values) core.SessionFilter {
	var f core.SessionFilter
	if y, err := strconv.Atoi(strings.TrimSpace(query.Get("year"))); err == nil && y > 0 {
		f.Year = y
	}
	if m, err := strconv.Atoi(strings.TrimSpace(query.Get("month"))); err == nil && m >= 1 && m <= 12 {
		f.Month = time.Month(m)
	}
	if d, ok := parseDay(query.Get("from")); ok {
		f.From = d
	}
	if d, ok := parseDay(query.Get("to")); ok {
		f.To = d
	}
	return f
}

// ParseDay parses a YYYY-MM-DD query value, defaulting to now's day.
func ParseDay(v string, now time.Time) time.Time {
	if d, ok := parseDay(v); ok {
		return d
	}
	return core.DayOf(now)
}

func parseDay(v string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// GridError reports the offending cell of a submitted grid.
type GridError struct {
	Row    int
	Column string
	Err    error
}

func (e *GridError) Error() string {
	return fmt.Sprintf("ligne %d, colonne %q : %v", e.Row+1, e.Column, e.Err)
}

func (e *GridError) Unwrap() error { return e.Err }

var errMalformedGrid = errors.New("grille incomplète")

// maxGridRows bounds the row count a submitted grid may claim.
const maxGridRows = 10000

// cellField is the form name of the cell at row r, column c.
func cellField(r, c int) string {
	return "cell-" + strconv.Itoa(r) + "-" + strconv.Itoa(c)
}

// ParseGrid rebuilds a page table from a submitted grid. The form carries
// the column names as col-<c>, the row count as rows, and every cell as
// cell-<r>-<c>. Columns unknown to the page are kept as text. Read-only
// cells must still hold their default value. Fixed-row pages cannot claim
// more rows than their default table.
func ParseGrid(p pages.Page, form url.Values) (core.Table, error) {
	def := p.Default()
	known := make(map[string]core.Column, len(p.Columns))
	for _, c := range p.Columns {
		known[c.Name] = c
	}

	var cols []core.Column
	for c := 0; ; c++ {
		name, ok := form["col-"+strconv.Itoa(c)]
		if !ok || len(name) == 0 {
			break
		}
		col, ok := known[name[0]]
		if !ok {
			col = core.Text(name[0])
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return core.Table{}, errMalformedGrid
	}

	limit := maxGridRows
	if p.FixedRows {
		limit = len(def.Rows)
	}
	n, err := strconv.Atoi(form.Get("rows"))
	if err != nil || n < 0 || n > limit {
		return core.Table{}, errMalformedGrid
	}

	t := core.Table{Columns: cols}
	for r := 0; r < n; r++ {
		t.AppendValues()
		for c, col := range cols {
			if col.ReadOnly {
				t.Rows[r][c] = def.Cell(r, col.Name)
			}
		}
		for c, col := range cols {
			raw := sanitizeInput(form.Get(cellField(r, c)))
			if err := t.SetCell(r, col.Name, raw); err != nil {
				return core.Table{}, &GridError{Row: r, Column: col.Name, Err: err}
			}
		}
	}
	return t, nil
}

// formFile returns the uploaded file under name, or nil when none was
// sent. The caller closes the returned file.
func formFile(r *http.Request, name string) (multipart.File, error) {
	f, hdr, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if hdr.Size == 0 {
		f.Close()
		return nil, nil
	}
	return f, nil
}

// readerOrNil hides a nil multipart.File behind a nil io.Reader.
func readerOrNil(f multipart.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}

// parseForm parses url-encoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadBytes)
	}
	return r.ParseForm()
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := parseForm(r); err != nil {
		return BadRequestError("Format de requête invalide")
	}
	return nil
}
