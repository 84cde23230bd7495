package http

import (
	"errors"
	"net/http"
	"strconv"

	"tradejournal/internal/core"
	applog "tradejournal/internal/log"
	"tradejournal/internal/pages"
	"tradejournal/internal/services"
)

type gridColumn struct {
	Index    int
	Name     string
	Options  []string
	ReadOnly bool
	Numeric  bool
}

type gridCell struct {
	Field  string
	Value  string
	Column gridColumn
}

type gridRow struct {
	Index int
	Cells []gridCell
}

type gridView struct {
	Slug      string
	Title     string
	Sheet     string
	FixedRows bool
	AutoSave  bool
	Columns   []gridColumn
	Rows      []gridRow
	Metric    *pages.Metric
	Notice    string
	Saved     string
}

type pageLink struct {
	Slug     string
	Title    string
	Sheet    string
	AutoSave bool
}

type historyView struct {
	Slug    string
	Title   string
	Sheet   string
	Header  []string
	Records [][]string
	Notice  string
}

func newGridView(p pages.Page, t core.Table) gridView {
	v := gridView{
		Slug:      p.Slug,
		Title:     p.Title,
		Sheet:     p.Sheet,
		FixedRows: p.FixedRows,
		AutoSave:  p.AutoSave,
	}
	for i, c := range t.Columns {
		v.Columns = append(v.Columns, gridColumn{
			Index:    i,
			Name:     c.Name,
			Options:  c.Options,
			ReadOnly: c.ReadOnly,
			Numeric:  c.Kind == core.KindNumber,
		})
	}
	for r, row := range t.Rows {
		gr := gridRow{Index: r}
		for c := range t.Columns {
			val := ""
			if c < len(row) {
				val = row[c].String()
			}
			gr.Cells = append(gr.Cells, gridCell{Field: cellField(r, c), Value: val, Column: v.Columns[c]})
		}
		v.Rows = append(v.Rows, gr)
	}
	if m, ok := p.Compute(t); ok {
		v.Metric = &m
	}
	return v
}

// lookupPage resolves the {slug} path value or writes a 404.
func lookupPage(w http.ResponseWriter, r *http.Request) (pages.Page, bool) {
	p, ok := pages.Lookup(r.PathValue("slug"))
	if !ok {
		NotFoundError("Page inconnue").Write(w)
	}
	return p, ok
}

// submittedGrid parses the grid posted for p, writing a 400 or 422 when
// it cannot be used.
func submittedGrid(w http.ResponseWriter, r *http.Request, p pages.Page) (core.Table, bool) {
	if errResp := ParseFormOrFail(r); errResp != nil {
		errResp.Write(w)
		return core.Table{}, false
	}
	t, err := ParseGrid(p, r.Form)
	var gridErr *GridError
	switch {
	case errors.As(err, &gridErr):
		UnprocessableEntityError(gridErr.Error()).Write(w)
		return core.Table{}, false
	case err != nil:
		BadRequestError("Grille invalide : " + err.Error()).Write(w)
		return core.Table{}, false
	}
	return t, true
}

func (s *Server) handlePageIndex(w http.ResponseWriter, r *http.Request) {
	var links []pageLink
	for _, p := range pages.All() {
		links = append(links, pageLink{Slug: p.Slug, Title: p.Title, Sheet: p.Sheet, AutoSave: p.AutoSave})
	}
	s.render(w, r, "pages.html", links)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	res := s.store.Load(ctx, p.Sheet, p.Default())
	applog.FromContext(ctx).WithComponent(applog.ComponentJournal).DebugContext(ctx, "Page loaded",
		applog.NewFields().WithPage(p.Slug).WithSheet(p.Sheet, len(res.Table.Rows)).WithOperation(applog.OpLoad).
			WithOrigin(res.Origin.String()).ToSlice()...)

	view := newGridView(p, res.Table)
	switch {
	case res.Origin == services.OriginCreated:
		view.Notice = "Feuille créée avec les valeurs par défaut."
	case res.Err != nil:
		view.Notice = "Feuille illisible : valeurs par défaut affichées, rien n'a été enregistré."
	}
	s.render(w, r, "page.html", view)
}

// handleEditPage recomputes the metric from the submitted grid. Autosave
// pages are persisted with history on every edit.
func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage(w, r)
	if !ok {
		return
	}
	t, ok := submittedGrid(w, r, p)
	if !ok {
		return
	}
	view := newGridView(p, t)
	if p.AutoSave {
		if !s.saveWithHistory(w, r, p, t) {
			return
		}
		view.Saved = "Enregistré à " + s.now().Format("15:04:05")
	}
	resp, ok := s.fragment(r, "metric", view)
	if ok && p.AutoSave {
		resp.TriggerSheetSaved(p.Slug, p.Sheet, len(t.Rows))
	}
	resp.Write(w)
}

func (s *Server) handleSavePage(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage(w, r)
	if !ok {
		return
	}
	t, ok := submittedGrid(w, r, p)
	if !ok {
		return
	}
	if !s.saveWithHistory(w, r, p, t) {
		return
	}
	SuccessResponse(p.Title+" enregistré ("+strconv.Itoa(len(t.Rows))+" lignes)").
		TriggerSheetSaved(p.Slug, p.Sheet, len(t.Rows)).
		TriggerSuccessNotification("Enregistré").
		Write(w)
}

// saveWithHistory persists t and its history, writing the error fragment
// on failure.
func (s *Server) saveWithHistory(w http.ResponseWriter, r *http.Request, p pages.Page, t core.Table) bool {
	ctx := r.Context()
	if err := s.store.SaveWithHistory(ctx, t, p.Sheet); err != nil {
		s.events.LogError(ctx, "Page save failed", err, applog.ComponentJournal, applog.OpSave,
			applog.NewFields().WithPage(p.Slug).WithSheet(p.Sheet, len(t.Rows)))
		SaveFailedError(p.Title).Write(w)
		return false
	}
	s.events.LogSheetSaved(ctx, p.Slug, p.Sheet, len(t.Rows), true)
	return true
}

func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage(w, r)
	if !ok {
		return
	}
	if p.FixedRows {
		UnprocessableEntityError("Cette page a un nombre de lignes fixe.").Write(w)
		return
	}
	t, ok := submittedGrid(w, r, p)
	if !ok {
		return
	}
	t.AppendValues()
	resp, _ := s.fragment(r, "grid", newGridView(p, t))
	resp.Write(w)
}

func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage(w, r)
	if !ok {
		return
	}
	if p.FixedRows {
		UnprocessableEntityError("Cette page a un nombre de lignes fixe.").Write(w)
		return
	}
	row, err := strconv.Atoi(r.PathValue("row"))
	if err != nil {
		BadRequestError("Ligne invalide").Write(w)
		return
	}
	t, ok := submittedGrid(w, r, p)
	if !ok {
		return
	}
	if err := t.DeleteRow(row); err != nil {
		UnprocessableEntityError("Ligne " + strconv.Itoa(row+1) + " introuvable").Write(w)
		return
	}
	resp, _ := s.fragment(r, "grid", newGridView(p, t))
	resp.Write(w)
}

func (s *Server) handlePageHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage(w, r)
	if !ok {
		return
	}
	view := historyView{Slug: p.Slug, Title: p.Title, Sheet: core.HistorySheet(p.Sheet)}
	h, err := s.store.History(r.Context(), p.Sheet, p.Columns)
	if err != nil {
		s.logger.WarnContext(r.Context(), "History unreadable", applog.FieldSheet, view.Sheet, applog.FieldError, err)
		view.Notice = "Historique illisible."
	} else {
		rec := h.Records()
		view.Header, view.Records = rec[0], rec[1:]
	}
	s.render(w, r, "history.html", view)
}
