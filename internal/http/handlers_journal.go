package http

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tradejournal/internal/core"
	applog "tradejournal/internal/log"
	"tradejournal/internal/services"
)

// mandalaSteps is the length of the mandala progress bar.
const mandalaSteps = 40

type recapCard struct {
	Title string
	Value string
}

type axisField struct {
	Name     string
	Field    string
	Options  []string
	Selected string
}

type mandalaView struct {
	Step    int
	Max     int
	Percent int
}

type dashboardView struct {
	Count      int
	Cumulative string
	Cards      []recapCard
	Notice     string

	// LastCapture is relative to the capture root.
	LastCapture string

	RespectOptions    []string
	ErreurCleOptions  []string
	DisciplineOptions []string
	MoodOptions       []string
	Axes              []axisField
	Mandala           mandalaView
}

// axisFieldName is the form name of CEO axis i.
func axisFieldName(i int) string { return "axe-" + strconv.Itoa(i) }

// mandala clamps the requested step to 1..40.
func mandala(raw string) mandalaView {
	step, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || step < 1 {
		step = 1
	}
	if step > mandalaSteps {
		step = mandalaSteps
	}
	return mandalaView{Step: step, Max: mandalaSteps, Percent: step * 100 / mandalaSteps}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := dashboardView{
		RespectOptions:    core.RespectOptions,
		ErreurCleOptions:  core.ErreurCleOptions,
		DisciplineOptions: core.DisciplineOptions,
		MoodOptions:       core.MoodOptions,
		Mandala:           mandala(r.URL.Query().Get("mandala")),
		Cumulative:        formatEuros(decimal.Zero),
	}

	if s.sessions != nil {
		res := s.sessions.Log(ctx)
		if res.Err != nil && res.Origin == services.OriginDefault {
			view.Notice = "Journal des sessions illisible, affichage vide."
		}
		recap := core.Recap(res.Table)
		view.Count = recap.Count
		view.Cumulative = formatEuros(recap.Cumulative)
		for _, col := range []string{core.ColRespect, core.ColErreurCle, core.ColDiscipline, core.ColMood} {
			v := recap.Last[col]
			if v == "" {
				v = "—"
			}
			view.Cards = append(view.Cards, recapCard{Title: col, Value: v})
		}
		view.LastCapture = recap.Last[core.ColCapture]
	}

	saved := map[string]string{}
	if s.settings != nil {
		var err error
		if saved, err = s.settings.Load(); err != nil {
			s.logger.WarnContext(ctx, "CEO settings unreadable", applog.FieldError, err)
		}
	}
	for i, a := range core.Axes {
		view.Axes = append(view.Axes, axisField{
			Name:     a,
			Field:    axisFieldName(i),
			Options:  core.AxisOptions,
			Selected: saved[a],
		})
	}

	s.render(w, r, "index.html", view)
}

// formAxes reads the four CEO axis ratings of a submitted form.
func formAxes(r *http.Request) map[string]string {
	axes := make(map[string]string, len(core.Axes))
	for i, a := range core.Axes {
		axes[a] = sanitizeInput(r.FormValue(axisFieldName(i)))
	}
	return axes
}

func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if errResp := ParseFormOrFail(r); errResp != nil {
		errResp.Write(w)
		return
	}

	montant := decimal.Zero
	if raw := sanitizeInput(r.FormValue("montant")); raw != "" {
		d, ok := core.ParseAmount(raw)
		if !ok {
			UnprocessableEntityError("Montant invalide : " + raw).Write(w)
			return
		}
		montant = d
	}

	entry := core.SessionEntry{
		Date:       s.now(),
		Respect:    sanitizeInput(r.FormValue("respect")),
		Montant:    montant,
		ErreurCle:  sanitizeInput(r.FormValue("erreur_cle")),
		Discipline: sanitizeInput(r.FormValue("discipline")),
		Mood:       sanitizeInput(r.FormValue("mood")),
		Comment:    sanitizeInput(r.FormValue("commentaire")),
		Axes:       formAxes(r),
	}

	capture, err := formFile(r, "capture")
	if err != nil {
		BadRequestError("Capture illisible").Write(w)
		return
	}
	if capture != nil {
		defer capture.Close()
	}

	if s.sessions == nil {
		InternalServerError("Journal non configuré").Write(w)
		return
	}
	tbl, err := s.sessions.Record(ctx, entry, readerOrNil(capture))
	switch {
	case errors.Is(err, core.ErrMissingRespect):
		UnprocessableEntityError("Indiquez si le plan a été respecté.").Write(w)
		return
	case errors.Is(err, core.ErrUnknownOption), errors.Is(err, core.ErrMissingDate):
		UnprocessableEntityError("Session invalide : " + err.Error()).Write(w)
		return
	case err != nil:
		s.events.LogError(ctx, "Session append failed", err, applog.ComponentJournal, applog.OpAppend,
			applog.NewFields().WithSheet(core.SessionSheet, 0))
		SaveFailedError("la session").Write(w)
		return
	}
	s.events.LogSheetSaved(ctx, "sessions", core.SessionSheet, len(tbl.Rows), false)

	if s.settings != nil {
		if _, err := s.settings.Save(ctx, entry.Axes); err != nil {
			s.logger.WarnContext(ctx, "CEO settings not saved", applog.FieldError, err)
		}
	}

	recap := core.Recap(tbl)
	SuccessResponse(fmt.Sprintf("Session enregistrée (%d au total, cumul %s)", recap.Count, formatEuros(recap.Cumulative))).
		TriggerSessionRecorded(recap.Count).
		TriggerFormReset().
		TriggerChartsRefresh().
		Write(w)
}

func (s *Server) handleSaveCEO(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if errResp := ParseFormOrFail(r); errResp != nil {
		errResp.Write(w)
		return
	}
	if s.settings == nil {
		InternalServerError("Réglages non configurés").Write(w)
		return
	}
	changed, err := s.settings.Save(ctx, formAxes(r))
	switch {
	case errors.Is(err, core.ErrUnknownOption):
		UnprocessableEntityError("Évaluation inconnue : " + err.Error()).Write(w)
		return
	case err != nil:
		s.logger.ErrorContext(ctx, "CEO settings save failed", applog.FieldError, err)
		SaveFailedError("les réglages CEO").Write(w)
		return
	}
	if !changed {
		SuccessResponse("Réglages CEO inchangés").Write(w)
		return
	}
	SuccessResponse("Réglages CEO enregistrés").
		TriggerSuccessNotification("Réglages CEO enregistrés").
		Write(w)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if s.captures == nil {
		NotFoundError("Capture introuvable").Write(w)
		return
	}
	rel := r.PathValue("path")
	f, err := s.captures.Open(rel)
	serveStoredImage(w, r, rel, f, err)
}

// serveStoredImage writes an image opened from a capture or fiche store.
func serveStoredImage(w http.ResponseWriter, r *http.Request, rel string, f *os.File, err error) {
	switch {
	case errors.Is(err, services.ErrOutsideRoot):
		BadRequestError("Chemin invalide").Write(w)
		return
	case errors.Is(err, os.ErrNotExist):
		NotFoundError("Image introuvable").Write(w)
		return
	case err != nil:
		InternalServerError("Image illisible").Write(w)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		NotFoundError("Image introuvable").Write(w)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeContent(w, r, path.Base(rel), info.ModTime(), f)
}
