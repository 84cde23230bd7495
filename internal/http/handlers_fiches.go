package http

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"tradejournal/internal/core"
	applog "tradejournal/internal/log"
	"tradejournal/internal/render"
)

type ficheSection struct {
	Title string
	Body  template.HTML
}

type ficheView struct {
	Seq      int
	Dir      string
	Date     string
	Sections []ficheSection
	Image    string
}

type fichesView struct {
	Day      string
	DayLabel string
	Fiches   []ficheView
	Notice   string
}

type newFicheView struct {
	Today string
}

// dayLabel formats a day as "2 Mai 2024".
func dayLabel(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), render.MonthName(t.Month()), t.Year())
}

func (s *Server) handleNewFiche(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "fiche_new.html", newFicheView{Today: s.now().Format("2006-01-02")})
}

func (s *Server) handleCreateFiche(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if errResp := ParseFormOrFail(r); errResp != nil {
		errResp.Write(w)
		return
	}
	entry := core.FicheEntry{
		Date:      sanitizeInput(r.FormValue("date")),
		Propos:    sanitizeInput(r.FormValue("propos")),
		Hypothese: sanitizeInput(r.FormValue("hypothese")),
		Procedure: sanitizeInput(r.FormValue("procedure")),
		Constat:   sanitizeInput(r.FormValue("constat")),
	}
	if entry.Date == "" {
		entry.Date = s.now().Format("2006-01-02")
	}

	image, err := formFile(r, "image")
	if err != nil {
		BadRequestError("Image illisible").Write(w)
		return
	}
	if image != nil {
		defer image.Close()
	}
	if s.fiches == nil {
		InternalServerError("Archive des fiches non configurée").Write(w)
		return
	}

	ref, err := s.fiches.Create(ctx, entry, readerOrNil(image))
	switch {
	case errors.Is(err, core.ErrEmptyFiche):
		UnprocessableEntityError("La fiche est vide : remplissez au moins une rubrique.").Write(w)
		return
	case errors.Is(err, core.ErrMissingDate):
		UnprocessableEntityError("La date de la fiche est requise.").Write(w)
		return
	case errors.Is(err, core.ErrInvalidFicheDate):
		UnprocessableEntityError("Date de fiche invalide : utilisez AAAA-MM-JJ ou JJ/MM/AAAA.").Write(w)
		return
	case err != nil:
		s.events.LogError(ctx, "Fiche creation failed", err, applog.ComponentJournal, applog.OpSave, nil)
		SaveFailedError("la fiche").Write(w)
		return
	}

	SuccessResponse(fmt.Sprintf("Fiche n°%d enregistrée", ref.Seq)).
		TriggerFicheCreated(ref.Dir).
		TriggerFormReset().
		Write(w)
}

func (s *Server) handleFiches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	day := ParseDay(r.URL.Query().Get("date"), s.now())
	view := fichesView{Day: day.Format("2006-01-02"), DayLabel: dayLabel(day)}

	if s.fiches != nil {
		refs, err := s.fiches.FindByDate(ctx, day)
		if err != nil {
			s.logger.WarnContext(ctx, "Fiche lookup failed", applog.FieldError, err)
			view.Notice = "Archive des fiches illisible."
		}
		for _, ref := range refs {
			fv := ficheView{
				Seq:  ref.Seq,
				Dir:  ref.Dir,
				Date: ref.Entry.Date,
				Sections: []ficheSection{
					{"Propos", renderMarkdown(ref.Entry.Propos)},
					{"Hypothèse", renderMarkdown(ref.Entry.Hypothese)},
					{"Procédure", renderMarkdown(ref.Entry.Procedure)},
					{"Constat", renderMarkdown(ref.Entry.Constat)},
				},
			}
			if ref.HasImage {
				fv.Image = "/fiches/image/" + ref.ImagePath()
			}
			view.Fiches = append(view.Fiches, fv)
		}
	}
	s.render(w, r, "fiches.html", view)
}

func (s *Server) handleFicheImage(w http.ResponseWriter, r *http.Request) {
	if s.fiches == nil {
		NotFoundError("Image introuvable").Write(w)
		return
	}
	rel := r.PathValue("path")
	f, err := s.fiches.OpenImage(rel)
	serveStoredImage(w, r, rel, f, err)
}
