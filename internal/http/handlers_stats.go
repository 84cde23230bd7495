package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"time"

	"tradejournal/internal/core"
	applog "tradejournal/internal/log"
	"tradejournal/internal/render"
	"tradejournal/internal/services"
)

type meanRow struct {
	Label string
	Mean  string
}

type monthOption struct {
	Value    int
	Name     string
	Selected bool
}

type statsView struct {
	Year, Month, From, To string
	Months                []monthOption

	Count      int
	Cumulative string
	Notice     string

	ErreurBars     template.HTML
	DisciplineBars template.HTML
	MoodBars       template.HTML
	Scatter        template.HTML
	Fit            string

	MeansDiscipline []meanRow
	MeansMood       []meanRow

	Calendar     template.HTML
	CalEmpty     bool
	CalNotice    string
	CalYear      int
	CalMonth     int
	CalMonthName string
}

// sessionLog loads the session log, reporting whether it was readable.
func (s *Server) sessionLog(r *http.Request) (core.Table, bool) {
	if s.sessions == nil {
		return core.Table{Columns: core.SessionColumns()}, true
	}
	res := s.sessions.Log(r.Context())
	return res.Table, !(res.Origin == services.OriginDefault && res.Err != nil)
}

// inlineSVG captures a chart as markup for embedding in a page.
func inlineSVG(draw func(io.Writer) error) (template.HTML, error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func means(gs []core.GroupMean) []meanRow {
	out := make([]meanRow, 0, len(gs))
	for _, g := range gs {
		out = append(out, meanRow{Label: g.Label, Mean: formatEuros(g.Mean)})
	}
	return out
}

// calendarMonth reads cal_year / cal_month, defaulting to the current month.
func calendarMonth(q url.Values, now time.Time) MonthParams {
	return ParseMonthParams(url.Values{"year": {q.Get("cal_year")}, "month": {q.Get("cal_month")}}, now)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	log, readable := s.sessionLog(r)
	filtered := core.FilterSessions(log, ParseSessionFilter(q))
	recap := core.Recap(filtered)

	cal := calendarMonth(q, s.now())
	month := render.BuildCalendar(render.DayAmounts(log), cal.Year, cal.Month)
	view := statsView{
		Year:         q.Get("year"),
		Month:        q.Get("month"),
		From:         q.Get("from"),
		To:           q.Get("to"),
		Count:        recap.Count,
		Cumulative:   formatEuros(recap.Cumulative),
		CalYear:      cal.Year,
		CalMonth:     int(cal.Month),
		CalMonthName: render.MonthName(cal.Month),
		CalEmpty:     month.Empty,
	}
	if month.Empty {
		view.CalNotice = render.EmptyMonthNotice
	}
	if !readable {
		view.Notice = "Journal des sessions illisible."
	}
	for m := time.January; m <= time.December; m++ {
		view.Months = append(view.Months, monthOption{Value: int(m), Name: render.MonthName(m), Selected: m == cal.Month})
	}

	pts := core.RespectScatter(filtered)
	var fit *core.Fit
	if f, ok := core.Regression(pts); ok {
		fit = &f
		view.Fit = fmt.Sprintf("Montant ≈ %.2f + %.2f × respect", f.Alpha, f.Beta)
	}

	type chart struct {
		dst  *template.HTML
		draw func(io.Writer) error
	}
	charts := []chart{
		{&view.ErreurBars, func(w io.Writer) error {
			return render.BarsSVG(w, "Erreurs clés", core.ValueCounts(filtered, core.ColErreurCle))
		}},
		{&view.DisciplineBars, func(w io.Writer) error {
			return render.BarsSVG(w, "Discipline", core.ValueCounts(filtered, core.ColDiscipline))
		}},
		{&view.MoodBars, func(w io.Writer) error {
			return render.BarsSVG(w, "État d'esprit", core.ValueCounts(filtered, core.ColMood))
		}},
		{&view.Scatter, func(w io.Writer) error {
			return render.ScatterSVG(w, "Montant selon le respect du plan", pts, fit)
		}},
	}
	if !month.Empty {
		charts = append(charts, chart{&view.Calendar, func(w io.Writer) error { return render.CalendarSVG(w, month) }})
	}
	for _, c := range charts {
		out, err := inlineSVG(c.draw)
		if err != nil {
			s.logger.WithComponent(applog.ComponentRender).ErrorContext(ctx, "Chart rendering failed", applog.FieldError, err)
			continue
		}
		*c.dst = out
	}

	view.MeansDiscipline = means(core.MeanBy(filtered, core.ColDiscipline, core.ColMontant))
	view.MeansMood = means(core.MeanBy(filtered, core.ColMood, core.ColMontant))

	s.render(w, r, "stats.html", view)
}

// writeChart buffers a chart so that a drawing error becomes a 500.
func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, contentType string, draw func(io.Writer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		s.logger.WithComponent(applog.ComponentRender).ErrorContext(r.Context(), "Chart rendering failed",
			applog.FieldPath, r.URL.Path, applog.FieldError, err)
		http.Error(w, "chart error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) trend(r *http.Request) []render.TrendPoint {
	log, _ := s.sessionLog(r)
	return render.BuildTrend(render.ComplianceMarks(log))
}

func (s *Server) calendar(r *http.Request) render.Calendar {
	log, _ := s.sessionLog(r)
	m := ParseMonthParams(r.URL.Query(), s.now())
	return render.BuildCalendar(render.DayAmounts(log), m.Year, m.Month)
}

func (s *Server) handleTrendSVG(w http.ResponseWriter, r *http.Request) {
	pts := s.trend(r)
	s.writeChart(w, r, "image/svg+xml", func(w io.Writer) error { return render.TrendSVG(w, pts) })
}

func (s *Server) handleTrendPNG(w http.ResponseWriter, r *http.Request) {
	pts := s.trend(r)
	s.writeChart(w, r, "image/png", func(w io.Writer) error { return render.TrendPNG(w, pts) })
}

func (s *Server) handleCalendarSVG(w http.ResponseWriter, r *http.Request) {
	cal := s.calendar(r)
	s.writeChart(w, r, "image/svg+xml", func(w io.Writer) error { return render.CalendarSVG(w, cal) })
}

func (s *Server) handleCalendarPNG(w http.ResponseWriter, r *http.Request) {
	cal := s.calendar(r)
	s.writeChart(w, r, "image/png", func(w io.Writer) error { return render.CalendarPNG(w, cal) })
}
