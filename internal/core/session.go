package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SessionSheet is the sheet holding one row per trading session.
const SessionSheet = "Discipline"

// Session column names, in stored order.
const (
	ColDate        = "Date"
	ColRespect     = "Respect"
	ColValeur      = "Valeur"
	ColMontant     = "Montant"
	ColErreurCle   = "Erreur_Clé"
	ColDiscipline  = "Discipline"
	ColMood        = "Mood"
	ColCommentaire = "Commentaire"
	ColAxeOps      = "Axe_Opérationnel"
	ColAxeFin      = "Axe_Financier"
	ColAxeHumain   = "Axe_Humain"
	ColAxeAlign    = "Axe_Alignement"
	ColCapture     = "Capture"
)

var (
	RespectOptions = []string{"✅ Oui (respecté)", "❌ Non (non respecté)"}

	ErreurCleOptions = []string{
		"Entrée trop rapide sans signal complet 🕐",
		"Revenge trading après une perte 🔥",
		"Ignorer le stop-loss ou le déplacer ⛔",
		"Ne pas accepter une petite perte 💔",
		"Entrées patientes avec setup validé 🎯",
		"Clarté des scénarios (tendance / contre-tendance) 📘",
		"Adaptation du stop (mèche / MM / suiveur) 🧩",
		"Non Respect des TP's 🎯",
	}

	DisciplineOptions = []string{
		"🔴 Session précédente hors plan",
		"🟡 Session mitigée (erreurs et réussites)",
		"🟢 Session conforme au plan",
	}

	MoodOptions = []string{
		"👶 Enfant (émotion impulsive)",
		"🧠 Adulte (rationnel, objectif → à viser)",
		"👮 Parent (auto-jugement, rigidité)",
	}

	AxisOptions = []string{"🟢 Vert", "🟠 Orange", "🔴 Rouge"}

	// Axes are the four health indicators rated per session.
	Axes = []string{"Opérationnel", "Financier", "Humain", "Alignement"}
)

var (
	ErrMissingRespect = errors.New("plan compliance must be selected")
	ErrMissingDate    = errors.New("session date cannot be zero")
)

// SessionColumns is the schema of the session sheet.
func SessionColumns() []Column {
	return []Column{
		Date(ColDate),
		Option(ColRespect, RespectOptions...),
		Number(ColValeur),
		Number(ColMontant),
		Option(ColErreurCle, ErreurCleOptions...),
		Option(ColDiscipline, DisciplineOptions...),
		Option(ColMood, MoodOptions...),
		Text(ColCommentaire),
		Option(ColAxeOps, AxisOptions...),
		Option(ColAxeFin, AxisOptions...),
		Option(ColAxeHumain, AxisOptions...),
		Option(ColAxeAlign, AxisOptions...),
		Text(ColCapture),
	}
}

// SessionEntry is one recorded trading session.
type SessionEntry struct {
	Date       time.Time
	Respect    string
	Montant    decimal.Decimal
	ErreurCle  string
	Discipline string
	Mood       string
	Comment    string
	Axes       map[string]string // keyed by Axes
	Capture    string
}

// Compliant reports whether the plan was respected.
func Compliant(respect string) bool {
	return strings.Contains(respect, "✅")
}

// Valeur is the signed score contribution: +1 when compliant, -1 otherwise.
func Valeur(respect string) int {
	if Compliant(respect) {
		return 1
	}
	return -1
}

func (e SessionEntry) Validate() error {
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(e.Respect) == "" {
		return ErrMissingRespect
	}
	return nil
}

// AppendTo validates the entry against the session schema and appends it
// as a new row of t.
func (e SessionEntry) AppendTo(t *Table) error {
	if err := e.Validate(); err != nil {
		return err
	}
	cells := map[string]string{
		ColRespect:     e.Respect,
		ColErreurCle:   e.ErreurCle,
		ColDiscipline:  e.Discipline,
		ColMood:        e.Mood,
		ColCommentaire: e.Comment,
		ColAxeOps:      e.Axes["Opérationnel"],
		ColAxeFin:      e.Axes["Financier"],
		ColAxeHumain:   e.Axes["Humain"],
		ColAxeAlign:    e.Axes["Alignement"],
		ColCapture:     e.Capture,
	}
	for name := range cells {
		if t.Index(name) < 0 {
			delete(cells, name)
		}
	}
	if err := t.AppendRow(cells); err != nil {
		return err
	}
	row := t.Rows[len(t.Rows)-1]
	if i := t.Index(ColDate); i >= 0 {
		row[i] = DateValue(e.Date.Truncate(time.Second))
	}
	if i := t.Index(ColValeur); i >= 0 {
		row[i] = IntValue(int64(Valeur(e.Respect)))
	}
	if i := t.Index(ColMontant); i >= 0 {
		row[i] = NumberValue(e.Montant)
	}
	return nil
}

// SessionRecap summarizes the session log for the dashboard.
type SessionRecap struct {
	Count      int
	Cumulative decimal.Decimal
	Last       map[string]string
}

// Recap returns the last row's labels and the cumulative Montant.
func Recap(t Table) SessionRecap {
	r := SessionRecap{Count: len(t.Rows), Cumulative: MonetaryTotal(t, ColMontant), Last: map[string]string{}}
	if len(t.Rows) == 0 {
		return r
	}
	last := len(t.Rows) - 1
	for _, c := range t.Columns {
		r.Last[c.Name] = t.Cell(last, c.Name).String()
	}
	return r
}
