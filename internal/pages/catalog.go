// Package pages declares every editable sheet of the journal: its schema,
// default rows and derived metric. One generic load/edit/save routine in
// the HTTP layer drives all of them.
package pages

import (
	"fmt"
	"strconv"

	"tradejournal/internal/core"
)

// Metric is a derived value shown next to a grid.
type Metric struct {
	Label string
	Value string
}

// Page is one editable sheet.
type Page struct {
	Slug    string
	Sheet   string
	Title   string
	Columns []core.Column
	Rows    [][]string

	// FixedRows pages cannot add or remove rows.
	FixedRows bool
	// AutoSave pages persist (with history) on every edit.
	AutoSave bool
	// Metric is nil for pages without a derived value.
	Metric func(core.Table) Metric
}

// Default returns a fresh default table for the page.
func (p Page) Default() core.Table {
	return core.NewTable(p.Columns, p.Rows)
}

// Compute returns the page metric for t, or false when the page has none.
func (p Page) Compute(t core.Table) (Metric, bool) {
	if p.Metric == nil {
		return Metric{}, false
	}
	return p.Metric(t), true
}

var statusOptions = []string{core.Done, core.NotDone}

func status() core.Column { return core.Option("Statut", statusOptions...) }

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// columnsOf zips parallel column slices into rows.
func columnsOf(cols ...[]string) [][]string {
	if len(cols) == 0 {
		return nil
	}
	rows := make([][]string, len(cols[0]))
	for r := range rows {
		rows[r] = make([]string, len(cols))
		for c := range cols {
			rows[r][c] = cols[c][r]
		}
	}
	return rows
}

func doneRatio(label string) func(core.Table) Metric {
	return func(t core.Table) Metric {
		ok := core.CountDone(t, "Statut", core.Done)
		return Metric{Label: label, Value: fmt.Sprintf("%d/%d", ok, len(t.Rows))}
	}
}

func total(label, column string) func(core.Table) Metric {
	return func(t core.Table) Metric {
		return Metric{Label: label, Value: FormatEuros(core.MonetaryTotal(t, column))}
	}
}

// MonthColumns are the checkable columns of the psychological checkpoint.
var MonthColumns = func() []string {
	out := make([]string, 12)
	for i := range out {
		out[i] = "M" + strconv.Itoa(i+1)
	}
	return out
}()

var catalog = []Page{
	{
		Slug:  "suivi",
		Sheet: "Suivi",
		Title: "Dashboard CEO",
		Columns: []core.Column{
			core.Text("Indicateur").Locked(),
			core.Text("Valeur cible"),
			core.Text("Valeur actuelle"),
			status(),
		},
		Rows: columnsOf(
			[]string{
				"Salaire net actuel (S)",
				"Dépenses mensuelles (E)",
				"Runway cible (12 mois E)",
				"Objectif revenu net",
				"Objectif revenu brut (prop firm 80/20)",
				"Seuil quittable (0,8S)",
				"R cible/mois (prop 100k, r=0,5%)",
				"Discipline cible",
				"Drawdown max autorisé",
			},
			[]string{
				"2 100 €", "1 400 €", "16 800 €", "2 500 €/mois", "3 125 €/mois",
				"1 680 €/mois", "0,50 %", "≥ 90 %", "≤ 10 %",
			},
			repeat("—", 9),
			repeat(core.NotDone, 9),
		),
		FixedRows: true,
		Metric: func(t core.Table) Metric {
			ok := core.CountDone(t, "Statut", core.Done)
			return Metric{Label: "Progression globale", Value: fmt.Sprintf("%d/%d validés", ok, len(t.Rows))}
		},
	},
	{
		Slug:    "matrice",
		Sheet:   "Matrice",
		Title:   "Matrice Sortie de Job",
		Columns: []core.Column{core.Text("Critère"), status()},
		Rows: columnsOf(
			[]string{
				"Revenu net ≥ 2 500 €/mois",
				"DD 12 mois ≤ 15 %",
				"Runway ≥ 16 800 €",
				"Discipline ≥ 90 %",
				"Règles rouges = 0 rupture",
			},
			repeat(core.NotDone, 5),
		),
		FixedRows: true,
		Metric:    doneRatio("Critères validés"),
	},
	{
		Slug:  "objectif-24m",
		Sheet: "Objectif_24M",
		Title: "Objectif à 24 mois",
		Columns: []core.Column{
			core.Text("Trimestre"),
			core.Text("Objectifs principaux"),
			core.Text("Matelas visé (€)"),
			core.Text("Comptes Prop validés"),
			core.Text("Revenus Trad"),
			core.Text("Discipline / Notes"),
			status(),
		},
		Rows: columnsOf(
			[]string{
				"T1 (0–3m)", "T2 (4–6m)", "T3 (7–9m)", "T4 (10–12m)",
				"T5 (13–15m)", "T6 (16–18m)", "T7 (19–21m)", "T8 (22–24m)",
			},
			[]string{
				"1er compte prop validé", "Payout confirmé + setup perso", "2ème compte prop",
				"Matelas complet", "Track record régulier", "Payouts stables",
				"Consolidation", "Bascule complète",
			},
			[]string{"3 900", "6 500", "10 400", "15 600", "15 600", "15 600", "15 600", "15 600"},
			[]string{"", "", "", "", "2-3", "2-3", "2-3", "2-3"},
			[]string{"1er payout", "500–1000", "1000–2000", "2000+", "2000–3000", "2500+", "2500+", "2500+"},
			[]string{
				"Suivi impatience", "Logger amélioré", "Routine fixée", "Discipline stable",
				"Respect pertes max", "Test de vie sans salaire", "Fiscalité en place", "Routine consolidée",
			},
			repeat(core.NotDone, 8),
		),
		FixedRows: true,
		Metric:    doneRatio("Trimestres atteints"),
	},
	{
		Slug:  "matelas",
		Sheet: "Matelas_Secu",
		Title: "Matelas de Sécurité",
		Columns: []core.Column{
			core.Number("Mois").Locked(),
			core.Number("Épargne prévisionnelle (€)"),
			core.Text("Épargne réelle (€)"),
			core.Number("Cumul (€)"),
			core.Number("Objectif (€)"),
			status(),
		},
		Rows: func() [][]string {
			rows := make([][]string, 24)
			for i := range rows {
				m := i + 1
				rows[i] = []string{strconv.Itoa(m), "650", "—", strconv.Itoa(m * 650), "15600", core.NotDone}
			}
			return rows
		}(),
		FixedRows: true,
		Metric:    doneRatio("Mois validés"),
	},
	{
		Slug:  "prop-firm",
		Sheet: "Prop_Firm",
		Title: "Prop Firm",
		Columns: []core.Column{
			core.Date("Date"),
			core.Text("Prop Firm"),
			core.Number("Taille Compte (€)"),
			core.Option("Statut", "En cours", "Validé", "Perdu"),
			core.Number("Payout (€)"),
			core.Text("Commentaires"),
		},
		Rows:   [][]string{{"", "", "", "En cours", "", ""}},
		Metric: total("Total des payouts", "Payout (€)"),
	},
	{
		Slug:  "projection",
		Sheet: "Projection_Revenu",
		Title: "Projection de Revenu",
		Columns: []core.Column{
			core.Text("Phase"),
			core.Text("Capital Prop Cumulé ($)"),
			core.Text("Perf cible (%/mois)"),
			core.Text("Profit brut ($)"),
			core.Text("Split net (80%)"),
			core.Text("Revenu net visé (€)"),
		},
		Rows: columnsOf(
			[]string{"M0-6", "M6-12", "M12-18", "M18-24"},
			[]string{"50K", "100-150K", "200-300K", "200-300K"},
			repeat("5%", 4),
			[]string{"2 500", "5 000 - 7 500", "10 000 - 15 000", "10 000 - 15 000"},
			[]string{"2 000", "4 000 - 6 000", "8 000 - 12 000", "8 000 - 12 000"},
			[]string{"500 - 1000", "1500 - 2500", "3000 - 4000", "2500 - 3500"},
		),
		FixedRows: true,
	},
	{
		Slug:  "kpi",
		Sheet: "Objectifs_KPI",
		Title: "Objectifs et KPI",
		Columns: []core.Column{
			core.Number("Mois"),
			core.Text("Respect du plan (%)"),
			core.Text("Drawdown max (%)"),
			core.Text("R/R moyen"),
			core.Number("Nb jours verts"),
			core.Number("Nb jours rouges"),
			core.Text("Taux de conformité (%)"),
		},
		Rows: [][]string{{"1", "", "", "", "", "", ""}},
	},
	{
		Slug:  "journal",
		Sheet: "Journal_Mensuel",
		Title: "Journal Mensuel",
		Columns: []core.Column{
			core.Number("Mois"),
			core.Number("Gains/Pertes (€)"),
			core.Number("Nb trades"),
			core.Text("Respect du plan (%)"),
			core.Text("Sentiment général (discipline / impatience / focus)"),
			core.Text("Commentaires"),
		},
		Rows:   [][]string{{"1", "", "", "", "", ""}},
		Metric: total("Résultat cumulé", "Gains/Pertes (€)"),
	},
	{
		Slug:  "checkpoint",
		Sheet: "Checkpoint_Psycho",
		Title: "CheckPoint Psycho",
		Columns: func() []core.Column {
			cols := []core.Column{core.Text("Checklist mensuelle").Locked()}
			for _, m := range MonthColumns {
				cols = append(cols, core.Option(m, statusOptions...))
			}
			return cols
		}(),
		Rows: func() [][]string {
			questions := []string{
				"Ai-je respecté la perte max jour/mois ?",
				"Ai-je été patient ?",
				"Ai-je tenu ma routine pré et post trading ?",
				"Ai-je relu mon plan chaque semaine ?",
				"Ai-je respecté mes heures de trading ?",
				"Ai-je noté mes émotions dans le journal ?",
			}
			rows := make([][]string, len(questions))
			for i, q := range questions {
				rows[i] = append([]string{q}, repeat(core.NotDone, 12)...)
			}
			return rows
		}(),
		FixedRows: true,
		AutoSave:  true,
		Metric: func(t core.Table) Metric {
			done, possible := core.GridCompletion(t, MonthColumns, core.Done)
			return Metric{Label: "Score discipline", Value: fmt.Sprintf("%.1f %%", core.ScorePercent(done, possible))}
		},
	},
	{
		Slug:  "se-comptes",
		Sheet: "SE_Resume_Compte",
		Title: "Stratégie Entreprise · Comptes & rôles",
		Columns: []core.Column{
			core.Text("Compte"),
			core.Text("Usage"),
			core.Text("Type de flux"),
			core.Text("Fiscalité"),
			core.Option("Liaison comptable", "Xero", "Non"),
		},
		Rows: columnsOf(
			[]string{"Wise Business", "Andbank (perso)", "Wise Personnel"},
			[]string{
				"Pro (SLU) : réception payouts, charges, conversions USD→EUR, compta",
				"Perso local : salaire/dividendes, épargne, paiements",
				"Voyages / loisirs internationaux",
			},
			[]string{
				"Entrées Prop / charges / conversions",
				"Salaire / dividendes depuis Wise Business",
				"Alimentation ponctuelle depuis Andbank",
			},
			[]string{"IS Andorre ~10%", "IRPF Andorre ≤ 10%", "Net (fiscalité amont déjà traitée)"},
			[]string{"Xero", "Non", "Non"},
		),
		AutoSave: true,
	},
	{
		Slug:    "se-flux",
		Sheet:   "SE_Flux_Mensuel",
		Title:   "Stratégie Entreprise · Flux mensuel",
		Columns: []core.Column{core.Number("Ordre"), core.Text("Étape"), core.Text("Statut / Note")},
		Rows: columnsOf(
			[]string{"1", "2", "3", "4", "5"},
			[]string{
				"Payouts Prop Firms → Wise Business (USD)",
				"Paiement des outils & charges pro (Wise Business)",
				"Sync comptable Wise Business → Xero (validation)",
				"Conversion USD→EUR (Wise Business) si besoin",
				"Virement Wise Business → Andbank (salaire/dividende) → Wise Personnel (voyages)",
			},
			repeat("", 5),
		),
		AutoSave: true,
	},
	{
		Slug:    "se-notes",
		Sheet:   "SE_Notes",
		Title:   "Stratégie Entreprise · Notes",
		Columns: []core.Column{core.Text("Note")},
		Rows: [][]string{
			{"• Utiliser Wise Business uniquement pour le pro"},
			{"• Andbank = socle perso local"},
			{"• Wise Personnel = voyages / loisirs"},
		},
		AutoSave: true,
	},
}

// All returns every page in menu order.
func All() []Page {
	return append([]Page(nil), catalog...)
}

// Lookup finds a page by slug.
func Lookup(slug string) (Page, bool) {
	for _, p := range catalog {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}

// Sheets returns every live sheet name the journal writes, the session
// log included.
func Sheets() []string {
	out := []string{core.SessionSheet}
	for _, p := range catalog {
		out = append(out, p.Sheet)
	}
	return out
}

// Session describes the session log sheet. It is appended to by the
// dashboard form rather than edited as a grid.
func Session() Page {
	return Page{
		Slug:    "sessions",
		Sheet:   core.SessionSheet,
		Title:   "Sessions",
		Columns: core.SessionColumns(),
	}
}
