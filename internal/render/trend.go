package render

import (
	"sort"
	"time"

	"tradejournal/internal/core"
)

// ComplianceMark is one session's +1 / -1 contribution.
type ComplianceMark struct {
	Date  time.Time
	Value int
}

type TrendPoint struct {
	Date       time.Time
	Cumulative int
}

// BuildTrend orders marks by date, keeping input order for equal dates,
// and accumulates their values.
func BuildTrend(marks []ComplianceMark) []TrendPoint {
	sorted := append([]ComplianceMark(nil), marks...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	out := make([]TrendPoint, len(sorted))
	sum := 0
	for i, m := range sorted {
		sum += m.Value
		out[i] = TrendPoint{Date: m.Date, Cumulative: sum}
	}
	return out
}

// ComplianceMarks reads Valeur from a session log. Rows without a usable
// date are dropped; a non-numeric Valeur counts as zero.
func ComplianceMarks(t core.Table) []ComplianceMark {
	var out []ComplianceMark
	for r := range t.Rows {
		at, ok := rowTime(t, r)
		if !ok {
			continue
		}
		v := 0
		if d, ok := t.Cell(r, core.ColValeur).Decimal(); ok {
			v = int(d.IntPart())
		}
		out = append(out, ComplianceMark{Date: at, Value: v})
	}
	return out
}
