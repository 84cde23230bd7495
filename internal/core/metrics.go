package core

import (
	"github.com/shopspring/decimal"
)

// Done and NotDone are the status markers used by checkable columns.
const (
	Done    = "✅"
	NotDone = "❌"
)

// CountDone counts rows whose column equals marker.
func CountDone(t Table, column, marker string) int {
	i := t.Index(column)
	if i < 0 {
		return 0
	}
	n := 0
	for _, row := range t.Rows {
		if i < len(row) && row[i].String() == marker {
			n++
		}
	}
	return n
}

// CompletionRatio is the share of rows marked done, in [0, 1]. An empty
// table yields 0.
func CompletionRatio(t Table, column, marker string) float64 {
	if len(t.Rows) == 0 {
		return 0
	}
	return float64(CountDone(t, column, marker)) / float64(len(t.Rows))
}

// GridCompletion counts every (row, column) pair of the listed columns
// independently. possible is rows × columns.
func GridCompletion(t Table, columns []string, marker string) (done, possible int) {
	for _, name := range columns {
		if t.Index(name) < 0 {
			continue
		}
		done += CountDone(t, name, marker)
		possible += len(t.Rows)
	}
	return done, possible
}

// MonetaryTotal sums a column; unparseable or missing values count as 0.
func MonetaryTotal(t Table, column string) decimal.Decimal {
	i := t.Index(column)
	total := decimal.Zero
	if i < 0 {
		return total
	}
	for _, row := range t.Rows {
		if i >= len(row) {
			continue
		}
		if d, ok := row[i].Decimal(); ok {
			total = total.Add(d)
		}
	}
	return total
}

// ScorePercent is round(100 × done / possible, 1), or 0 when possible is 0.
func ScorePercent(done, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(done)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(possible))).
		Round(1)
	f, _ := pct.Float64()
	return f
}
