package core

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// SessionFilter narrows the session log. Zero fields do not filter.
type SessionFilter struct {
	Year  int
	Month time.Month
	From  time.Time
	To    time.Time
}

// FilterSessions keeps rows with a parseable Date matching f. Rows whose
// date cannot be read are dropped.
func FilterSessions(t Table, f SessionFilter) Table {
	out := Table{Columns: t.Columns}
	for r := range t.Rows {
		d, ok := rowDate(t, r)
		if !ok {
			continue
		}
		if f.Year != 0 && d.Year() != f.Year {
			continue
		}
		if f.Month != 0 && d.Month() != f.Month {
			continue
		}
		day := DayOf(d)
		if !f.From.IsZero() && day.Before(DayOf(f.From)) {
			continue
		}
		if !f.To.IsZero() && day.After(DayOf(f.To)) {
			continue
		}
		out.Rows = append(out.Rows, t.Rows[r])
	}
	return out
}

func rowDate(t Table, r int) (time.Time, bool) {
	v := t.Cell(r, ColDate)
	if d, ok := v.Time(); ok {
		return d, true
	}
	return ParseDate(v.String())
}

// Count is the number of rows holding one label.
type Count struct {
	Label string
	N     int
}

// ValueCounts counts non-empty labels of a column, most frequent first,
// ties by label.
func ValueCounts(t Table, column string) []Count {
	i := t.Index(column)
	if i < 0 {
		return nil
	}
	seen := map[string]int{}
	for _, row := range t.Rows {
		if i >= len(row) || row[i].IsEmpty() {
			continue
		}
		seen[row[i].String()]++
	}
	out := make([]Count, 0, len(seen))
	for k, n := range seen {
		out = append(out, Count{Label: k, N: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].N != out[b].N {
			return out[a].N > out[b].N
		}
		return out[a].Label < out[b].Label
	})
	return out
}

// GroupMean is the mean of a numeric column within one label.
type GroupMean struct {
	Label string
	Mean  decimal.Decimal
	N     int
}

// MeanBy averages valueCol per label of groupCol. Rows with an empty label
// are skipped; unparseable values count as 0.
func MeanBy(t Table, groupCol, valueCol string) []GroupMean {
	gi, vi := t.Index(groupCol), t.Index(valueCol)
	if gi < 0 || vi < 0 {
		return nil
	}
	sums := map[string]decimal.Decimal{}
	counts := map[string]int{}
	var order []string
	for _, row := range t.Rows {
		if gi >= len(row) || row[gi].IsEmpty() {
			continue
		}
		label := row[gi].String()
		if _, ok := counts[label]; !ok {
			order = append(order, label)
		}
		d := decimal.Zero
		if vi < len(row) {
			if v, ok := row[vi].Decimal(); ok {
				d = v
			}
		}
		sums[label] = sums[label].Add(d)
		counts[label]++
	}
	sort.Strings(order)
	out := make([]GroupMean, 0, len(order))
	for _, label := range order {
		n := counts[label]
		out = append(out, GroupMean{
			Label: label,
			Mean:  sums[label].Div(decimal.NewFromInt(int64(n))).Round(2),
			N:     n,
		})
	}
	return out
}

// Point is one (x, y) sample.
type Point struct {
	X, Y float64
}

// RespectScatter pairs each session's Score_Respect (1 if compliant, 0
// otherwise) with its Montant.
func RespectScatter(t Table) []Point {
	var pts []Point
	for r := range t.Rows {
		x := 0.0
		if Compliant(t.Cell(r, ColRespect).String()) {
			x = 1
		}
		y := 0.0
		if d, ok := t.Cell(r, ColMontant).Decimal(); ok {
			y, _ = d.Float64()
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts
}

// Fit is an ordinary least squares line y = Alpha + Beta·x.
type Fit struct {
	Alpha, Beta float64
}

// At evaluates the line at x.
func (f Fit) At(x float64) float64 { return f.Alpha + f.Beta*x }

// Regression fits pts by OLS. It reports false when fewer than two
// distinct x values are present.
func Regression(pts []Point) (Fit, bool) {
	if len(pts) < 2 {
		return Fit{}, false
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	distinct := false
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
		if p.X != pts[0].X {
			distinct = true
		}
	}
	if !distinct {
		return Fit{}, false
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return Fit{}, false
	}
	return Fit{Alpha: alpha, Beta: beta}, true
}
