// Package render turns journal tables into chart models and draws them as
// SVG or PNG.
package render

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tradejournal/internal/core"
)

// Heatmap colours.
const (
	ColorGain    = "#86efac"
	ColorLoss    = "#fca5a5"
	ColorFlat    = "#e5e7eb"
	ColorNoData  = "#f8fafc"
	ColorOutside = "rgba(0,0,0,0)"
)

// Weekdays are the calendar column headers, Monday first.
var Weekdays = []string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"}

// DayAmount is a dated amount, typically one session's Montant.
type DayAmount struct {
	Date   time.Time
	Amount decimal.Decimal
}

type CalendarCell struct {
	Date    time.Time
	InMonth bool
	HasData bool
	Net     decimal.Decimal
	Color   string
	// Label is empty outside the month.
	Label string
}

// EmptyMonthNotice replaces the calendar of a month without amounts.
const EmptyMonthNotice = "Aucune donnée disponible pour ce mois."

type Calendar struct {
	Year  int
	Month time.Month
	Weeks [][7]CalendarCell
	// Empty is set when no amount falls in the month.
	Empty bool
}

// WeekLabel returns the row label of week i.
func (c Calendar) WeekLabel(i int) string { return fmt.Sprintf("Semaine %d", i+1) }

// BuildCalendar sums amounts per calendar day and lays out the month as
// full Monday-first weeks.
func BuildCalendar(entries []DayAmount, year int, month time.Month) Calendar {
	net := map[time.Time]decimal.Decimal{}
	for _, e := range entries {
		d := core.DayOf(e.Date)
		if d.Year() != year || d.Month() != month {
			continue
		}
		net[d] = net[d].Add(e.Amount)
	}

	cal := Calendar{Year: year, Month: month, Empty: len(net) == 0}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	day := first.AddDate(0, 0, -offset)
	for {
		var week [7]CalendarCell
		for i := range week {
			week[i] = cell(day, month, net)
			day = day.AddDate(0, 0, 1)
		}
		cal.Weeks = append(cal.Weeks, week)
		if day.Month() != month {
			break
		}
	}
	return cal
}

func cell(day time.Time, month time.Month, net map[time.Time]decimal.Decimal) CalendarCell {
	c := CalendarCell{Date: day, InMonth: day.Month() == month}
	if !c.InMonth {
		c.Color = ColorOutside
		return c
	}
	v, ok := net[day]
	if !ok {
		c.Color = ColorNoData
		c.Label = fmt.Sprint(day.Day())
		return c
	}
	c.HasData, c.Net = true, v
	switch v.Sign() {
	case 1:
		c.Color = ColorGain
	case -1:
		c.Color = ColorLoss
	default:
		c.Color = ColorFlat
	}
	f, _ := v.Float64()
	c.Label = fmt.Sprintf("%d %+.2f€", day.Day(), f)
	return c
}

// DayAmounts extracts dated amounts from a session log. Rows with an
// unreadable date are skipped; unreadable amounts count as zero.
func DayAmounts(t core.Table) []DayAmount {
	var out []DayAmount
	for r := range t.Rows {
		at, ok := rowTime(t, r)
		if !ok {
			continue
		}
		amt, _ := t.Cell(r, core.ColMontant).Decimal()
		out = append(out, DayAmount{Date: at, Amount: amt})
	}
	return out
}

func rowTime(t core.Table, r int) (time.Time, bool) {
	v := t.Cell(r, core.ColDate)
	if at, ok := v.Time(); ok {
		return at, true
	}
	return core.ParseDate(v.String())
}
