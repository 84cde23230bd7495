package core

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func TestCompletionRatio(t *testing.T) {
	cases := []struct {
		statuses []string
		want     float64
	}{
		{nil, 0},
		{[]string{Done, Done}, 1},
		{[]string{NotDone, NotDone, NotDone}, 0},
		{[]string{Done, NotDone, NotDone, Done}, 0.5},
	}
	for i, tc := range cases {
		got := CompletionRatio(statusTable(tc.statuses...), "Statut", Done)
		if got != tc.want {
			t.Fatalf("case %d: ratio = %v, want %v", i, got, tc.want)
		}
	}
}

func TestCompletionRatioBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		statuses := rapid.SliceOf(rapid.SampledFrom([]string{Done, NotDone, ""})).Draw(t, "statuses")
		r := CompletionRatio(statusTable(statuses...), "Statut", Done)
		if r < 0 || r > 1 {
			t.Fatalf("ratio %v out of bounds", r)
		}
	})
}

func TestGridCompletionCountsEachColumn(t *testing.T) {
	cols := []Column{Text("Checklist mensuelle")}
	months := make([]string, 12)
	for i := range months {
		months[i] = fmt.Sprintf("M%d", i+1)
		cols = append(cols, Option(months[i], Done, NotDone))
	}
	rows := make([][]string, 6)
	for r := range rows {
		rows[r] = []string{"q"}
		for m := 0; m < 12; m++ {
			s := NotDone
			if r == 0 || m == 0 {
				s = Done
			}
			rows[r] = append(rows[r], s)
		}
	}
	tbl := NewTable(cols, rows)
	done, possible := GridCompletion(tbl, months, Done)
	// Row 0 has 12, column M1 adds 5 more.
	if done != 17 || possible != 72 {
		t.Fatalf("done=%d possible=%d", done, possible)
	}
	if got := ScorePercent(done, possible); got != 23.6 {
		t.Fatalf("score = %v, want 23.6", got)
	}
}

func TestMonetaryTotalWithBadData(t *testing.T) {
	tbl := NewTable([]Column{Number("Payout (€)")}, [][]string{{"10"}, {"abc"}, {""}, {"5"}})
	got := MonetaryTotal(tbl, "Payout (€)")
	if !got.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("total = %s, want 15", got)
	}
	if !MonetaryTotal(tbl, "missing").IsZero() {
		t.Fatalf("missing column should sum to zero")
	}
}

func TestScorePercent(t *testing.T) {
	cases := []struct {
		done, possible int
		want           float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{72, 72, 100},
		{0, 72, 0},
	}
	for _, tc := range cases {
		if got := ScorePercent(tc.done, tc.possible); got != tc.want {
			t.Errorf("ScorePercent(%d, %d) = %v, want %v", tc.done, tc.possible, got, tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34 €", "12.34", true},
		{"1 234,5", "1234.5", true},
		{"1 600", "1600", true},
		{"-5", "-5", true},
		{"+7", "7", true},
		{"1,234.50", "1234.5", true},
		{"1.234,50", "1234.5", true},
		{"-1.234.567,8 €", "-1234567.8", true},
		{"1.234.567", "1234567", true},
		{"1,234,567", "1234567", true},
		{"12,5", "12.5", true},
		{"1,2,3.4", "123.4", true},
		{"—", "0", false},
		{"abc", "0", false},
		{"", "0", false},
		{"1-2", "0", false},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseAmount(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got.String() != tc.want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
