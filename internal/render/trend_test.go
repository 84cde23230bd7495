package render

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"tradejournal/internal/core"
)

func TestBuildTrendSortsStably(t *testing.T) {
	d1 := day(2024, 5, 1)
	d2 := day(2024, 5, 2)
	marks := []ComplianceMark{
		{d2, -1},
		{d1, 1},
		{d1, 1},
		{d2, 1},
	}
	got := BuildTrend(marks)
	want := []int{1, 2, 1, 2}
	for i, p := range got {
		if p.Cumulative != want[i] {
			t.Fatalf("point %d = %d, want %d (%+v)", i, p.Cumulative, want[i], got)
		}
	}
	if !got[2].Date.Equal(d2) {
		t.Fatalf("equal dates must keep input order")
	}
	if marks[0].Date != d2 {
		t.Fatalf("input must not be reordered")
	}
}

func TestComplianceMarks(t *testing.T) {
	tbl := core.Table{Columns: core.SessionColumns()}
	tbl.AppendValues(core.DateValue(day(2024, 5, 1)), core.OptionValue(core.RespectOptions[0]), core.IntValue(1))
	tbl.AppendValues(core.DateValue(day(2024, 5, 2)), core.OptionValue(core.RespectOptions[1]), core.TextValue("n/a"))
	tbl.AppendValues(core.TextValue(""), core.OptionValue(core.RespectOptions[1]), core.IntValue(-1))
	marks := ComplianceMarks(tbl)
	if len(marks) != 2 || marks[0].Value != 1 || marks[1].Value != 0 {
		t.Fatalf("marks = %+v", marks)
	}
}

func TestBuildTrendLastPointIsTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "n")
		marks := make([]ComplianceMark, n)
		total := 0
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := range marks {
			v := rapid.SampledFrom([]int{-1, 1}).Draw(t, "v")
			offset := rapid.IntRange(0, 10).Draw(t, "offset")
			marks[i] = ComplianceMark{Date: base.AddDate(0, 0, offset), Value: v}
			total += v
		}
		got := BuildTrend(marks)
		if len(got) != n {
			t.Fatalf("len = %d, want %d", len(got), n)
		}
		for i := 1; i < len(got); i++ {
			if got[i].Date.Before(got[i-1].Date) {
				t.Fatalf("points out of order at %d", i)
			}
			if d := got[i].Cumulative - got[i-1].Cumulative; d != 1 && d != -1 {
				t.Fatalf("step %d = %d", i, d)
			}
		}
		if n > 0 && got[n-1].Cumulative != total {
			t.Fatalf("last = %d, want %d", got[n-1].Cumulative, total)
		}
	})
}
