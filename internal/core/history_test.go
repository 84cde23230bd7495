package core

import (
	"testing"
	"time"
)

func TestStampAddsTimestampColumn(t *testing.T) {
	tbl := statusTable(Done, NotDone)
	at := time.Date(2024, 5, 1, 14, 3, 22, 0, time.Local)
	st := Stamp(tbl, at)

	if got, want := st.Names(), []string{"Critère", "Statut", TimestampColumn}; len(got) != 3 || got[2] != want[2] {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	for r := range st.Rows {
		if ts := st.Cell(r, TimestampColumn).String(); ts != "2024-05-01 14:03:22" {
			t.Fatalf("timestamp = %q", ts)
		}
		if !st.Cell(r, "Statut").Equal(tbl.Cell(r, "Statut")) {
			t.Fatalf("row %d changed", r)
		}
	}
	if c, _ := st.Column("Critère"); c.ReadOnly {
		t.Fatalf("history columns must not be read-only")
	}
}

func TestAppendHistoryAlignsByName(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 1, 0, time.Local)
	existing := NewTable([]Column{Text("Statut"), Text(TimestampColumn)}, [][]string{{Done, "2023-12-31 10:00:00"}})
	stamped := Stamp(statusTable(NotDone), at)

	out := AppendHistory(existing, stamped)
	if len(out.Rows) != 2 {
		t.Fatalf("rows = %d", len(out.Rows))
	}
	if out.Cell(0, "Statut").String() != Done || !out.Cell(0, "Critère").IsEmpty() {
		t.Fatalf("existing row misaligned: %v", out.Records()[1])
	}
	if out.Cell(0, TimestampColumn).String() != "2023-12-31 10:00:00" {
		t.Fatalf("existing timestamp lost")
	}
	if out.Cell(1, "Statut").String() != NotDone {
		t.Fatalf("new row misaligned")
	}
}

func TestHistorySheetName(t *testing.T) {
	if got := HistorySheet("Suivi"); got != "Suivi_Historique" {
		t.Fatalf("HistorySheet = %q", got)
	}
}
