package core

import "time"

const (
	// HistorySuffix is appended to a sheet name to get its history sheet.
	HistorySuffix = "_Historique"
	// TimestampColumn holds the save time of each history row.
	TimestampColumn = "Horodatage"
	// TimestampLayout formats TimestampColumn values.
	TimestampLayout = dateTimeLayout
)

// HistorySheet returns the history sheet name paired with sheet.
func HistorySheet(sheet string) string { return sheet + HistorySuffix }

// HistoryColumns is the history schema for a source schema.
func HistoryColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols)+1)
	for _, c := range cols {
		if c.Name == TimestampColumn {
			continue
		}
		c.ReadOnly = false
		out = append(out, c)
	}
	return append(out, Text(TimestampColumn))
}

// Stamp copies t and sets the timestamp column of every row to at.
func Stamp(t Table, at time.Time) Table {
	out := Table{Columns: HistoryColumns(t.Columns)}
	ts := TextValue(at.Format(TimestampLayout))
	for _, row := range t.Rows {
		rec := make([]Value, len(out.Columns))
		for i, c := range out.Columns[:len(out.Columns)-1] {
			if j := t.Index(c.Name); j >= 0 && j < len(row) {
				rec[i] = row[j]
			}
		}
		rec[len(rec)-1] = ts
		out.Rows = append(out.Rows, rec)
	}
	return out
}

// AppendHistory concatenates stamped rows after the existing history. The
// result uses stamped's columns; existing rows are aligned by column name
// and cells with no matching column are left empty.
func AppendHistory(existing, stamped Table) Table {
	out := Table{Columns: stamped.Columns}
	for r := range existing.Rows {
		rec := make([]Value, len(out.Columns))
		for i, c := range out.Columns {
			rec[i] = existing.Cell(r, c.Name)
		}
		out.Rows = append(out.Rows, rec)
	}
	for _, row := range stamped.Rows {
		out.Rows = append(out.Rows, append([]Value(nil), row...))
	}
	return out
}
