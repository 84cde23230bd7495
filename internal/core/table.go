package core

import (
	"fmt"
	"strings"
)

// Table is a named sheet's content: ordered columns and ordered rows.
type Table struct {
	Columns []Column
	Rows    [][]Value
}

// NewTable builds a table from a schema and rows of raw strings. Cells are
// coerced to their column kind.
func NewTable(cols []Column, rows [][]string) Table {
	t := Table{Columns: append([]Column(nil), cols...)}
	for _, raw := range rows {
		row := make([]Value, len(cols))
		for i, c := range cols {
			if i < len(raw) {
				row[i] = c.Coerce(raw[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Index returns the position of the named column or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the descriptor of the named column.
func (t Table) Column(name string) (Column, bool) {
	if i := t.Index(name); i >= 0 {
		return t.Columns[i], true
	}
	return Column{}, false
}

// Cell returns the value at row r in the named column; empty when either
// is out of range.
func (t Table) Cell(r int, name string) Value {
	i := t.Index(name)
	if i < 0 || r < 0 || r >= len(t.Rows) || i >= len(t.Rows[r]) {
		return Value{}
	}
	return t.Rows[r][i]
}

// SetCell validates raw against the column and stores it.
func (t *Table) SetCell(r int, name, raw string) error {
	i := t.Index(name)
	if i < 0 {
		return fmt.Errorf("%q: %w", name, ErrUnknownColumn)
	}
	if r < 0 || r >= len(t.Rows) {
		return fmt.Errorf("row %d: %w", r, ErrRowOutOfRange)
	}
	col := t.Columns[i]
	v, err := col.Parse(raw)
	if err != nil {
		return fmt.Errorf("row %d: %w", r+1, err)
	}
	if col.ReadOnly && !v.Equal(t.Rows[r][i]) {
		return fmt.Errorf("row %d: %s: %w", r+1, col.Name, ErrReadOnly)
	}
	t.Rows[r][i] = v
	return nil
}

// AppendRow validates the given cells by column name and appends a row.
// Columns not present in cells are left empty.
func (t *Table) AppendRow(cells map[string]string) error {
	row := make([]Value, len(t.Columns))
	for name := range cells {
		if t.Index(name) < 0 {
			return fmt.Errorf("%q: %w", name, ErrUnknownColumn)
		}
	}
	for i, c := range t.Columns {
		raw, ok := cells[c.Name]
		if !ok {
			continue
		}
		v, err := c.Parse(raw)
		if err != nil {
			return err
		}
		row[i] = v
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// AppendValues appends a row of already-typed values; missing trailing
// cells are left empty.
func (t *Table) AppendValues(values ...Value) {
	row := make([]Value, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

// DeleteRow removes row r.
func (t *Table) DeleteRow(r int) error {
	if r < 0 || r >= len(t.Rows) {
		return fmt.Errorf("row %d: %w", r, ErrRowOutOfRange)
	}
	t.Rows = append(t.Rows[:r], t.Rows[r+1:]...)
	return nil
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	out := Table{Columns: make([]Column, len(t.Columns)), Rows: make([][]Value, len(t.Rows))}
	copy(out.Columns, t.Columns)
	for i, row := range t.Rows {
		out.Rows[i] = append([]Value(nil), row...)
	}
	return out
}

// Names returns the column names in order.
func (t Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Records serializes the table as a header row followed by data rows.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Names())
	for _, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i := range t.Columns {
			if i < len(row) {
				rec[i] = row[i].String()
			}
		}
		out = append(out, rec)
	}
	return out
}

// FromRecords decodes a header + rows grid. Columns known to schema keep
// their declared kind; unknown columns are read as text. Blank header
// cells and fully blank trailing rows are dropped.
func FromRecords(records [][]string, schema []Column) Table {
	if len(records) == 0 {
		return Table{}
	}
	known := make(map[string]Column, len(schema))
	for _, c := range schema {
		known[c.Name] = c
	}

	header := records[0]
	var cols []Column
	var pos []int
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		c, ok := known[h]
		if !ok {
			c = Text(h)
		}
		cols = append(cols, c)
		pos = append(pos, i)
	}

	t := Table{Columns: cols}
	kept := 0
	for _, rec := range records[1:] {
		row := make([]Value, len(cols))
		blank := true
		for j, c := range cols {
			if p := pos[j]; p < len(rec) {
				row[j] = c.Coerce(rec[p])
				if !row[j].IsEmpty() {
					blank = false
				}
			}
		}
		t.Rows = append(t.Rows, row)
		if !blank {
			kept = len(t.Rows)
		}
	}
	t.Rows = t.Rows[:kept]
	return t
}

// Reconcile adds every column of def missing from t, with empty values,
// at the end. Existing columns and their values are kept as they are.
func Reconcile(t, def Table) Table {
	out := t.Clone()
	for _, c := range def.Columns {
		if out.Index(c.Name) >= 0 {
			continue
		}
		out.Columns = append(out.Columns, c)
		for i := range out.Rows {
			out.Rows[i] = append(out.Rows[i], Value{})
		}
	}
	return out
}
