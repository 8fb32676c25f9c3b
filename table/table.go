/*
Package table provides the flat-table model the reconciliation pipeline
operates on, plus the persistence interface to the named-sheet backing store.

PURPOSE:
  Every input and output of the pipeline is an ordered sequence of named-column
  rows of text cells, exactly as a spreadsheet hands them over. The pipeline
  never talks to a spreadsheet API directly; it reads and writes Tables through
  the Store interface.

KEY CONCEPTS IN THIS FILE:
  - Table:   ordered columns + rows of string cells
  - Columns: resolved column indexes with a "not available" marker, so a
             missing sheet or missing column skips an enrichment step instead
             of failing the run

STORE CONTRACT:
  ReadTable on an absent sheet returns an empty Table, not an error.
  WriteTable has full-overwrite semantics: clear, then write.

IMPLEMENTATIONS:
  - store/sqlite: production backing store
  - table/store:  in-memory implementation for tests

SEE ALSO:
  - calc/pipeline.go: the only consumer of Store
*/
package table

import (
	"context"
	"strings"
)

// Table is an ordered set of named columns and rows of text cells.
// Cell values are kept exactly as stored; numeric interpretation is the
// caller's concern (see package numfmt).
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given column order.
func New(columns ...string) Table {
	return Table{Columns: columns}
}

// FromRows builds a table from raw sheet values: the first row is the header,
// the rest are data rows. Header cells are trimmed; short rows are padded so
// every row has one cell per column.
func FromRows(values [][]string) Table {
	if len(values) == 0 {
		return Table{}
	}
	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.TrimSpace(h)
	}
	t := Table{Columns: header}
	for _, row := range values[1:] {
		t.Append(row...)
	}
	return t
}

// Append adds a data row, padding or truncating to the column count.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// IsEmpty reports whether the table has no data rows.
func (t Table) IsEmpty() bool { return len(t.Rows) == 0 }

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	c := Table{Columns: append([]string(nil), t.Columns...)}
	c.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	return c
}

// ColumnIndex returns the index of the named column, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// =============================================================================
// OPTIONAL-CAPABILITY COLUMN RESOLUTION
// =============================================================================

// Columns is the result of resolving a set of required columns against a
// table. When Available is false the enrichment step that needed the table is
// skipped for this run; Missing names the columns that were absent (empty for
// an absent or empty sheet).
type Columns struct {
	Available bool
	Missing   []string

	index map[string]int
	table Table
}

// Require resolves the named columns. Available is false when the table is
// empty or any column is missing.
func (t Table) Require(names ...string) Columns {
	c := Columns{index: make(map[string]int, len(names)), table: t}
	if t.IsEmpty() {
		return c
	}
	for _, n := range names {
		i := t.ColumnIndex(n)
		if i < 0 {
			c.Missing = append(c.Missing, n)
			continue
		}
		c.index[n] = i
	}
	c.Available = len(c.Missing) == 0
	return c
}

// Get returns the trimmed cell at data row i for a resolved column.
// Returns "" for unresolved columns or out-of-range rows.
func (c Columns) Get(i int, name string) string {
	col, ok := c.index[name]
	if !ok || i < 0 || i >= len(c.table.Rows) || col >= len(c.table.Rows[i]) {
		return ""
	}
	return strings.TrimSpace(c.table.Rows[i][col])
}

// Len returns the number of data rows behind this resolution.
func (c Columns) Len() int { return len(c.table.Rows) }

// =============================================================================
// STORE - Persistence interface for named sheets
// =============================================================================

// Store persists tables under sheet names.
type Store interface {
	// ReadTable returns the named table. An absent sheet yields an empty
	// Table and no error.
	ReadTable(ctx context.Context, name string) (Table, error)

	// WriteTable overwrites the named table: clear, then write. The previous
	// contents are fully replaced or fully retained, never mixed.
	WriteTable(ctx context.Context, name string, t Table) error
}
