package scoring

import (
	"github.com/pkg/errors"
)

// Table is an ordered in-memory dataset: named columns and rows of string
// cells. Cells are kept as strings so callers can hand over CSV or database
// values untouched; the scorer enforces the binary 0/1 domain itself.
// Columns beyond the indicator set (patient IDs etc.) are allowed and
// ignored by scoring.
type Table struct {
	cols []string
	idx  map[string]int
	rows [][]string
}

// NewTable creates an empty table with the given column names.
func NewTable(columns []string) *Table {
	idx := make(map[string]int, len(columns))
	cols := make([]string, len(columns))
	copy(cols, columns)
	for i, c := range cols {
		idx[c] = i
	}
	return &Table{cols: cols, idx: idx}
}

// Append adds one row. The cell count must match the column count.
func (t *Table) Append(cells ...string) error {
	if len(cells) != len(t.cols) {
		return errors.Errorf("row has %d cells, table has %d columns", len(cells), len(t.cols))
	}
	row := make([]string, len(cells))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.cols))
	copy(cols, t.cols)
	return cols
}

// HasColumn reports whether the named column exists. Matching is exact.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.idx[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns a copy of the i-th row.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.rows[i]))
	copy(row, t.rows[i])
	return row
}

// Value returns the cell at the given row and column.
func (t *Table) Value(row int, column string) (string, bool) {
	i, ok := t.idx[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return "", false
	}
	return t.rows[row][i], true
}

// cell is the unchecked internal accessor used by the scorer after
// validation established that the column exists.
func (t *Table) cell(row, col int) string {
	return t.rows[row][col]
}
