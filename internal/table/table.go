package table

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateColumn is wrapped by errors for column lists that name a column twice.
var ErrDuplicateColumn = errors.New("duplicate column")

// Unique fails when a column list names a column more than once.
func Unique(columns []string) error {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return fmt.Errorf("%w %q", ErrDuplicateColumn, c)
		}
		seen[c] = true
	}
	return nil
}

// Row is a slice of cells aligned with the columns of its Table.
type Row []Value

// Table is an ordered set of named columns and rows.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// New creates an empty table, column names must be unique.
func New(columns ...string) *Table {
	t := &Table{
		columns: slices.Clone(columns),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c]; dup {
			panic(fmt.Sprintf("duplicate column %q", c))
		}
		t.index[c] = i
	}
	return t
}

func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// ColumnIndex returns the position of a column.
func (t *Table) ColumnIndex(column string) (int, bool) {
	i, ok := t.index[column]
	return i, ok
}

// Append adds a row, it must have exactly one value per column.
func (t *Table) Append(values ...Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	t.rows = append(t.rows, slices.Clone(values))
	return nil
}

// AppendMap adds a row from a column -> value map, columns missing from the
// map are Empty.
func (t *Table) AppendMap(values map[string]Value) error {
	row := make(Row, len(t.columns))
	for name, v := range values {
		i, ok := t.index[name]
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}
		row[i] = v
	}
	t.rows = append(t.rows, row)
	return nil
}

func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Get returns the cell at row i of a column, unknown columns are Empty.
func (t *Table) Get(i int, column string) Value {
	c, ok := t.index[column]
	if !ok {
		return Empty()
	}
	return t.rows[i][c]
}

// Set replaces a single cell.
func (t *Table) Set(i int, column string, v Value) error {
	c, ok := t.index[column]
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	t.rows[i][c] = v
	return nil
}

// Column returns every value of a column.
func (t *Table) Column(column string) ([]Value, error) {
	c, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[c]
	}
	return out, nil
}

// Select projects the table onto the given columns in the given order.
func (t *Table) Select(columns ...string) (*Table, error) {
	err := Unique(columns)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(columns))
	for i, c := range columns {
		pos, ok := t.index[c]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", c)
		}
		idx[i] = pos
	}
	out := New(columns...)
	out.rows = make([]Row, len(t.rows))
	for r, row := range t.rows {
		projected := make(Row, len(idx))
		for i, pos := range idx {
			projected[i] = row[pos]
		}
		out.rows[r] = projected
	}
	return out, nil
}

// Rename returns a copy of the table where columns are renamed according to
// the mapping, columns absent from the mapping keep their name.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	names := make([]string, len(t.columns))
	seen := map[string]bool{}
	for i, c := range t.columns {
		name := c
		if renamed, ok := mapping[c]; ok {
			name = renamed
		}
		if seen[name] {
			return nil, fmt.Errorf("rename produces duplicate column %q", name)
		}
		seen[name] = true
		names[i] = name
	}
	out := New(names...)
	out.rows = t.cloneRows()
	return out, nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.columns...)
	out.rows = t.cloneRows()
	return out
}

func (t *Table) cloneRows() []Row {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = slices.Clone(r)
	}
	return rows
}

// Records renders the table for publishing: the header followed by one
// line per row.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.rows)+1)
	out = append(out, t.Columns())
	for _, r := range t.rows {
		line := make([]string, len(r))
		for i, v := range r {
			line[i] = v.Format()
		}
		out = append(out, line)
	}
	return out
}

// Equal compares columns and every cell.
func (t *Table) Equal(o *Table) bool {
	if !slices.Equal(t.columns, o.columns) || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.rows {
		for j := range t.rows[i] {
			if !t.rows[i][j].Equal(o.rows[i][j]) {
				return false
			}
		}
	}
	return true
}
