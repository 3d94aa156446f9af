package summary

import (
	"errors"
	"fmt"

	"covidexit/internal/normalize"
	"covidexit/internal/table"
)

// Merge inner joins summary tables on the state key. States missing from any
// input are excluded. When a column name is already taken the later column is
// renamed with a suffix: "_y", then "_y2", "_y3" and so on. Rows keep the
// order of the first table.
func Merge(tables ...*table.Table) (*table.Table, error) {
	if len(tables) == 0 {
		return nil, errors.New("merge: no tables")
	}

	indexes := make([]map[string]int, len(tables))
	for i, t := range tables {
		if !t.Has(normalize.State) {
			return nil, fmt.Errorf("merge: table %d has no %s column", i, normalize.State)
		}
		index := make(map[string]int, t.Len())
		for r := 0; r < t.Len(); r++ {
			key := t.Get(r, normalize.State).Text()
			if _, dup := index[key]; dup {
				return nil, fmt.Errorf("merge: table %d has more than one row for %s", i, key)
			}
			index[key] = r
		}
		indexes[i] = index
	}

	type source struct {
		table  int
		column string
	}
	columns := tables[0].Columns()
	taken := map[string]bool{}
	var sources []source
	for _, c := range columns {
		taken[c] = true
		sources = append(sources, source{table: 0, column: c})
	}
	for i, t := range tables[1:] {
		for _, c := range t.Columns() {
			if c == normalize.State {
				continue
			}
			name := suffixed(c, taken)
			taken[name] = true
			columns = append(columns, name)
			sources = append(sources, source{table: i + 1, column: c})
		}
	}

	out := table.New(columns...)
	first := tables[0]
	for r := 0; r < first.Len(); r++ {
		key := first.Get(r, normalize.State).Text()
		rows := make([]int, len(tables))
		joined := true
		for i, index := range indexes {
			row, ok := index[key]
			if !ok {
				joined = false
				break
			}
			rows[i] = row
		}
		if !joined {
			continue
		}

		values := make([]table.Value, len(sources))
		for i, s := range sources {
			values[i] = tables[s.table].Get(rows[s.table], s.column)
		}
		err := out.Append(values...)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func suffixed(column string, taken map[string]bool) string {
	if !taken[column] {
		return column
	}
	name := column + "_y"
	for n := 2; taken[name]; n++ {
		name = fmt.Sprintf("%s_y%d", column, n)
	}
	return name
}
