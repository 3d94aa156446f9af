package summary

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"covidexit/internal/normalize"
	"covidexit/internal/states"
	"covidexit/internal/table"
)

// Population supplies per capita denominators, *states.Registry implements it.
type Population interface {
	Population(key states.Key) (int64, bool)
}

// ColumnError is returned when a requested column is neither in the
// normalized table nor derivable from it.
type ColumnError struct {
	Column string
	// Missing lists the inputs the derivation needs, empty when the column
	// is not known at all.
	Missing []string
}

func (e *ColumnError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("unknown summary column %q", e.Column)
	}
	return fmt.Sprintf(
		"cannot derive summary column %q: missing %s",
		e.Column, strings.Join(e.Missing, ", "),
	)
}

// history is every row of one state ordered by date, input order is kept
// between rows of the same date.
type history struct {
	key   states.Key
	table *table.Table
	rows  []int
	dates []time.Time
}

func (h history) latest() int {
	return h.rows[len(h.rows)-1]
}

// Summarize returns one row per state with exactly the requested columns.
//
// The latest row of a state is the one with the greatest date, when several
// rows share it the last of them in input order wins. Columns present in the
// normalized table are read from the latest row, anything else must be a
// registered derivation.
func Summarize(normalized *table.Table, columns []string, population Population) (*table.Table, error) {
	err := table.Unique(columns)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	if !normalized.Has(normalize.State) {
		return nil, &ColumnError{Column: normalize.State, Missing: []string{normalize.State}}
	}
	hasDate := normalized.Has(normalize.Date)

	derived := map[string]derivation{}
	for _, c := range columns {
		if normalized.Has(c) {
			continue
		}
		d, ok := derivations[c]
		if !ok {
			return nil, &ColumnError{Column: c}
		}
		var missing []string
		for _, input := range d.inputs {
			if !normalized.Has(input) {
				missing = append(missing, input)
			}
		}
		if d.windowed && !hasDate {
			missing = append(missing, normalize.Date)
		}
		if d.perCapita && population == nil {
			missing = append(missing, "population")
		}
		if len(missing) > 0 {
			return nil, &ColumnError{Column: c, Missing: missing}
		}
		derived[c] = d
	}

	histories, err := group(normalized, hasDate)
	if err != nil {
		return nil, err
	}

	out := table.New(columns...)
	for _, h := range histories {
		row := make([]table.Value, len(columns))
		for i, c := range columns {
			d, ok := derived[c]
			if !ok {
				row[i] = normalized.Get(h.latest(), c)
				continue
			}
			row[i] = d.compute(h, population)
		}
		err = out.Append(row...)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func group(normalized *table.Table, hasDate bool) ([]history, error) {
	byKey := map[states.Key]*history{}
	for i := 0; i < normalized.Len(); i++ {
		key := states.Key(normalized.Get(i, normalize.State).Text())
		h, ok := byKey[key]
		if !ok {
			h = &history{key: key, table: normalized}
			byKey[key] = h
		}
		h.rows = append(h.rows, i)
		if !hasDate {
			continue
		}
		day, err := time.Parse("2006-01-02", normalized.Get(i, normalize.Date).Text())
		if err != nil {
			return nil, fmt.Errorf("summary: row %d of %s: %w", i+1, key, err)
		}
		h.dates = append(h.dates, day)
	}

	out := make([]history, 0, len(byKey))
	for _, h := range byKey {
		if hasDate {
			sortByDate(h)
		}
		out = append(out, *h)
	}
	slices.SortFunc(out, func(a, b history) int {
		return strings.Compare(string(a.key), string(b.key))
	})
	return out, nil
}

// sortByDate is a stable sort so rows sharing a date keep input order.
func sortByDate(h *history) {
	order := make([]int, len(h.rows))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return h.dates[a].Compare(h.dates[b])
	})
	rows := make([]int, len(order))
	dates := make([]time.Time, len(order))
	for i, o := range order {
		rows[i] = h.rows[o]
		dates[i] = h.dates[o]
	}
	h.rows = rows
	h.dates = dates
}
