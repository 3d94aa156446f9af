package transform

import (
	"fmt"

	"covidexit/internal/assert"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/normalize"
	"covidexit/internal/states"
	"covidexit/internal/table"
)

// Transformer converts raw source tables into normalized tables keyed by
// canonical state keys. It holds no state between calls.
type Transformer struct {
	keyer normalize.Keyer
	tel   telemetry.API
}

func NewTransformer(registry *states.Registry, tel telemetry.API) Transformer {
	assert.NotNil(registry, "registry")
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("transform", tel)
	return Transformer{
		keyer: normalize.NewKeyer(registry, tel),
		tel:   tel,
	}
}

// rowError locates a bad cell, row numbers are 1-based like a spreadsheet.
func rowError(source string, row int, column string, err error) error {
	return fmt.Errorf("%s: row %d: %s: %w", source, row+1, column, err)
}

// count reads a numeric cell: blank cells stay Empty, anything that is
// neither blank nor a number is an error.
func count(t *table.Table, i int, column string) (table.Value, error) {
	v := t.Get(i, column)
	if v.Kind() != table.KindString {
		return v, nil
	}
	parsed := table.Parse(v.Text())
	if parsed.Kind() == table.KindString {
		return v, fmt.Errorf("expected a number, got %q", v.Text())
	}
	return parsed, nil
}

func date(t *table.Table, i int, column string) (string, error) {
	return normalize.CanonicalDate(t.Get(i, column).Text())
}

// ratio divides two cells, blank inputs give Empty and a zero denominator
// gives Undefined.
func ratio(numerator, denominator table.Value, scale float64) table.Value {
	n, nok := numerator.Float()
	d, dok := denominator.Float()
	if !nok || !dok {
		return table.Empty()
	}
	if d == 0 {
		return table.Undefined()
	}
	return table.Number(n / d * scale)
}

// build lays out records as a table with the given columns.
func build(columns []string, records []map[string]table.Value) (*table.Table, error) {
	out := table.New(columns...)
	for _, r := range records {
		row := make([]table.Value, len(columns))
		for i, c := range columns {
			row[i] = r[c]
		}
		err := out.Append(row...)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
