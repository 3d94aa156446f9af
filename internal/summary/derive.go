package summary

import (
	"time"

	"covidexit/internal/normalize"
	"covidexit/internal/table"
)

// Derived columns, computed from a state's history at summary time.
const (
	PositiveIncrease7d       = "positive_increase_7d"
	PositiveIncreasePrev7d   = "positive_increase_prev_7d"
	PositiveIncrease7dChange = "positive_increase_7d_change"
	NegativeIncrease7d       = "negative_increase_7d"
	TotalTests7d             = "total_tests_7d"
	TestsPer100k7d           = "tests_per_100k_7d"
	CasesPer100k7d           = "cases_per_100k_7d"
	PositivityRate           = "positivity_rate"
	PositivityRate7d         = "positivity_rate_7d"
	PositivityRatePrev7d     = "positivity_rate_prev_7d"
	PositivityRate7dChange   = "positivity_rate_7d_change"
	IliPercentPrev           = "ili_percent_prev"
	IliPercentChange         = "ili_percent_change"
	IcuOccupancyRate         = normalize.IcuOccupancyRate
	DeathsPer100k            = "deaths_per_100k"
	PopulationColumn         = "population"
)

type derivation struct {
	inputs []string
	// windowed derivations look at more than the latest row and need dates
	windowed  bool
	perCapita bool
	compute   func(h history, population Population) table.Value
}

var derivations = map[string]derivation{
	PositiveIncrease7d: {
		inputs:   []string{normalize.PositiveIncrease},
		windowed: true,
		compute: func(h history, _ Population) table.Value {
			return h.window(normalize.PositiveIncrease, 0)
		},
	},
	PositiveIncreasePrev7d: {
		inputs:   []string{normalize.PositiveIncrease},
		windowed: true,
		compute: func(h history, _ Population) table.Value {
			return h.window(normalize.PositiveIncrease, 1)
		},
	},
	PositiveIncrease7dChange: {
		inputs:   []string{normalize.PositiveIncrease},
		windowed: true,
		compute: func(h history, _ Population) table.Value {
			return change(
				h.window(normalize.PositiveIncrease, 0),
				h.window(normalize.PositiveIncrease, 1),
			)
		},
	},
	NegativeIncrease7d: {
		inputs:   []string{normalize.NegativeIncrease},
		windowed: true,
		compute: func(h history, _ Population) table.Value {
			return h.window(normalize.NegativeIncrease, 0)
		},
	},
	TotalTests7d: {
		inputs:   []string{normalize.PositiveIncrease, normalize.NegativeIncrease},
		windowed: true,
		compute: func(h history, _ Population) table.Value {
			return h.tests(0)
		},
	},
	TestsPer100k7d: {
		inputs:    []string{normalize.PositiveIncrease, normalize.NegativeIncrease},
		windowed:  true,
		perCapita: true,
		compute: func(h history, population Population) table.Value {
			return perCapita(h, population, h.tests(0))
		},
	},
	CasesPer100k7d: {
		inputs:    []string{normalize.PositiveIncrease},
		windowed:  true,
		perCapita: true,
		compute: func(h history, population Population) table.Value {
			return perCapita(h, population, h.window(normalize.PositiveIncrease, 0))
		},
	},
	PositivityRate: {
		inputs: []string{normalize.Positive, normalize.Negative},
		compute: func(h history, _ Population) table.Value {
			positive := h.latestValue(normalize.Positive)
			negative := h.latestValue(normalize.Negative)
			return ratio(positive, add(positive, negative), 1)
		},
	},
	PositivityRate7d: {
		inputs:   []string{normalize.PositiveIncrease, normalize.NegativeIncrease},
		windowed: true,
		compute: func(h history, _ Population) table.Value {
			return h.positivity(0)
		},
	},
	PositivityRatePrev7d: {
		inputs:   []string{normalize.PositiveIncrease, normalize.NegativeIncrease},
		windowed: true,
		compute: func(h history, _ Population) table.Value {
			return h.positivity(1)
		},
	},
	PositivityRate7dChange: {
		inputs:   []string{normalize.PositiveIncrease, normalize.NegativeIncrease},
		windowed: true,
		compute: func(h history, _ Population) table.Value {
			return sub(h.positivity(0), h.positivity(1))
		},
	},
	IliPercentPrev: {
		inputs:   []string{normalize.IliPercent},
		windowed: true,
		compute: func(h history, _ Population) table.Value {
			return h.previousValue(normalize.IliPercent)
		},
	},
	IliPercentChange: {
		inputs:   []string{normalize.IliPercent},
		windowed: true,
		compute: func(h history, _ Population) table.Value {
			return sub(
				h.latestValue(normalize.IliPercent),
				h.previousValue(normalize.IliPercent),
			)
		},
	},
	IcuOccupancyRate: {
		inputs: []string{normalize.IcuBedsOccupied, normalize.IcuBedsTotal},
		compute: func(h history, _ Population) table.Value {
			return ratio(
				h.latestValue(normalize.IcuBedsOccupied),
				h.latestValue(normalize.IcuBedsTotal),
				1,
			)
		},
	},
	DeathsPer100k: {
		inputs:    []string{normalize.Death},
		perCapita: true,
		compute: func(h history, population Population) table.Value {
			return perCapita(h, population, h.latestValue(normalize.Death))
		},
	},
	PopulationColumn: {
		perCapita: true,
		compute: func(h history, population Population) table.Value {
			n, ok := population.Population(h.key)
			if !ok {
				return table.Undefined()
			}
			return table.Number(float64(n))
		},
	},
}

func (h history) latestValue(column string) table.Value {
	return h.table.Get(h.latest(), column)
}

// previousValue reads the latest row dated strictly before the latest date.
func (h history) previousValue(column string) table.Value {
	last := h.dates[len(h.dates)-1]
	for i := len(h.rows) - 1; i >= 0; i-- {
		if h.dates[i].Before(last) {
			return h.table.Get(h.rows[i], column)
		}
	}
	return table.Empty()
}

// window sums a column over seven days. Window 0 ends on the latest date,
// window 1 is the seven days before it.
func (h history) window(column string, offset int) table.Value {
	end := h.dates[len(h.dates)-1].AddDate(0, 0, -7*offset)
	start := end.AddDate(0, 0, -6)

	var sum float64
	var seen bool
	for i, row := range h.rows {
		if !inRange(h.dates[i], start, end) {
			continue
		}
		v := h.table.Get(row, column)
		if v.IsUndefined() {
			return table.Undefined()
		}
		n, ok := v.Float()
		if !ok {
			continue
		}
		sum += n
		seen = true
	}
	if !seen {
		return table.Empty()
	}
	return table.Number(sum)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func (h history) tests(offset int) table.Value {
	return add(
		h.window(normalize.PositiveIncrease, offset),
		h.window(normalize.NegativeIncrease, offset),
	)
}

func (h history) positivity(offset int) table.Value {
	return ratio(h.window(normalize.PositiveIncrease, offset), h.tests(offset), 1)
}

func perCapita(h history, population Population, v table.Value) table.Value {
	n, ok := population.Population(h.key)
	if !ok || n == 0 {
		return table.Undefined()
	}
	return ratio(v, table.Number(float64(n)), 100_000)
}

// value arithmetic: Undefined is contagious, then Empty.

func operands(a, b table.Value) (float64, float64, table.Value, bool) {
	if a.IsUndefined() || b.IsUndefined() {
		return 0, 0, table.Undefined(), false
	}
	x, xok := a.Float()
	y, yok := b.Float()
	if !xok || !yok {
		return 0, 0, table.Empty(), false
	}
	return x, y, table.Value{}, true
}

func add(a, b table.Value) table.Value {
	x, y, fallback, ok := operands(a, b)
	if !ok {
		return fallback
	}
	return table.Number(x + y)
}

func sub(a, b table.Value) table.Value {
	x, y, fallback, ok := operands(a, b)
	if !ok {
		return fallback
	}
	return table.Number(x - y)
}

// ratio yields Undefined on a zero denominator.
func ratio(numerator, denominator table.Value, scale float64) table.Value {
	x, y, fallback, ok := operands(numerator, denominator)
	if !ok {
		return fallback
	}
	if y == 0 {
		return table.Undefined()
	}
	return table.Number(x / y * scale)
}

// change is the relative change from previous to current.
func change(current, previous table.Value) table.Value {
	return ratio(sub(current, previous), previous, 1)
}
