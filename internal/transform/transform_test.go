package transform

import (
	"errors"
	"strings"
	"testing"

	"covidexit/internal/components/telemetry"
	"covidexit/internal/normalize"
	"covidexit/internal/states"
	"covidexit/internal/table"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func rawTable(t testing.TB, columns []string, rows ...[]string) *table.Table {
	out := table.New(columns...)
	for _, r := range rows {
		values := make([]table.Value, len(r))
		for i, cell := range r {
			values[i] = table.Parse(cell)
		}
		require.NoError(t, out.Append(values...))
	}
	return out
}

func newTransformer(t testing.TB) (Transformer, *states.Registry, *telemetry.Recorder) {
	registry, err := states.Load()
	require.NoError(t, err)
	rec := telemetry.NewRecorder()
	return NewTransformer(registry, rec), registry, rec
}

var dailyColumns = []string{
	"date", "state", "positive", "negative", "positiveIncrease",
	"negativeIncrease", "death", "hash", "dateModified",
}

func dailyFixture(t testing.TB) *table.Table {
	return rawTable(t, dailyColumns,
		[]string{"20200402", "NY", "92381", "146584", "8669", "12226", "2373", "a1", "2020-04-02T20:00:00Z"},
		[]string{"20200401", "NY", "83712", "137168", "7917", "10945", "1941", "a2", "2020-04-01T20:00:00Z"},
		[]string{"20200402", "CA", "9191", "23809", "1036", "10405", "203", "a3", "2020-04-02T20:00:00Z"},
		[]string{"20200402", "AS", "0", "3", "0", "0", "", "a4", "2020-04-02T20:00:00Z"},
		[]string{"20200402", "XX", "1", "1", "1", "1", "", "a5", "2020-04-02T20:00:00Z"},
	)
}

func TestCovidTrackingCDC(t *testing.T) {
	transformer, registry, rec := newTransformer(t)

	out, err := transformer.CovidTrackingCDC(dailyFixture(t))
	require.NoError(t, err)
	require.Equal(t, cdcColumns, out.Columns())
	require.Equal(t, 4, out.Len())

	require.Equal(t, "New York", out.Get(0, normalize.State).Text())
	require.Equal(t, "2020-04-02", out.Get(0, normalize.Date).Text())
	require.Equal(t, "2020-04-02T20:00:00Z", out.Get(0, normalize.LastUpdated).Text())

	// derived from positiveIncrease + negativeIncrease when absent
	total, ok := out.Get(0, normalize.TotalTestResultsIncrease).Float()
	require.True(t, ok)
	require.Equal(t, float64(8669+12226), total)

	require.True(t, out.Get(3, normalize.Death).IsEmpty())

	keys, err := out.Column(normalize.State)
	require.NoError(t, err)
	for _, k := range keys {
		require.True(t, registry.Contains(states.Key(k.Text())), k.Text())
	}

	dropped, ok := rec.Count("keyer.unresolved.covidtracking")
	require.True(t, ok)
	require.EqualValues(t, 1, dropped)
}

func TestCovidTrackingDaily(t *testing.T) {
	transformer, _, rec := newTransformer(t)

	cdc, historical, err := transformer.CovidTrackingDaily(dailyFixture(t))
	require.NoError(t, err)
	require.Equal(t, cdcColumns, cdc.Columns())
	require.Equal(t, historicalColumns, historical.Columns())

	// XX is dropped and reported a single time for both tables
	var unresolved int
	for _, w := range rec.Warnings {
		if strings.HasSuffix(w.ID, "keyer.unresolved") {
			unresolved++
		}
	}
	require.Equal(t, 1, unresolved)

	expected, err := transformer.CovidTrackingCDC(dailyFixture(t))
	require.NoError(t, err)
	require.True(t, expected.Equal(cdc))
	expected, err = transformer.CovidTrackingHistorical(dailyFixture(t))
	require.NoError(t, err)
	require.True(t, expected.Equal(historical))
}

func TestCovidTrackingRoundTrip(t *testing.T) {
	transformer, registry, _ := newTransformer(t)
	raw := dailyFixture(t)

	normalized, err := transformer.CovidTrackingHistorical(raw)
	require.NoError(t, err)
	restored, err := CovidTrackingSchema.Restore(normalized)
	require.NoError(t, err)

	for _, field := range CovidTrackingSchema.Required {
		require.True(t, restored.Has(field), field)
	}

	for i := 0; i < restored.Len(); i++ {
		for _, field := range []string{"positive", "negativeIncrease", "positiveIncrease", "dateModified"} {
			require.True(t, raw.Get(i, field).Equal(restored.Get(i, field)), field)
		}

		abbr, ok := registry.Abbreviation(states.Key(restored.Get(i, "state").Text()))
		require.True(t, ok)
		require.Equal(t, raw.Get(i, "state").Text(), abbr)

		day, err := normalize.CanonicalDate(raw.Get(i, "date").Text())
		require.NoError(t, err)
		require.Equal(t, day, restored.Get(i, "date").Text())
	}
}

func TestCovidTrackingSchemaViolation(t *testing.T) {
	transformer, _, rec := newTransformer(t)

	raw := rawTable(t, []string{"date", "state", "positive"},
		[]string{"20200402", "NY", "1"},
	)
	_, err := transformer.CovidTrackingCurrent(raw)

	var schemaErr *normalize.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	diff := cmp.Diff([]string{"negativeIncrease", "positiveIncrease", "dateModified"}, schemaErr.Missing)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Len(t, rec.Broken, 1)
}

func TestCovidTrackingBadCount(t *testing.T) {
	transformer, _, _ := newTransformer(t)

	raw := rawTable(t, dailyColumns,
		[]string{"20200402", "NY", "many", "1", "1", "1", "1", "a", "2020-04-02T20:00:00Z"},
	)
	_, err := transformer.CovidTrackingCDC(raw)
	require.ErrorContains(t, err, "row 1: positive")
}

func TestCDCILI(t *testing.T) {
	transformer, _, _ := newTransformer(t)

	ilinet := rawTable(t, []string{"region", "week", "ilitotal"},
		[]string{"1", "2020-03-01", "120"},
	)
	labs := rawTable(t, []string{"region", "week", "total_specimens", "positive"},
		[]string{"1", "2020-03-01", "500", "50"},
	)

	out, err := transformer.CDCILI(ilinet, labs)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	require.Equal(t, iliColumns, out.Columns())

	require.Equal(t, "Alabama", out.Get(0, normalize.State).Text())
	require.Equal(t, "2020-03-01", out.Get(0, normalize.Date).Text())
	// no weighted column and no patient count to divide by
	require.True(t, out.Get(0, normalize.IliPercent).IsUndefined())

	iliTotal, ok := out.Get(0, normalize.IliTotal).Float()
	require.True(t, ok)
	require.Equal(t, 120.0, iliTotal)

	positivity, ok := out.Get(0, normalize.SpecimenPositivity).Float()
	require.True(t, ok)
	require.InDelta(t, 0.10, positivity, 1e-9)
}

func TestCDCILIPercentFromPatients(t *testing.T) {
	transformer, _, rec := newTransformer(t)

	ilinet := rawTable(t, []string{"region", "week", "ilitotal", "total_patients"},
		[]string{"Ohio", "2020-03-01", "30", "1200"},
		[]string{"Utah", "2020-03-01", "5", "0"},
		[]string{"Iowa", "2020-03-01", "", "400"},
	)
	labs := rawTable(t, []string{"region", "week", "total_specimens", "positive"},
		[]string{"Ohio", "2020-03-01", "200", "10"},
		[]string{"Ohio", "2020-03-01", "999", "999"},
	)

	out, err := transformer.CDCILI(ilinet, labs)
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())

	percent, ok := out.Get(0, normalize.IliPercent).Float()
	require.True(t, ok)
	require.InDelta(t, 2.5, percent, 1e-9)
	require.True(t, out.Get(1, normalize.IliPercent).IsUndefined())
	require.True(t, out.Get(2, normalize.IliPercent).IsUndefined())

	// the first lab row for a (region, week) wins
	positivity, ok := out.Get(0, normalize.SpecimenPositivity).Float()
	require.True(t, ok)
	require.InDelta(t, 0.05, positivity, 1e-9)
	require.Len(t, rec.Warnings, 1)
}

func TestCDCILIFluViewExport(t *testing.T) {
	transformer, _, rec := newTransformer(t)

	ilinet := rawTable(t,
		[]string{"REGION TYPE", "REGION", "YEAR", "WEEK", "% WEIGHTED ILI", "ILITOTAL", "TOTAL PATIENTS"},
		[]string{"States", "New York", "2020", "10", "X", "2000", "80000"},
		[]string{"States", "Texas", "2020", "10", "3.5", "1000", "0"},
		[]string{"States", "Florida", "2020", "10", "X", "100", "0"},
		[]string{"States", "New York City", "2020", "10", "X", "10", "100"},
	)
	labs := rawTable(t,
		[]string{"REGION TYPE", "REGION", "YEAR", "WEEK", "TOTAL SPECIMENS", "A (2009 H1N1)", "A (H3)", "B"},
		[]string{"States", "New York", "2020", "10", "400", "20", "10", "10"},
		[]string{"States", "Texas", "2020", "10", "0", "0", "0", "0"},
	)

	records, err := transformer.DecodeCDCILI(ilinet, labs)
	require.NoError(t, err)
	require.Len(t, records, 3)

	ny := records[0]
	require.Equal(t, states.Key("New York"), ny.State)
	require.Equal(t, "2020-03-01", ny.Week)
	percent, ok := ny.IliPercent.Float()
	require.True(t, ok)
	require.InDelta(t, 2.5, percent, 1e-9)
	positives, ok := ny.PositiveSpecimens.Float()
	require.True(t, ok)
	require.Equal(t, 40.0, positives)
	positivity, ok := ny.SpecimenPositivity.Float()
	require.True(t, ok)
	require.InDelta(t, 0.1, positivity, 1e-9)

	tx := records[1]
	percent, ok = tx.IliPercent.Float()
	require.True(t, ok)
	require.Equal(t, 3.5, percent)
	require.True(t, tx.SpecimenPositivity.IsUndefined())

	fl := records[2]
	require.True(t, fl.IliPercent.IsUndefined())
	require.True(t, fl.TotalSpecimens.IsEmpty())
	require.True(t, fl.SpecimenPositivity.IsEmpty())

	dropped, ok := rec.Count("keyer.unresolved.cdc_ili")
	require.True(t, ok)
	require.EqualValues(t, 1, dropped)
}

func TestCDCILIMissingLabColumns(t *testing.T) {
	transformer, _, _ := newTransformer(t)

	ilinet := rawTable(t, []string{"region", "week"}, []string{"1", "2020-03-01"})
	labs := rawTable(t, []string{"region", "week"}, []string{"1", "2020-03-01"})

	_, err := transformer.CDCILI(ilinet, labs)
	var schemaErr *normalize.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, []string{"total_specimens"}, schemaErr.Missing)
}

func TestRtLive(t *testing.T) {
	transformer, _, _ := newTransformer(t)

	raw := rawTable(t,
		[]string{"date", "region", "index", "mean", "median", "lower_80", "upper_80"},
		[]string{"2020-06-01", "AK", "0", "1.02", "1.01", "0.8", "1.2"},
		[]string{"2020-06-02", "AK", "1", "1.05", "1.04", "", ""},
	)
	out, err := transformer.RtLive(raw)
	require.NoError(t, err)
	require.Equal(t, rtColumns, out.Columns())
	require.Equal(t, 2, out.Len())
	require.Equal(t, "Alaska", out.Get(1, normalize.State).Text())
	require.True(t, out.Get(1, normalize.RtLower80).IsEmpty())

	mean, ok := out.Get(0, normalize.RtMean).Float()
	require.True(t, ok)
	require.Equal(t, 1.02, mean)
}

func TestRtLiveBadCellsReportedInColumnOrder(t *testing.T) {
	transformer, _, _ := newTransformer(t)

	raw := rawTable(t,
		[]string{"date", "region", "mean", "lower_80", "upper_80"},
		[]string{"2020-06-01", "AK", "high", "low", "wide"},
	)
	for i := 0; i < 20; i++ {
		_, err := transformer.RtLive(raw)
		require.ErrorContains(t, err, "row 1: "+normalize.RtMean+":")
	}
}

func TestHHSICU(t *testing.T) {
	transformer, _, _ := newTransformer(t)

	raw := rawTable(t,
		[]string{"state_name", "last_updated", "ICU_Beds_Occupied_Estimated", "Total_ICU_Beds"},
		[]string{"Ohio", "2020-09-15T00:00:00.000Z", "2000", "4000"},
		[]string{"Guam", "2020-09-15T00:00:00.000Z", "0", "0"},
	)
	out, err := transformer.HHSICU(raw)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	require.Equal(t, "2020-09-15", out.Get(0, normalize.Date).Text())

	rate, ok := out.Get(0, normalize.IcuOccupancyRate).Float()
	require.True(t, ok)
	require.Equal(t, 0.5, rate)
	require.True(t, out.Get(1, normalize.IcuOccupancyRate).IsUndefined())
}
