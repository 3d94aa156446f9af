package normalize

import (
	"errors"
	"testing"

	"covidexit/internal/components/telemetry"
	"covidexit/internal/states"
	"covidexit/internal/table"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCanonicalDate(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "20200301", expected: "2020-03-01"},
		{input: "20200301.0", expected: "2020-03-01"},
		{input: "2020-03-01", expected: "2020-03-01"},
		{input: "2020-03-01T20:00:00Z", expected: "2020-03-01"},
		{input: "2020-03-01 20:00:00", expected: "2020-03-01"},
		{input: "2020/03/01", expected: "2020-03-01"},
		{input: "03/01/2020", expected: "2020-03-01"},
		{input: "3/1/2020", expected: "2020-03-01"},
		{input: " 2020-12-31 ", expected: "2020-12-31"},
	}
	for _, test := range testCases {
		date, err := CanonicalDate(test.input)
		require.NoError(t, err, test.input)
		require.Equal(t, test.expected, date, test.input)
	}

	for _, bad := range []string{"", "yesterday", "2020-13-01", "20201301"} {
		_, err := CanonicalDate(bad)
		require.Error(t, err, bad)
	}
}

func TestEpiWeekStart(t *testing.T) {
	testCases := []struct {
		year, week int
		expected   string
	}{
		{year: 2020, week: 1, expected: "2019-12-29"},
		{year: 2020, week: 10, expected: "2020-03-01"},
		{year: 2021, week: 1, expected: "2021-01-03"},
		{year: 2019, week: 1, expected: "2018-12-30"},
		{year: 2014, week: 53, expected: "2014-12-28"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, EpiWeekStart(test.year, test.week))
	}
}

func TestSchema(t *testing.T) {
	schema := Schema{
		Source:   "fixture",
		Required: []string{"state", "positive", "dateModified"},
		Rename: map[string]string{
			"state":        State,
			"positive":     Positive,
			"dateModified": LastUpdated,
		},
	}

	raw := table.New("state", "hash", "positive", "dateModified")
	require.NoError(t, raw.Append(
		table.String("NY"),
		table.String("abc"),
		table.Number(10),
		table.String("2020-04-01T20:00:00Z"),
	))

	normalized, err := schema.Apply(raw)
	require.NoError(t, err)
	diff := cmp.Diff([]string{State, Positive, LastUpdated}, normalized.Columns())
	if diff != "" {
		t.Fatal(diff)
	}

	restored, err := schema.Restore(normalized)
	require.NoError(t, err)
	expected, err := raw.Select("state", "positive", "dateModified")
	require.NoError(t, err)
	require.True(t, expected.Equal(restored))

	require.Equal(t, []string{State, LastUpdated, Positive}, schema.Vocabulary())
	for _, c := range schema.Vocabulary() {
		require.True(t, InVocabulary(c))
	}
}

func TestSchemaMissingFields(t *testing.T) {
	schema := Schema{
		Source:   "fixture",
		Required: []string{"state", "positive", "negativeIncrease"},
	}
	err := schema.Check(table.New("state"))

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, []string{"positive", "negativeIncrease"}, schemaErr.Missing)
	require.ErrorContains(t, err, "fixture: missing required fields: positive, negativeIncrease")

	_, err = schema.Apply(table.New("positive"))
	require.True(t, errors.As(err, &schemaErr))
}

func TestKeying(t *testing.T) {
	registry, err := states.Load()
	require.NoError(t, err)
	rec := telemetry.NewRecorder()
	keying := NewKeyer(registry, rec).Start("fixture")

	for _, code := range []string{"NY", "Pensylvania", "NYC", "NYC", "1"} {
		keying.Resolve(code)
	}
	require.Equal(t, 3, keying.Done())

	dropped, ok := rec.Count("keyer.unresolved.fixture")
	require.True(t, ok)
	require.EqualValues(t, 3, dropped)

	require.Len(t, rec.Warnings, 2)
	require.Contains(t, rec.Warnings[1].Params, "did_you_mean")
	require.Contains(t, rec.Warnings[1].Params, "Pennsylvania")
}

func TestKeyingNothingDropped(t *testing.T) {
	registry, err := states.Load()
	require.NoError(t, err)
	rec := telemetry.NewRecorder()
	keying := NewKeyer(registry, rec).Start("fixture")

	key, ok := keying.Resolve("CA")
	require.True(t, ok)
	require.Equal(t, states.Key("California"), key)
	require.Zero(t, keying.Done())
	require.Empty(t, rec.Warnings)
}
