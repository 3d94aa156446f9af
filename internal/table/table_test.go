package table

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		raw      string
		kind     Kind
		expected string
	}{
		{raw: "", kind: KindEmpty, expected: ""},
		{raw: "   ", kind: KindEmpty, expected: ""},
		{raw: "12", kind: KindNumber, expected: "12"},
		{raw: "1,234.5", kind: KindNumber, expected: "1234.5"},
		{raw: "0.10", kind: KindNumber, expected: "0.1"},
		{raw: "X", kind: KindString, expected: "X"},
		{raw: "2020-03-01", kind: KindString, expected: "2020-03-01"},
		{raw: "NaN", kind: KindUndefined, expected: UndefinedMarker},
	}

	for _, test := range testCases {
		v := Parse(test.raw)
		require.Equal(t, test.kind, v.Kind(), test.raw)
		require.Equal(t, test.expected, v.Format(), test.raw)
	}
}

func TestValueFloat(t *testing.T) {
	n, ok := String(" 42 ").Float()
	require.True(t, ok)
	require.Equal(t, 42.0, n)

	_, ok = String("Alabama").Float()
	require.False(t, ok)
	_, ok = Empty().Float()
	require.False(t, ok)
	_, ok = Undefined().Float()
	require.False(t, ok)

	require.True(t, Number(math.Inf(1)).IsUndefined())
	require.True(t, Number(1).Equal(Number(1)))
	require.False(t, Number(1).Equal(String("1")))
}

func TestTableOperations(t *testing.T) {
	tbl := New("State", "date", "positive")
	require.NoError(t, tbl.Append(String("Alabama"), String("2020-03-01"), Number(1)))
	require.NoError(t, tbl.AppendMap(map[string]Value{
		"State": String("Alaska"),
		"date":  String("2020-03-02"),
	}))
	require.Error(t, tbl.Append(String("too few")))
	require.Error(t, tbl.AppendMap(map[string]Value{"unknown": Empty()}))

	require.Equal(t, 2, tbl.Len())
	require.True(t, tbl.Get(1, "positive").IsEmpty())
	require.True(t, tbl.Get(0, "missing").IsEmpty())

	selected, err := tbl.Select("positive", "State")
	require.NoError(t, err)
	require.Equal(t, []string{"positive", "State"}, selected.Columns())
	require.Equal(t, "Alabama", selected.Get(0, "State").Text())

	_, err = tbl.Select("nope")
	require.Error(t, err)
	_, err = tbl.Select("State", "positive", "State")
	require.ErrorIs(t, err, ErrDuplicateColumn)

	renamed, err := tbl.Rename(map[string]string{"positive": "cases"})
	require.NoError(t, err)
	require.Equal(t, []string{"State", "date", "cases"}, renamed.Columns())

	_, err = tbl.Rename(map[string]string{"positive": "State"})
	require.Error(t, err)

	clone := tbl.Clone()
	require.NoError(t, clone.Set(0, "positive", Number(99)))
	require.Equal(t, "1", tbl.Get(0, "positive").Text())
	require.False(t, clone.Equal(tbl))
	require.True(t, tbl.Equal(tbl.Clone()))
}

func TestRecords(t *testing.T) {
	tbl := New("State", "ratio", "note")
	require.NoError(t, tbl.Append(String("Ohio"), Undefined(), Empty()))
	require.NoError(t, tbl.Append(String("Utah"), Number(0.25), String("x")))

	diff := cmp.Diff([][]string{
		{"State", "ratio", "note"},
		{"Ohio", "N/A", ""},
		{"Utah", "0.25", "x"},
	}, tbl.Records())
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestDuplicateColumnsPanic(t *testing.T) {
	require.Panics(t, func() {
		New("State", "State")
	})
}
