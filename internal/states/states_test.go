package states

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	registry, err := Load()
	require.NoError(t, err)

	testCases := []struct {
		code     string
		expected Key
		ok       bool
	}{
		{code: "NY", expected: "New York", ok: true},
		{code: "ny", expected: "New York", ok: true},
		{code: "New York", expected: "New York", ok: true},
		{code: "  new   york ", expected: "New York", ok: true},
		{code: "36", expected: "New York", ok: true},
		{code: "1", expected: "Alabama", ok: true},
		{code: "01", expected: "Alabama", ok: true},
		{code: "DC", expected: "District of Columbia", ok: true},
		{code: "Washington, D.C.", expected: "District of Columbia", ok: true},
		{code: "PR", expected: "Puerto Rico", ok: true},
		{code: "U.S. Virgin Islands", expected: "Virgin Islands", ok: true},
		{code: "NYC", ok: false},
		{code: "99", ok: false},
		{code: "", ok: false},
	}

	for _, test := range testCases {
		key, ok := registry.Resolve(test.code)
		require.Equal(t, test.ok, ok, test.code)
		require.Equal(t, test.expected, key, test.code)
	}
}

func TestRegistryLookups(t *testing.T) {
	registry, err := Load()
	require.NoError(t, err)

	abbr, ok := registry.Abbreviation("Texas")
	require.True(t, ok)
	require.Equal(t, "TX", abbr)

	population, ok := registry.Population("California")
	require.True(t, ok)
	require.Greater(t, population, int64(30_000_000))

	_, ok = registry.Population("Atlantis")
	require.False(t, ok)

	require.True(t, registry.Contains("Ohio"))
	require.False(t, registry.Contains("ohio"))

	all := registry.States()
	require.Len(t, all, 56)
	require.Equal(t, Key("Alabama"), all[0].Key)
	for _, s := range all {
		_, ok := registry.Population(s.Key)
		require.True(t, ok, s.Key)
	}
}

func TestSuggest(t *testing.T) {
	registry, err := Load()
	require.NoError(t, err)

	key, score := registry.Suggest("Pensylvania")
	require.Equal(t, Key("Pennsylvania"), key)
	require.Greater(t, score, 0.9)
}

func TestLoadRejectsUnknownPopulation(t *testing.T) {
	_, err := load(
		[]byte("abbreviation,name,fips\nAL,Alabama,01\n"),
		[]byte("state,population\nZZ,100\n"),
	)
	require.ErrorContains(t, err, "unknown state")

	_, err = load([]byte("abbr,name\n"), []byte("state,population\n"))
	require.ErrorContains(t, err, "expected header")
}
