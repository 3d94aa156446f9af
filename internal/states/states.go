package states

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"covidexit/lib/textutil"

	"github.com/antzucaro/matchr"
)

//go:embed data/states.csv
var statesCsv []byte

//go:embed data/population.csv
var populationCsv []byte

// Key is the canonical name of a state or territory, e.g. "New York".
type Key string

// State is a single entry of the lookup table.
type State struct {
	Key          Key
	Abbreviation string
	Fips         int
}

// Registry resolves the different ways sources identify a state to a Key.
// It is immutable once loaded.
type Registry struct {
	states     []State
	byName     map[string]int
	byAbbr     map[string]int
	byFips     map[int]int
	population map[Key]int64
}

// aliases are spellings used by sources that are not the canonical name.
var aliases = map[string]string{
	"washington dc":                                "DC",
	"washington d.c.":                              "DC",
	"washington, d.c.":                             "DC",
	"u.s. virgin islands":                          "VI",
	"us virgin islands":                            "VI",
	"united states virgin islands":                 "VI",
	"commonwealth of the northern mariana islands": "MP",
	"commonwealth of puerto rico":                  "PR",
}

// Load parses the lookup table and the population table bundled with the binary.
func Load() (*Registry, error) {
	return load(statesCsv, populationCsv)
}

func load(statesFile, populationFile []byte) (*Registry, error) {
	r := &Registry{
		byName:     map[string]int{},
		byAbbr:     map[string]int{},
		byFips:     map[int]int{},
		population: map[Key]int64{},
	}

	rows, err := readCsv(statesFile, "abbreviation", "name", "fips")
	if err != nil {
		return nil, fmt.Errorf("states: %w", err)
	}
	for _, row := range rows {
		fips, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("states: fips of %s: %w", row[0], err)
		}
		s := State{
			Key:          Key(row[1]),
			Abbreviation: strings.ToUpper(row[0]),
			Fips:         fips,
		}
		i := len(r.states)
		r.states = append(r.states, s)
		r.byAbbr[s.Abbreviation] = i
		r.byName[textutil.NormalizeName(row[1])] = i
		r.byFips[fips] = i
	}
	for alias, abbr := range aliases {
		if i, ok := r.byAbbr[abbr]; ok {
			r.byName[alias] = i
		}
	}

	rows, err = readCsv(populationFile, "state", "population")
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	for _, row := range rows {
		key, ok := r.Resolve(row[0])
		if !ok {
			return nil, fmt.Errorf("population: unknown state %q", row[0])
		}
		n, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("population: %s: %w", row[0], err)
		}
		r.population[key] = n
	}

	return r, nil
}

func readCsv(contents []byte, header ...string) ([][]string, error) {
	records, err := csv.NewReader(bytes.NewReader(contents)).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || !slices.Equal(records[0], header) {
		return nil, fmt.Errorf("expected header %v", header)
	}
	return records[1:], nil
}

// Resolve maps an abbreviation, a name or a FIPS code to a Key.
func (r *Registry) Resolve(code string) (Key, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	if i, ok := r.byAbbr[strings.ToUpper(code)]; ok && len(code) == 2 && !isDigits(code) {
		return r.states[i].Key, true
	}
	if isDigits(code) {
		fips, err := strconv.Atoi(code)
		if err != nil {
			return "", false
		}
		i, ok := r.byFips[fips]
		if !ok {
			return "", false
		}
		return r.states[i].Key, true
	}
	if i, ok := r.byName[textutil.NormalizeName(code)]; ok {
		return r.states[i].Key, true
	}
	return "", false
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

// Abbreviation returns the postal abbreviation of a key.
func (r *Registry) Abbreviation(key Key) (string, bool) {
	i, ok := r.byName[textutil.NormalizeName(string(key))]
	if !ok {
		return "", false
	}
	return r.states[i].Abbreviation, true
}

// Population returns the population used as the denominator of per capita rates.
func (r *Registry) Population(key Key) (int64, bool) {
	n, ok := r.population[key]
	return n, ok
}

// Contains reports whether key is exactly a canonical key.
func (r *Registry) Contains(key Key) bool {
	i, ok := r.byName[textutil.NormalizeName(string(key))]
	return ok && r.states[i].Key == key
}

// States returns every entry ordered by key.
func (r *Registry) States() []State {
	out := slices.Clone(r.states)
	slices.SortFunc(out, func(a, b State) int {
		return strings.Compare(string(a.Key), string(b.Key))
	})
	return out
}

// Suggest returns the canonical key most similar to an unresolvable code,
// it is only meant for diagnostics and never used to resolve rows.
func (r *Registry) Suggest(code string) (Key, float64) {
	code = textutil.NormalizeName(code)
	var best Key
	var bestScore float64
	for _, s := range r.states {
		score := matchr.JaroWinkler(code, textutil.NormalizeName(string(s.Key)), false)
		if score > bestScore {
			best = s.Key
			bestScore = score
		}
	}
	return best, bestScore
}
