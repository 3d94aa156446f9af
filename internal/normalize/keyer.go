package normalize

import (
	"fmt"
	"slices"

	"covidexit/internal/assert"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/states"
)

const (
	report_keyer_unresolved = "keyer.unresolved"
)

// suggestions below this Jaro-Winkler score are not worth logging
const suggestThreshold = 0.85

// Keyer resolves the state codes of a source to canonical keys.
type Keyer struct {
	registry *states.Registry
	tel      telemetry.API
}

func NewKeyer(registry *states.Registry, tel telemetry.API) Keyer {
	assert.NotNil(registry, "registry")
	assert.NotNil(tel, "telemetry")
	return Keyer{registry: registry, tel: tel}
}

func (k Keyer) Registry() *states.Registry {
	return k.registry
}

// Start begins keying the rows of one source table.
func (k Keyer) Start(source string) *Keying {
	return &Keying{
		keyer:      k,
		source:     source,
		unresolved: map[string]int{},
	}
}

// Keying tracks the codes of one source table that could not be resolved.
type Keying struct {
	keyer      Keyer
	source     string
	unresolved map[string]int
	dropped    int
}

// Resolve returns the canonical key of code, a row whose code cannot be
// resolved must be dropped by the caller.
func (k *Keying) Resolve(code string) (states.Key, bool) {
	key, ok := k.keyer.registry.Resolve(code)
	if !ok {
		k.unresolved[code]++
		k.dropped++
	}
	return key, ok
}

// Dropped is the number of rows dropped so far.
func (k *Keying) Dropped() int {
	return k.dropped
}

// Done reports how many rows were dropped and, when a dropped code looks
// like a misspelled state, what it probably meant.
func (k *Keying) Done() int {
	tel := k.keyer.tel
	tel.ReportCount(fmt.Sprintf("%s.%s", report_keyer_unresolved, k.source), int64(k.dropped))
	if k.dropped == 0 {
		return 0
	}

	codes := make([]string, 0, len(k.unresolved))
	for code := range k.unresolved {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	for _, code := range codes {
		suggestion, score := k.keyer.registry.Suggest(code)
		if score < suggestThreshold {
			tel.ReportWarning(
				report_keyer_unresolved,
				"source", k.source,
				"code", code,
				"rows", k.unresolved[code],
			)
			continue
		}
		tel.ReportWarning(
			report_keyer_unresolved,
			"source", k.source,
			"code", code,
			"rows", k.unresolved[code],
			"did_you_mean", string(suggestion),
		)
	}
	return k.dropped
}
