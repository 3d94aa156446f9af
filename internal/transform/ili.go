package transform

import (
	"fmt"
	"strings"

	"covidexit/internal/normalize"
	"covidexit/internal/states"
	"covidexit/internal/table"
	"covidexit/lib/textutil"
)

const (
	report_transform_cdc_ili = "transform.cdc_ili"
)

// FluView headers vary in case and spacing between exports, so they are
// compared in a folded form: lowercase, runs of whitespace as "_".
var (
	iliNetSchema = normalize.Schema{
		Source:   "cdc_ili.ilinet",
		Required: []string{"region", "week"},
	}
	iliLabsSchema = normalize.Schema{
		Source:   "cdc_ili.public_health_labs",
		Required: []string{"region", "week", "total_specimens"},
	}
)

const (
	colRegion         = "region"
	colYear           = "year"
	colWeek           = "week"
	colWeightedIli    = "%_weighted_ili"
	colIliTotal       = "ilitotal"
	colTotalPatients  = "total_patients"
	colTotalSpecimens = "total_specimens"
	colPositive       = "positive"
)

// subtype columns summed when a lab export has no positive column
var labSubtypes = []string{
	"a_(2009_h1n1)",
	"a_(h1)",
	"a_(h3)",
	"a_(subtyping_not_performed)",
	"a_(unable_to_subtype)",
	"b",
	"bvic",
	"byam",
	"h3n2v",
}

var iliColumns = []string{
	normalize.State,
	normalize.Date,
	normalize.IliPercent,
	normalize.IliTotal,
	normalize.TotalPatients,
	normalize.TotalSpecimens,
	normalize.PositiveSpecimens,
	normalize.SpecimenPositivity,
}

func foldHeaders(raw *table.Table) (*table.Table, error) {
	mapping := map[string]string{}
	for _, c := range raw.Columns() {
		mapping[c] = textutil.Fold(c, "_")
	}
	return raw.Rename(mapping)
}

// IliRecord is one (state, week) row of influenza-like-illness surveillance.
type IliRecord struct {
	State states.Key
	// Week is the Sunday the MMWR week starts on.
	Week string

	IliPercent    table.Value
	IliTotal      table.Value
	TotalPatients table.Value

	TotalSpecimens     table.Value
	PositiveSpecimens  table.Value
	SpecimenPositivity table.Value
}

func (r IliRecord) values() map[string]table.Value {
	return map[string]table.Value{
		normalize.State:              table.String(string(r.State)),
		normalize.Date:               table.String(r.Week),
		normalize.IliPercent:         r.IliPercent,
		normalize.IliTotal:           r.IliTotal,
		normalize.TotalPatients:      r.TotalPatients,
		normalize.TotalSpecimens:     r.TotalSpecimens,
		normalize.PositiveSpecimens:  r.PositiveSpecimens,
		normalize.SpecimenPositivity: r.SpecimenPositivity,
	}
}

type labCounts struct {
	total    table.Value
	positive table.Value
}

type regionWeek struct {
	region string
	week   string
}

// week reads the week of a FluView row, it is either a date or an MMWR week
// number next to a year column.
func week(t *table.Table, i int) (string, error) {
	raw := strings.TrimSpace(t.Get(i, colWeek).Text())
	if strings.ContainsAny(raw, "-/") || len(raw) == 8 {
		return normalize.CanonicalDate(raw)
	}
	w, ok := table.Parse(raw).Float()
	if !ok || w < 1 || w > 53 {
		return "", fmt.Errorf("invalid week %q", raw)
	}
	year, ok := t.Get(i, colYear).Float()
	if !ok {
		return "", fmt.Errorf("week %q without a year", raw)
	}
	return normalize.EpiWeekStart(int(year), int(w)), nil
}

func (t Transformer) decodeLabs(raw *table.Table) (map[regionWeek]labCounts, error) {
	labs, err := foldHeaders(raw)
	if err != nil {
		return nil, err
	}
	err = iliLabsSchema.Check(labs)
	if err != nil {
		return nil, err
	}

	out := make(map[regionWeek]labCounts, labs.Len())
	for i := 0; i < labs.Len(); i++ {
		w, err := week(labs, i)
		if err != nil {
			return nil, rowError(iliLabsSchema.Source, i, colWeek, err)
		}
		total, err := count(labs, i, colTotalSpecimens)
		if err != nil {
			return nil, rowError(iliLabsSchema.Source, i, colTotalSpecimens, err)
		}

		var positive table.Value
		if labs.Has(colPositive) {
			positive, err = count(labs, i, colPositive)
			if err != nil {
				return nil, rowError(iliLabsSchema.Source, i, colPositive, err)
			}
		} else {
			var sum float64
			var seen bool
			for _, subtype := range labSubtypes {
				if !labs.Has(subtype) {
					continue
				}
				v, err := count(labs, i, subtype)
				if err != nil {
					return nil, rowError(iliLabsSchema.Source, i, subtype, err)
				}
				if n, ok := v.Float(); ok {
					sum += n
					seen = true
				}
			}
			if seen {
				positive = table.Number(sum)
			}
		}

		key := regionWeek{region: strings.TrimSpace(labs.Get(i, colRegion).Text()), week: w}
		if _, ok := out[key]; ok {
			t.tel.ReportWarning(report_transform_cdc_ili, "duplicate lab row", "region", key.region, "week", w)
			continue
		}
		out[key] = labCounts{total: total, positive: positive}
	}
	return out, nil
}

// iliPercent prefers the weighted percentage and falls back to
// ILITOTAL / TOTAL PATIENTS.
func iliPercent(ilinet *table.Table, i int, iliTotal, totalPatients table.Value) table.Value {
	if ilinet.Has(colWeightedIli) {
		v := ilinet.Get(i, colWeightedIli)
		// FluView publishes "X" for states it does not weight
		if n, ok := table.Parse(v.Text()).Float(); ok {
			return table.Number(n)
		}
	}
	if iliTotal.IsEmpty() || totalPatients.IsEmpty() {
		return table.Undefined()
	}
	return ratio(iliTotal, totalPatients, 100)
}

// CDCILI aligns ILINet with the public health lab series on (region, week)
// and produces one row per (State, week). Lab columns are left blank for
// weeks the labs did not report.
func (t Transformer) CDCILI(ilinet, labs *table.Table) (*table.Table, error) {
	records, err := t.DecodeCDCILI(ilinet, labs)
	if err != nil {
		return nil, err
	}
	values := make([]map[string]table.Value, len(records))
	for i, r := range records {
		values[i] = r.values()
	}
	return build(iliColumns, values)
}

// DecodeCDCILI is CDCILI without building the table.
func (t Transformer) DecodeCDCILI(rawIlinet, rawLabs *table.Table) ([]IliRecord, error) {
	ilinet, err := foldHeaders(rawIlinet)
	if err != nil {
		t.tel.ReportBroken(report_transform_cdc_ili, err)
		return nil, err
	}
	err = iliNetSchema.Check(ilinet)
	if err != nil {
		t.tel.ReportBroken(report_transform_cdc_ili, err)
		return nil, err
	}
	lab, err := t.decodeLabs(rawLabs)
	if err != nil {
		t.tel.ReportBroken(report_transform_cdc_ili, err)
		return nil, err
	}

	keying := t.keyer.Start("cdc_ili")
	defer keying.Done()

	seen := map[regionWeek]bool{}
	records := make([]IliRecord, 0, ilinet.Len())
	for i := 0; i < ilinet.Len(); i++ {
		region := strings.TrimSpace(ilinet.Get(i, colRegion).Text())
		key, ok := keying.Resolve(region)
		if !ok {
			continue
		}
		w, err := week(ilinet, i)
		if err != nil {
			err = rowError(iliNetSchema.Source, i, colWeek, err)
			t.tel.ReportBroken(report_transform_cdc_ili, err)
			return nil, err
		}

		// a region may be spelled differently across rows, duplicates are
		// judged on the resolved key
		dedup := regionWeek{region: string(key), week: w}
		if seen[dedup] {
			t.tel.ReportWarning(report_transform_cdc_ili, "duplicate row", "state", key, "week", w)
			continue
		}
		seen[dedup] = true

		r := IliRecord{State: key, Week: w}
		r.IliTotal, err = count(ilinet, i, colIliTotal)
		if err != nil {
			err = rowError(iliNetSchema.Source, i, colIliTotal, err)
			t.tel.ReportBroken(report_transform_cdc_ili, err)
			return nil, err
		}
		r.TotalPatients, err = count(ilinet, i, colTotalPatients)
		if err != nil {
			err = rowError(iliNetSchema.Source, i, colTotalPatients, err)
			t.tel.ReportBroken(report_transform_cdc_ili, err)
			return nil, err
		}
		r.IliPercent = iliPercent(ilinet, i, r.IliTotal, r.TotalPatients)

		counts, ok := lab[regionWeek{region: region, week: w}]
		if ok {
			r.TotalSpecimens = counts.total
			r.PositiveSpecimens = counts.positive
			r.SpecimenPositivity = ratio(counts.positive, counts.total, 1)
		}

		records = append(records, r)
	}
	return records, nil
}
