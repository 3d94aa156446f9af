package transform

import (
	"fmt"

	"covidexit/internal/normalize"
	"covidexit/internal/states"
	"covidexit/internal/table"
)

const (
	report_transform_covidtracking = "transform.covidtracking"
)

// CovidTrackingSchema is the shape of states/daily.json and states/current.json.
var CovidTrackingSchema = normalize.Schema{
	Source: "covidtracking",
	Required: []string{
		"date",
		"state",
		"positive",
		"negativeIncrease",
		"positiveIncrease",
		"dateModified",
	},
	Rename: map[string]string{
		"date":                     normalize.Date,
		"state":                    normalize.State,
		"positive":                 normalize.Positive,
		"negative":                 normalize.Negative,
		"positiveIncrease":         normalize.PositiveIncrease,
		"negativeIncrease":         normalize.NegativeIncrease,
		"totalTestResults":         normalize.TotalTestResults,
		"totalTestResultsIncrease": normalize.TotalTestResultsIncrease,
		"death":                    normalize.Death,
		"deathIncrease":            normalize.DeathIncrease,
		"hospitalizedCurrently":    normalize.HospitalizedCurrently,
		"hospitalizedIncrease":     normalize.HospitalizedIncrease,
		"inIcuCurrently":           normalize.InIcuCurrently,
		"recovered":                normalize.Recovered,
		"dateModified":             normalize.LastUpdated,
	},
}

// columns of the table the CDC criteria are computed from
var cdcColumns = []string{
	normalize.State,
	normalize.Date,
	normalize.Positive,
	normalize.Negative,
	normalize.PositiveIncrease,
	normalize.NegativeIncrease,
	normalize.TotalTestResultsIncrease,
	normalize.Death,
	normalize.DeathIncrease,
	normalize.HospitalizedCurrently,
	normalize.LastUpdated,
}

var historicalColumns = []string{
	normalize.State,
	normalize.Date,
	normalize.Positive,
	normalize.Negative,
	normalize.PositiveIncrease,
	normalize.NegativeIncrease,
	normalize.TotalTestResults,
	normalize.TotalTestResultsIncrease,
	normalize.Death,
	normalize.DeathIncrease,
	normalize.HospitalizedCurrently,
	normalize.HospitalizedIncrease,
	normalize.InIcuCurrently,
	normalize.Recovered,
	normalize.LastUpdated,
}

var currentColumns = []string{
	normalize.State,
	normalize.Date,
	normalize.Positive,
	normalize.Negative,
	normalize.TotalTestResults,
	normalize.Death,
	normalize.HospitalizedCurrently,
	normalize.InIcuCurrently,
	normalize.Recovered,
	normalize.LastUpdated,
}

// DailyRecord is a single covidtracking.com observation of a state.
type DailyRecord struct {
	State states.Key
	Date  string
	// LastUpdated is dateModified as published, it is not reformatted.
	LastUpdated string

	Positive                 table.Value
	Negative                 table.Value
	PositiveIncrease         table.Value
	NegativeIncrease         table.Value
	TotalTestResults         table.Value
	TotalTestResultsIncrease table.Value
	Death                    table.Value
	DeathIncrease            table.Value
	HospitalizedCurrently    table.Value
	HospitalizedIncrease     table.Value
	InIcuCurrently           table.Value
	Recovered                table.Value
}

func (r DailyRecord) values() map[string]table.Value {
	return map[string]table.Value{
		normalize.State:                    table.String(string(r.State)),
		normalize.Date:                     table.String(r.Date),
		normalize.LastUpdated:              table.String(r.LastUpdated),
		normalize.Positive:                 r.Positive,
		normalize.Negative:                 r.Negative,
		normalize.PositiveIncrease:         r.PositiveIncrease,
		normalize.NegativeIncrease:         r.NegativeIncrease,
		normalize.TotalTestResults:         r.TotalTestResults,
		normalize.TotalTestResultsIncrease: r.TotalTestResultsIncrease,
		normalize.Death:                    r.Death,
		normalize.DeathIncrease:            r.DeathIncrease,
		normalize.HospitalizedCurrently:    r.HospitalizedCurrently,
		normalize.HospitalizedIncrease:     r.HospitalizedIncrease,
		normalize.InIcuCurrently:           r.InIcuCurrently,
		normalize.Recovered:                r.Recovered,
	}
}

// DecodeCovidTracking checks a covidtracking.com table and decodes its rows,
// rows whose state cannot be resolved are dropped.
func (t Transformer) DecodeCovidTracking(raw *table.Table) ([]DailyRecord, error) {
	renamed, err := CovidTrackingSchema.Apply(raw)
	if err != nil {
		t.tel.ReportBroken(report_transform_covidtracking, err)
		return nil, err
	}

	keying := t.keyer.Start(CovidTrackingSchema.Source)
	defer keying.Done()

	records := make([]DailyRecord, 0, renamed.Len())
	for i := 0; i < renamed.Len(); i++ {
		key, ok := keying.Resolve(renamed.Get(i, normalize.State).Text())
		if !ok {
			continue
		}
		day, err := date(renamed, i, normalize.Date)
		if err != nil {
			err = rowError(CovidTrackingSchema.Source, i, "date", err)
			t.tel.ReportBroken(report_transform_covidtracking, err)
			return nil, err
		}

		r := DailyRecord{
			State:       key,
			Date:        day,
			LastUpdated: renamed.Get(i, normalize.LastUpdated).Text(),
		}
		fields := []struct {
			column string
			dst    *table.Value
		}{
			{normalize.Positive, &r.Positive},
			{normalize.Negative, &r.Negative},
			{normalize.PositiveIncrease, &r.PositiveIncrease},
			{normalize.NegativeIncrease, &r.NegativeIncrease},
			{normalize.TotalTestResults, &r.TotalTestResults},
			{normalize.TotalTestResultsIncrease, &r.TotalTestResultsIncrease},
			{normalize.Death, &r.Death},
			{normalize.DeathIncrease, &r.DeathIncrease},
			{normalize.HospitalizedCurrently, &r.HospitalizedCurrently},
			{normalize.HospitalizedIncrease, &r.HospitalizedIncrease},
			{normalize.InIcuCurrently, &r.InIcuCurrently},
			{normalize.Recovered, &r.Recovered},
		}
		for _, f := range fields {
			*f.dst, err = count(renamed, i, f.column)
			if err != nil {
				err = rowError(CovidTrackingSchema.Source, i, f.column, err)
				t.tel.ReportBroken(report_transform_covidtracking, err)
				return nil, err
			}
		}

		// older daily.json rows lack totalTestResultsIncrease
		if r.TotalTestResultsIncrease.IsEmpty() {
			p, pok := r.PositiveIncrease.Float()
			n, nok := r.NegativeIncrease.Float()
			if pok && nok {
				r.TotalTestResultsIncrease = table.Number(p + n)
			}
		}

		records = append(records, r)
	}
	return records, nil
}

func layout(records []DailyRecord, columns []string) (*table.Table, error) {
	values := make([]map[string]table.Value, len(records))
	for i, r := range records {
		values[i] = r.values()
	}
	out, err := build(columns, values)
	if err != nil {
		return nil, fmt.Errorf("covidtracking: %w", err)
	}
	return out, nil
}

func (t Transformer) covidTracking(raw *table.Table, columns []string) (*table.Table, error) {
	records, err := t.DecodeCovidTracking(raw)
	if err != nil {
		return nil, err
	}
	return layout(records, columns)
}

// CovidTrackingCDC produces the (State, date) table the CDC criteria are
// summarized from.
func (t Transformer) CovidTrackingCDC(daily *table.Table) (*table.Table, error) {
	return t.covidTracking(daily, cdcColumns)
}

// CovidTrackingHistorical produces the history table of the homepage.
func (t Transformer) CovidTrackingHistorical(daily *table.Table) (*table.Table, error) {
	return t.covidTracking(daily, historicalColumns)
}

// CovidTrackingDaily decodes states/daily.json once and lays it out as both
// the CDC table and the historical table.
func (t Transformer) CovidTrackingDaily(daily *table.Table) (cdc, historical *table.Table, err error) {
	records, err := t.DecodeCovidTracking(daily)
	if err != nil {
		return nil, nil, err
	}
	cdc, err = layout(records, cdcColumns)
	if err != nil {
		return nil, nil, err
	}
	historical, err = layout(records, historicalColumns)
	if err != nil {
		return nil, nil, err
	}
	return cdc, historical, nil
}

// CovidTrackingCurrent produces one row per state from states/current.json.
func (t Transformer) CovidTrackingCurrent(current *table.Table) (*table.Table, error) {
	return t.covidTracking(current, currentColumns)
}
