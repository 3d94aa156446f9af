package transform

import (
	"covidexit/internal/normalize"
	"covidexit/internal/states"
	"covidexit/internal/table"
)

const (
	report_transform_rtlive = "transform.rtlive"
)

var RtLiveSchema = normalize.Schema{
	Source:   "rtlive",
	Required: []string{"date", "region", "mean"},
	Rename: map[string]string{
		"date":     normalize.Date,
		"region":   normalize.State,
		"mean":     normalize.RtMean,
		"lower_80": normalize.RtLower80,
		"upper_80": normalize.RtUpper80,
	},
}

var rtColumns = []string{
	normalize.State,
	normalize.Date,
	normalize.RtMean,
	normalize.RtLower80,
	normalize.RtUpper80,
}

// RtRecord is the reproduction number estimated for a state on a day.
type RtRecord struct {
	State states.Key
	Date  string
	Mean  table.Value
	// 80% credible interval, blank when not published
	Lower80 table.Value
	Upper80 table.Value
}

func (r RtRecord) values() map[string]table.Value {
	return map[string]table.Value{
		normalize.State:     table.String(string(r.State)),
		normalize.Date:      table.String(r.Date),
		normalize.RtMean:    r.Mean,
		normalize.RtLower80: r.Lower80,
		normalize.RtUpper80: r.Upper80,
	}
}

func (t Transformer) DecodeRtLive(raw *table.Table) ([]RtRecord, error) {
	renamed, err := RtLiveSchema.Apply(raw)
	if err != nil {
		t.tel.ReportBroken(report_transform_rtlive, err)
		return nil, err
	}

	keying := t.keyer.Start(RtLiveSchema.Source)
	defer keying.Done()

	records := make([]RtRecord, 0, renamed.Len())
	for i := 0; i < renamed.Len(); i++ {
		key, ok := keying.Resolve(renamed.Get(i, normalize.State).Text())
		if !ok {
			continue
		}
		day, err := date(renamed, i, normalize.Date)
		if err != nil {
			err = rowError(RtLiveSchema.Source, i, "date", err)
			t.tel.ReportBroken(report_transform_rtlive, err)
			return nil, err
		}
		r := RtRecord{State: key, Date: day}
		fields := []struct {
			column string
			dst    *table.Value
		}{
			{normalize.RtMean, &r.Mean},
			{normalize.RtLower80, &r.Lower80},
			{normalize.RtUpper80, &r.Upper80},
		}
		for _, f := range fields {
			*f.dst, err = count(renamed, i, f.column)
			if err != nil {
				err = rowError(RtLiveSchema.Source, i, f.column, err)
				t.tel.ReportBroken(report_transform_rtlive, err)
				return nil, err
			}
		}
		records = append(records, r)
	}
	return records, nil
}

// RtLive reindexes rt.csv by (State, date).
func (t Transformer) RtLive(raw *table.Table) (*table.Table, error) {
	records, err := t.DecodeRtLive(raw)
	if err != nil {
		return nil, err
	}
	values := make([]map[string]table.Value, len(records))
	for i, r := range records {
		values[i] = r.values()
	}
	return build(rtColumns, values)
}
