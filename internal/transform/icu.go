package transform

import (
	"covidexit/internal/normalize"
	"covidexit/internal/states"
	"covidexit/internal/table"
)

const (
	report_transform_hhs_icu = "transform.hhs_icu"
)

// HHSICUSchema is the shape of the properties of the HHS ICU estimate features.
var HHSICUSchema = normalize.Schema{
	Source: "hhs_icu",
	Required: []string{
		"state_name",
		"last_updated",
		"ICU_Beds_Occupied_Estimated",
		"Total_ICU_Beds",
	},
	Rename: map[string]string{
		"state_name":                  normalize.State,
		"last_updated":                normalize.Date,
		"ICU_Beds_Occupied_Estimated": normalize.IcuBedsOccupied,
		"Total_ICU_Beds":              normalize.IcuBedsTotal,
	},
}

var icuColumns = []string{
	normalize.State,
	normalize.Date,
	normalize.IcuBedsOccupied,
	normalize.IcuBedsTotal,
	normalize.IcuOccupancyRate,
}

type IcuRecord struct {
	State         states.Key
	Date          string
	Occupied      table.Value
	Total         table.Value
	OccupancyRate table.Value
}

func (r IcuRecord) values() map[string]table.Value {
	return map[string]table.Value{
		normalize.State:            table.String(string(r.State)),
		normalize.Date:             table.String(r.Date),
		normalize.IcuBedsOccupied:  r.Occupied,
		normalize.IcuBedsTotal:     r.Total,
		normalize.IcuOccupancyRate: r.OccupancyRate,
	}
}

func (t Transformer) DecodeHHSICU(raw *table.Table) ([]IcuRecord, error) {
	renamed, err := HHSICUSchema.Apply(raw)
	if err != nil {
		t.tel.ReportBroken(report_transform_hhs_icu, err)
		return nil, err
	}

	keying := t.keyer.Start(HHSICUSchema.Source)
	defer keying.Done()

	records := make([]IcuRecord, 0, renamed.Len())
	for i := 0; i < renamed.Len(); i++ {
		key, ok := keying.Resolve(renamed.Get(i, normalize.State).Text())
		if !ok {
			continue
		}
		// last_updated is a timestamp, only its day is kept
		day, err := date(renamed, i, normalize.Date)
		if err != nil {
			err = rowError(HHSICUSchema.Source, i, "last_updated", err)
			t.tel.ReportBroken(report_transform_hhs_icu, err)
			return nil, err
		}
		r := IcuRecord{State: key, Date: day}
		r.Occupied, err = count(renamed, i, normalize.IcuBedsOccupied)
		if err != nil {
			err = rowError(HHSICUSchema.Source, i, "ICU_Beds_Occupied_Estimated", err)
			t.tel.ReportBroken(report_transform_hhs_icu, err)
			return nil, err
		}
		r.Total, err = count(renamed, i, normalize.IcuBedsTotal)
		if err != nil {
			err = rowError(HHSICUSchema.Source, i, "Total_ICU_Beds", err)
			t.tel.ReportBroken(report_transform_hhs_icu, err)
			return nil, err
		}
		r.OccupancyRate = ratio(r.Occupied, r.Total, 1)
		records = append(records, r)
	}
	return records, nil
}

// HHSICU produces one row per state of estimated ICU bed occupancy.
func (t Transformer) HHSICU(raw *table.Table) (*table.Table, error) {
	records, err := t.DecodeHHSICU(raw)
	if err != nil {
		return nil, err
	}
	values := make([]map[string]table.Value, len(records))
	for i, r := range records {
		values[i] = r.values()
	}
	return build(icuColumns, values)
}
