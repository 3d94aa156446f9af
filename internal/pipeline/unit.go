package pipeline

import (
	"context"
	"fmt"

	"covidexit/internal/scrapers/fluview"
	"covidexit/internal/table"
	"covidexit/internal/transform"
)

// Raw holds the tables a unit extracted, by name.
type Raw map[string]*table.Table

// Outputs holds the normalized tables a unit produced, by name.
type Outputs map[string]*table.Table

// Unit is a pluggable source: it can extract its raw tables and normalize them.
type Unit interface {
	Name() string
	Extract(ctx context.Context) (Raw, error)
	Normalize(raw Raw) (Outputs, error)
}

// Unit names, they are also the keys of the sources configuration.
const (
	UnitCovidTracking = "covidtracking"
	UnitCdcIli        = "cdc_ili"
	UnitRtLive        = "rtlive"
	UnitHhsIcu        = "hhs_icu"
)

// Normalized output names.
const (
	OutputCovidTrackingCDC        = "covidtracking_cdc"
	OutputCovidTrackingHistorical = "covidtracking_historical"
	OutputCovidTrackingCurrent    = "covidtracking_current"
	OutputCdcIli                  = "cdc_ili"
	OutputRtLive                  = "rtlive"
	OutputHhsIcu                  = "hhs_icu"
)

const (
	rawDaily   = "daily"
	rawCurrent = "current"
	rawRt      = "rt"
	rawIcu     = "icu"
)

func requireRaw(raw Raw, names ...string) error {
	for _, name := range names {
		if raw[name] == nil {
			return fmt.Errorf("raw table %q was not extracted", name)
		}
	}
	return nil
}

type CovidTrackingSource interface {
	Daily(ctx context.Context) (*table.Table, error)
	Current(ctx context.Context) (*table.Table, error)
}

type CovidTrackingUnit struct {
	source      CovidTrackingSource
	transformer transform.Transformer
}

func NewCovidTrackingUnit(source CovidTrackingSource, transformer transform.Transformer) CovidTrackingUnit {
	return CovidTrackingUnit{source: source, transformer: transformer}
}

func (u CovidTrackingUnit) Name() string {
	return UnitCovidTracking
}

func (u CovidTrackingUnit) Extract(ctx context.Context) (Raw, error) {
	daily, err := u.source.Daily(ctx)
	if err != nil {
		return nil, err
	}
	current, err := u.source.Current(ctx)
	if err != nil {
		return nil, err
	}
	return Raw{rawDaily: daily, rawCurrent: current}, nil
}

func (u CovidTrackingUnit) Normalize(raw Raw) (Outputs, error) {
	err := requireRaw(raw, rawDaily, rawCurrent)
	if err != nil {
		return nil, err
	}
	cdc, historical, err := u.transformer.CovidTrackingDaily(raw[rawDaily])
	if err != nil {
		return nil, err
	}
	current, err := u.transformer.CovidTrackingCurrent(raw[rawCurrent])
	if err != nil {
		return nil, err
	}
	return Outputs{
		OutputCovidTrackingCDC:        cdc,
		OutputCovidTrackingHistorical: historical,
		OutputCovidTrackingCurrent:    current,
	}, nil
}

type FluViewSource interface {
	Download(ctx context.Context) (map[string]*table.Table, error)
}

type CdcIliUnit struct {
	source      FluViewSource
	transformer transform.Transformer
}

func NewCdcIliUnit(source FluViewSource, transformer transform.Transformer) CdcIliUnit {
	return CdcIliUnit{source: source, transformer: transformer}
}

func (u CdcIliUnit) Name() string {
	return UnitCdcIli
}

func (u CdcIliUnit) Extract(ctx context.Context) (Raw, error) {
	files, err := u.source.Download(ctx)
	if err != nil {
		return nil, err
	}
	return Raw(files), nil
}

func (u CdcIliUnit) Normalize(raw Raw) (Outputs, error) {
	err := requireRaw(raw, fluview.IliNetCsv, fluview.PublicHealthLabsCsv)
	if err != nil {
		return nil, err
	}
	ili, err := u.transformer.CDCILI(raw[fluview.IliNetCsv], raw[fluview.PublicHealthLabsCsv])
	if err != nil {
		return nil, err
	}
	return Outputs{OutputCdcIli: ili}, nil
}

type RtSource interface {
	Estimates(ctx context.Context) (*table.Table, error)
}

type RtLiveUnit struct {
	source      RtSource
	transformer transform.Transformer
}

func NewRtLiveUnit(source RtSource, transformer transform.Transformer) RtLiveUnit {
	return RtLiveUnit{source: source, transformer: transformer}
}

func (u RtLiveUnit) Name() string {
	return UnitRtLive
}

func (u RtLiveUnit) Extract(ctx context.Context) (Raw, error) {
	rt, err := u.source.Estimates(ctx)
	if err != nil {
		return nil, err
	}
	return Raw{rawRt: rt}, nil
}

func (u RtLiveUnit) Normalize(raw Raw) (Outputs, error) {
	err := requireRaw(raw, rawRt)
	if err != nil {
		return nil, err
	}
	rt, err := u.transformer.RtLive(raw[rawRt])
	if err != nil {
		return nil, err
	}
	return Outputs{OutputRtLive: rt}, nil
}

type IcuSource interface {
	ICU(ctx context.Context) (*table.Table, error)
}

type HhsIcuUnit struct {
	source      IcuSource
	transformer transform.Transformer
}

func NewHhsIcuUnit(source IcuSource, transformer transform.Transformer) HhsIcuUnit {
	return HhsIcuUnit{source: source, transformer: transformer}
}

func (u HhsIcuUnit) Name() string {
	return UnitHhsIcu
}

func (u HhsIcuUnit) Extract(ctx context.Context) (Raw, error) {
	icu, err := u.source.ICU(ctx)
	if err != nil {
		return nil, err
	}
	return Raw{rawIcu: icu}, nil
}

func (u HhsIcuUnit) Normalize(raw Raw) (Outputs, error) {
	err := requireRaw(raw, rawIcu)
	if err != nil {
		return nil, err
	}
	icu, err := u.transformer.HHSICU(raw[rawIcu])
	if err != nil {
		return nil, err
	}
	return Outputs{OutputHhsIcu: icu}, nil
}
