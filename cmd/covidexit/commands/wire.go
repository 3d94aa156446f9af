package commands

import (
	"context"
	"fmt"
	"os"

	"covidexit/internal/components/chrono"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/pipeline"
	"covidexit/internal/publish"
	"covidexit/internal/publish/sheets"
	"covidexit/internal/publish/sqlitepub"
	"covidexit/internal/scrapers/covidtracking"
	"covidexit/internal/scrapers/fluview"
	"covidexit/internal/scrapers/hhs"
	"covidexit/internal/scrapers/rtlive"
	"covidexit/internal/states"
	"covidexit/internal/transform"
	"covidexit/lib/restyutil"
)

func newTelemetryAPI() (telemetry.API, error) {
	return telemetry.NewOtelAPI(telemetry.SlogAPI{})
}

// sourceUrl is what the client of a unit connects to, an empty url
// makes the client use its default.
func sourceUrl(config Config, unit string) string {
	return config.Sources[unit].Url
}

func defaultUrl(unit string) string {
	switch unit {
	case pipeline.UnitCovidTracking:
		return covidtracking.DefaultBaseUrl
	case pipeline.UnitCdcIli:
		return fluview.DefaultUrl
	case pipeline.UnitRtLive:
		return rtlive.DefaultUrl
	case pipeline.UnitHhsIcu:
		return hhs.DefaultUrl
	}
	return ""
}

// buildUnits creates the enabled units in run order.
func buildUnits(
	config Config,
	registry *states.Registry,
	dump *restyutil.FilesystemOutput,
	tel telemetry.API,
) []pipeline.Unit {
	transformer := transform.NewTransformer(registry, tel)

	var units []pipeline.Unit
	for _, name := range unitNames {
		if !config.SourceEnabled(name) {
			continue
		}
		url := sourceUrl(config, name)
		switch name {
		case pipeline.UnitCovidTracking:
			units = append(units, pipeline.NewCovidTrackingUnit(
				covidtracking.NewClient(url, dump, tel),
				transformer,
			))
		case pipeline.UnitCdcIli:
			season := config.Sources[name].Season
			if season == 0 {
				season = fluview.DefaultSeason
			}
			units = append(units, pipeline.NewCdcIliUnit(
				fluview.NewClient(url, season, dump, tel),
				transformer,
			))
		case pipeline.UnitRtLive:
			units = append(units, pipeline.NewRtLiveUnit(
				rtlive.NewClient(url, dump, tel),
				transformer,
			))
		case pipeline.UnitHhsIcu:
			units = append(units, pipeline.NewHhsIcuUnit(
				hhs.NewClient(url, dump, tel),
				transformer,
			))
		}
	}
	return units
}

// buildPublisher creates the configured publisher, preview replaces it
// with a console rendering. The returned function releases it.
func buildPublisher(
	ctx context.Context,
	config Config,
	preview bool,
	time chrono.API,
	tel telemetry.API,
) (publish.Publisher, func(), error) {
	noop := func() {}
	if preview || config.Publisher.Kind == publisherConsole {
		return publish.NewConsole(os.Stdout, config.PreviewRows), noop, nil
	}

	switch config.Publisher.Kind {
	case publisherSheets:
		publisher, err := sheets.NewPublisher(ctx, config.Publisher.CredentialFile, tel)
		if err != nil {
			return nil, noop, err
		}
		return publisher, noop, nil
	case publisherSqlite:
		db, err := config.Publisher.Database.OpenDB()
		if err != nil {
			return nil, noop, err
		}
		publisher, err := sqlitepub.NewPublisher(ctx, db, time, tel)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		return publisher, func() { db.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown publisher kind %q", config.Publisher.Kind)
}
