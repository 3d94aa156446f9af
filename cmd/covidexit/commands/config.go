package commands

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"covidexit/internal/pipeline"
	"covidexit/lib/configutil"
	"covidexit/lib/configutil/database"
)

const (
	publisherSheets  = "sheets"
	publisherSqlite  = "sqlite"
	publisherConsole = "console"
)

type SourceConfig struct {
	// Enabled defaults to true for every source but hhs_icu.
	Enabled *bool  `json:"enabled"`
	Url     string `json:"url"`
	// Season is the FluView season id, cdc_ili only.
	Season int `json:"season"`
}

type PublisherConfig struct {
	Kind           string          `json:"kind"`
	CredentialFile string          `json:"credential_file"`
	Database       database.Config `json:"database"`
}

type Config struct {
	Sources map[string]SourceConfig `json:"sources"`
	// Workbooks maps a report name to a workbook, a spreadsheet id for
	// sheets or a table prefix for sqlite.
	Workbooks     map[string]string `json:"workbooks"`
	Publisher     PublisherConfig   `json:"publisher"`
	PacingSeconds float64           `json:"pacing_seconds"`
	PreviewRows   int               `json:"preview_rows"`
}

var unitNames = []string{
	pipeline.UnitCovidTracking,
	pipeline.UnitCdcIli,
	pipeline.UnitRtLive,
	pipeline.UnitHhsIcu,
}

var disabledByDefault = map[string]bool{
	pipeline.UnitHhsIcu: true,
}

func (c Config) SourceEnabled(unit string) bool {
	source, ok := c.Sources[unit]
	if !ok || source.Enabled == nil {
		return !disabledByDefault[unit]
	}
	return *source.Enabled
}

func (c Config) Pacing() time.Duration {
	return time.Duration(c.PacingSeconds * float64(time.Second))
}

// Validate checks the configuration before anything is fetched, so a
// misconfigured run fails without hitting any source.
func (c Config) Validate(preview bool) error {
	var errs []error
	for name := range c.Sources {
		if !slices.Contains(unitNames, name) {
			errs = append(errs, fmt.Errorf("unknown source %q, expected one of %s", name, strings.Join(unitNames, ", ")))
		}
	}

	var missing []string
	for _, report := range pipeline.Reports(pipeline.DefaultPlan()) {
		if c.Workbooks[report] == "" {
			missing = append(missing, report)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		errs = append(errs, fmt.Errorf("no workbook configured for reports: %s", strings.Join(missing, ", ")))
	}

	if c.PacingSeconds < 0 {
		errs = append(errs, fmt.Errorf("pacing_seconds must not be negative"))
	}

	if !preview {
		switch c.Publisher.Kind {
		case publisherSheets:
			if c.Publisher.CredentialFile == "" {
				errs = append(errs, fmt.Errorf("the sheets publisher needs a credential_file"))
			}
		case publisherSqlite:
			if c.Publisher.Database.File == "" && c.Publisher.Database.Url == "" {
				errs = append(errs, fmt.Errorf("the sqlite publisher needs a database file or url"))
			}
		case publisherConsole:
		default:
			errs = append(errs, fmt.Errorf("unknown publisher kind %q", c.Publisher.Kind))
		}
	}
	return errors.Join(errs...)
}

func loadConfig(path string) (Config, error) {
	config, err := configutil.ReadConfig[Config](path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if config.Publisher.Kind == "" {
		config.Publisher.Kind = publisherSheets
	}
	if config.PreviewRows == 0 {
		config.PreviewRows = 10
	}
	return config, nil
}
