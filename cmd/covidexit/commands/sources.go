package commands

import (
	"covidexit/internal/pipeline"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the sources, whether they are enabled and which url they are fetched from.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(prettytable.Row{"Source", "Enabled", "Url", "Reports"})
		for _, name := range unitNames {
			url := sourceUrl(config, name)
			if url == "" {
				url = defaultUrl(name)
			}
			t.AppendRow(prettytable.Row{name, config.SourceEnabled(name), url, unitReports(name)})
		}
		t.Render()
		return nil
	},
}

var unitOutputs = map[string][]string{
	pipeline.UnitCovidTracking: {
		pipeline.OutputCovidTrackingCDC,
		pipeline.OutputCovidTrackingHistorical,
		pipeline.OutputCovidTrackingCurrent,
	},
	pipeline.UnitCdcIli: {pipeline.OutputCdcIli},
	pipeline.UnitRtLive: {pipeline.OutputRtLive},
	pipeline.UnitHhsIcu: {pipeline.OutputHhsIcu},
}

// unitReports lists the reports fed by a unit's outputs.
func unitReports(unit string) []string {
	var steps []pipeline.Step
	for _, step := range pipeline.DefaultPlan() {
		for _, output := range unitOutputs[unit] {
			if step.Output == output {
				steps = append(steps, step)
			}
		}
	}
	return pipeline.Reports(steps)
}
