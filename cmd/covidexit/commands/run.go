package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"covidexit/internal/components/chrono"
	"covidexit/internal/pipeline"
	"covidexit/internal/states"
	"covidexit/lib/restyutil"
	"covidexit/lib/telemetry"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	dryRun  bool
	preview bool
	dumpDir string
)

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute every table without publishing anything.")
	runCmd.Flags().BoolVar(&preview, "preview", false, "Render every table to the console instead of the configured publisher.")
	runCmd.Flags().StringVar(&dumpDir, "dump", "", "Write every fetched response body to this directory.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--dry-run] [--preview] [--dump <dir>]",
	Short: "Extracts every enabled source, computes the criteria summaries and publishes them.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		providers, err := telemetry.SetupFromEnv(ctx, "covidexit")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		defer providers.Shutdown(context.Background())

		config, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		err = config.Validate(preview)
		if err != nil {
			return err
		}

		result, err := run(ctx, config)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

func run(ctx context.Context, config Config) (pipeline.Result, error) {
	tel, err := newTelemetryAPI()
	if err != nil {
		return pipeline.Result{}, err
	}
	registry, err := states.Load()
	if err != nil {
		return pipeline.Result{}, err
	}
	clock, err := chrono.NewStandardImpl()
	if err != nil {
		return pipeline.Result{}, err
	}

	var dump *restyutil.FilesystemOutput
	if dumpDir != "" {
		dump, err = restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			return pipeline.Result{}, err
		}
	}

	publisher, release, err := buildPublisher(ctx, config, preview, clock, tel)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("create publisher: %w", err)
	}
	defer release()

	units := buildUnits(config, registry, dump, tel)
	if len(units) == 0 {
		return pipeline.Result{}, fmt.Errorf("every source is disabled")
	}

	p := pipeline.New(pipeline.Options{
		Units:      units,
		Publisher:  publisher,
		Workbooks:  config.Workbooks,
		Pacing:     config.Pacing(),
		Population: registry,
		Time:       clock,
	}, tel)

	post := !dryRun
	slog.Info("starting run", "sources", len(units), "post", post, "publisher", config.Publisher.Kind)
	return p.Run(ctx, post)
}

func printResult(result pipeline.Result) {
	t := newTable()
	t.SetTitle(fmt.Sprintf("run %s", result.RunID))
	t.AppendHeader(prettytable.Row{"Step", "Rows", "Columns"})

	names := make([]string, 0, len(result.Tables))
	for name := range result.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tab := result.Tables[name]
		t.AppendRow(prettytable.Row{name, tab.Len(), len(tab.Columns())})
	}
	for _, name := range result.Skipped {
		t.AppendRow(prettytable.Row{name, "skipped", ""})
	}
	t.AppendFooter(prettytable.Row{
		"published",
		len(result.Published),
		result.Finished.Sub(result.Started).Round(time.Millisecond).String(),
	})
	t.Render()

	for _, w := range result.Warnings {
		slog.Warn(w)
	}
}
