package commands

import (
	"covidexit/internal/states"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statesCmd)
}

var statesCmd = &cobra.Command{
	Use:   "states [code...]",
	Short: "Lists the state lookup table, or resolves the codes given as positional arguments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := states.Load()
		if err != nil {
			return err
		}

		t := newTable()
		if len(args) == 0 {
			t.AppendHeader(prettytable.Row{"State", "Abbreviation", "Fips", "Population"})
			for _, s := range registry.States() {
				population, _ := registry.Population(s.Key)
				t.AppendRow(prettytable.Row{s.Key, s.Abbreviation, s.Fips, population})
			}
			t.Render()
			return nil
		}

		t.AppendHeader(prettytable.Row{"Code", "State", "Did you mean"})
		for _, code := range args {
			key, ok := registry.Resolve(code)
			if ok {
				t.AppendRow(prettytable.Row{code, key, ""})
				continue
			}
			suggestion, _ := registry.Suggest(code)
			t.AppendRow(prettytable.Row{code, "unresolved", suggestion})
		}
		t.Render()
		return nil
	},
}
