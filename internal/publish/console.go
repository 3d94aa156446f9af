package publish

import (
	"context"
	"fmt"
	"io"

	"covidexit/internal/table"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
)

// Console renders tables instead of uploading them, it backs run --preview.
type Console struct {
	out io.Writer
	// MaxRows truncates long tables, 0 prints everything.
	MaxRows int
}

func NewConsole(out io.Writer, maxRows int) Console {
	return Console{out: out, MaxRows: maxRows}
}

func (c Console) Publish(_ context.Context, t *table.Table, dest Destination) error {
	// a table title wraps at the table width, long destinations would be split
	_, err := fmt.Fprintln(c.out, dest.String())
	if err != nil {
		return err
	}
	w := prettytable.NewWriter()
	w.SetStyle(prettytable.StyleRounded)
	w.SetOutputMirror(c.out)

	records := t.Records()
	w.AppendHeader(toRow(records[0]))
	rows := records[1:]
	truncated := 0
	if c.MaxRows > 0 && len(rows) > c.MaxRows {
		truncated = len(rows) - c.MaxRows
		rows = rows[:c.MaxRows]
	}
	for _, r := range rows {
		w.AppendRow(toRow(r))
	}
	if truncated > 0 {
		w.AppendFooter(prettytable.Row{fmt.Sprintf("%d more rows", truncated)})
	}
	w.Render()
	return nil
}

func toRow(cells []string) prettytable.Row {
	row := make(prettytable.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
