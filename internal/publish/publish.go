package publish

import (
	"context"
	"fmt"

	"covidexit/internal/table"
)

// Destination is a tab of a workbook. Report is the logical name the
// workbook key was resolved from.
type Destination struct {
	Report   string
	Workbook string
	Tab      string
}

func (d Destination) String() string {
	return fmt.Sprintf("%s (%s) / %s", d.Report, d.Workbook, d.Tab)
}

// Publisher replaces the contents of a destination with a table. It must
// not modify the table.
type Publisher interface {
	Publish(ctx context.Context, t *table.Table, dest Destination) error
}
