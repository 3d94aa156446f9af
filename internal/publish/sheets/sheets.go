// Package sheets publishes tables to Google Sheets, each destination tab is
// replaced in full on every publish.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"covidexit/internal/assert"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/publish"
	"covidexit/internal/table"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	report_sheets_publish = "sheets.publish"
)

// USER_ENTERED lets the spreadsheet parse dates and numbers the way a person
// typing them would.
const valueInputOption = "USER_ENTERED"

type Publisher struct {
	svc *gsheets.Service
	tel telemetry.API
}

// NewPublisher authenticates with a service account credential file.
func NewPublisher(ctx context.Context, credentialFile string, tel telemetry.API) (*Publisher, error) {
	assert.NotEmptyStr(credentialFile, "credential file")
	return NewPublisherWithOptions(
		ctx,
		tel,
		option.WithCredentialsFile(credentialFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
}

func NewPublisherWithOptions(ctx context.Context, tel telemetry.API, opts ...option.ClientOption) (*Publisher, error) {
	assert.NotNil(tel, "telemetry")
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: %w", err)
	}
	return &Publisher{svc: svc, tel: telemetry.NewScopedAPI("sheets", tel)}, nil
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func (p *Publisher) ensureTab(ctx context.Context, workbook, tab string) error {
	spreadsheet, err := p.svc.Spreadsheets.Get(workbook).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("get workbook: %w", err)
	}
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return nil
		}
	}

	p.tel.ReportDebug("creating tab", "workbook", workbook, "tab", tab)
	_, err = p.svc.Spreadsheets.BatchUpdate(workbook, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: tab},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add tab: %w", err)
	}
	return nil
}

// values lays out the header and rows, numbers are sent as numbers so the
// sheet does not reinterpret them.
func values(t *table.Table) [][]any {
	out := make([][]any, 0, t.Len()+1)
	header := make([]any, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	out = append(out, header)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		line := make([]any, len(row))
		for j, v := range row {
			if n, ok := v.Float(); ok && v.Kind() == table.KindNumber {
				line[j] = n
				continue
			}
			line[j] = v.Format()
		}
		out = append(out, line)
	}
	return out
}

func (p *Publisher) Publish(ctx context.Context, t *table.Table, dest publish.Destination) error {
	err := p.ensureTab(ctx, dest.Workbook, dest.Tab)
	if err != nil {
		p.tel.ReportBroken(report_sheets_publish, err, "destination", dest.String())
		return err
	}

	tab := quoteTab(dest.Tab)
	_, err = p.svc.Spreadsheets.Values.
		Clear(dest.Workbook, tab, &gsheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		err = fmt.Errorf("clear tab: %w", err)
		p.tel.ReportBroken(report_sheets_publish, err, "destination", dest.String())
		return err
	}

	_, err = p.svc.Spreadsheets.Values.
		Update(dest.Workbook, tab+"!A1", &gsheets.ValueRange{Values: values(t)}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		err = fmt.Errorf("update tab: %w", err)
		p.tel.ReportBroken(report_sheets_publish, err, "destination", dest.String())
		return err
	}
	return nil
}
