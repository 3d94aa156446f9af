// Package sqlitepub keeps "workbooks" in a sqlite or libsql database, every
// tab becomes a table that is replaced on each publish.
package sqlitepub

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"covidexit/internal/assert"
	"covidexit/internal/components/chrono"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/publish"
	"covidexit/internal/table"
)

const (
	report_sqlitepub_publish = "sqlitepub.publish"
)

const schema = `
create table if not exists published_tabs (
	table_name text primary key,
	report text not null,
	workbook text not null,
	tab text not null,
	row_count integer not null,
	published_at text not null
);`

type Publisher struct {
	db   *sql.DB
	time chrono.API
	tel  telemetry.API
}

func NewPublisher(ctx context.Context, db *sql.DB, time chrono.API, tel telemetry.API) (*Publisher, error) {
	assert.NotNil(db, "db")
	assert.NotNil(time, "time")
	assert.NotNil(tel, "telemetry")

	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("sqlitepub: create schema: %w", err)
	}
	return &Publisher{db: db, time: time, tel: telemetry.NewScopedAPI("sqlitepub", tel)}, nil
}

var unsafeIdentRegex = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// TableName is the table a destination is stored in.
func TableName(dest publish.Destination) string {
	return fmt.Sprintf("%s__%s", identPart(dest.Workbook), identPart(dest.Tab))
}

func identPart(s string) string {
	s = unsafeIdentRegex.ReplaceAllString(s, "_")
	return strings.ToLower(strings.Trim(s, "_"))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func cell(v table.Value) any {
	switch v.Kind() {
	case table.KindNumber:
		n, _ := v.Float()
		return n
	case table.KindEmpty:
		return nil
	}
	return v.Format()
}

func (p *Publisher) Publish(ctx context.Context, t *table.Table, dest publish.Destination) error {
	err := p.publish(ctx, t, dest)
	if err != nil {
		p.tel.ReportBroken(report_sqlitepub_publish, err, "destination", dest.String())
	}
	return err
}

func (p *Publisher) publish(ctx context.Context, t *table.Table, dest publish.Destination) error {
	name := TableName(dest)
	columns := t.Columns()
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, fmt.Sprintf("drop table if exists %s", quoteIdent(name)))
	if err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		"create table %s (%s)",
		quoteIdent(name),
		strings.Join(quoted, ", "),
	))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"insert into %s (%s) values (%s)",
		quoteIdent(name),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	))
	if err != nil {
		return err
	}
	defer insert.Close()

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		args := make([]any, len(row))
		for j, v := range row {
			args[j] = cell(v)
		}
		_, err = insert.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", name, err)
		}
	}

	_, err = tx.ExecContext(
		ctx,
		`insert into published_tabs (table_name, report, workbook, tab, row_count, published_at)
		values (?, ?, ?, ?, ?, ?)
		on conflict (table_name) do update set
			report = excluded.report,
			row_count = excluded.row_count,
			published_at = excluded.published_at`,
		name, dest.Report, dest.Workbook, dest.Tab, t.Len(),
		p.time.Now().Format("2006-01-02T15:04:05Z07:00"),
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}

	return tx.Commit()
}
