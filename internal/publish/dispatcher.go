package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"covidexit/internal/assert"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/table"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_dispatcher_publish = "dispatcher.publish"
	report_dispatcher_skip    = "dispatcher.skip"
)

var meter = otel.Meter("covidexit/publish")

// ErrUnknownReport is wrapped by errors for reports without a configured workbook.
var ErrUnknownReport = errors.New("unknown report")

type DispatcherOptions struct {
	// Workbooks maps a report name to its workbook key.
	Workbooks map[string]string
	// Pacing is the minimum delay between the end of one publish call and
	// the start of the next.
	Pacing time.Duration
	// Post disables every publish call when false.
	Post bool
}

// Dispatcher routes tables to their destinations one at a time.
type Dispatcher struct {
	publisher Publisher
	workbooks map[string]string
	pacing    time.Duration
	post      bool
	rows      metric.Int64Counter
	tel       telemetry.API

	// lastEnd is when the previous publish call returned.
	lastEnd   time.Time
	published []Destination
}

func NewDispatcher(publisher Publisher, opts DispatcherOptions, tel telemetry.API) (*Dispatcher, error) {
	assert.NotNil(publisher, "publisher")
	assert.NotNil(tel, "telemetry")

	if opts.Pacing < 0 {
		return nil, fmt.Errorf("negative pacing: %s", opts.Pacing)
	}
	rows, err := meter.Int64Counter(
		"published_rows",
		metric.WithDescription("rows written to publishing destinations"),
	)
	if err != nil {
		return nil, err
	}

	workbooks := make(map[string]string, len(opts.Workbooks))
	for report, key := range opts.Workbooks {
		workbooks[report] = key
	}

	return &Dispatcher{
		publisher: publisher,
		workbooks: workbooks,
		pacing:    opts.Pacing,
		post:      opts.Post,
		rows:      rows,
		tel:       telemetry.NewScopedAPI("publish", tel),
	}, nil
}

// Resolve finds the destination of a report's tab.
func (d *Dispatcher) Resolve(report, tab string) (Destination, error) {
	workbook, ok := d.workbooks[report]
	if !ok || workbook == "" {
		return Destination{}, fmt.Errorf("%w: %s", ErrUnknownReport, report)
	}
	return Destination{Report: report, Workbook: workbook, Tab: tab}, nil
}

// Publish sends t to the tab of a report. The call waits until the pacing
// delay has passed since the previous publish returned, and does nothing
// but resolve the destination when posting is disabled.
func (d *Dispatcher) Publish(ctx context.Context, t *table.Table, report, tab string) error {
	dest, err := d.Resolve(report, tab)
	if err != nil {
		d.tel.ReportBroken(report_dispatcher_publish, err)
		return err
	}
	if !d.post {
		d.tel.ReportDebug(report_dispatcher_skip, "destination", dest.String(), "rows", t.Len())
		return nil
	}

	err = d.wait(ctx)
	if err != nil {
		return err
	}
	d.tel.ReportDebug(report_dispatcher_publish, "destination", dest.String(), "rows", t.Len())

	err = d.publisher.Publish(ctx, t, dest)
	d.lastEnd = time.Now()
	if err != nil {
		err = fmt.Errorf("publish %s: %w", dest, err)
		d.tel.ReportBroken(report_dispatcher_publish, err)
		return err
	}

	d.rows.Add(ctx, int64(t.Len()), metric.WithAttributes(
		attribute.String("report", dest.Report),
		attribute.String("tab", dest.Tab),
	))
	d.published = append(d.published, dest)
	return nil
}

func (d *Dispatcher) wait(ctx context.Context) error {
	if d.pacing == 0 || d.lastEnd.IsZero() {
		return ctx.Err()
	}
	remaining := time.Until(d.lastEnd.Add(d.pacing))
	if remaining <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Published lists the destinations written so far, in order.
func (d *Dispatcher) Published() []Destination {
	out := make([]Destination, len(d.published))
	copy(out, d.published)
	return out
}
