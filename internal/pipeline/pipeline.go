package pipeline

import (
	"context"
	"fmt"
	"time"

	"covidexit/internal/assert"
	"covidexit/internal/components/chrono"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/publish"
	"covidexit/internal/summary"
	"covidexit/internal/table"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_pipeline_unit     = "pipeline.unit"
	report_pipeline_step     = "pipeline.step"
	report_pipeline_combined = "pipeline.combined"
)

var tracer = otel.Tracer("covidexit/pipeline")

type Options struct {
	// Units are run in order, a source that is not in Units is disabled.
	Units      []Unit
	Publisher  publish.Publisher
	Workbooks  map[string]string
	Pacing     time.Duration
	Population summary.Population
	Time       chrono.API
	// Plan defaults to DefaultPlan.
	Plan []Step
}

type Pipeline struct {
	units      []Unit
	publisher  publish.Publisher
	workbooks  map[string]string
	pacing     time.Duration
	population summary.Population
	time       chrono.API
	plan       []Step
	tel        telemetry.API
}

func New(opts Options, tel telemetry.API) *Pipeline {
	assert.NotNil(opts.Publisher, "publisher")
	assert.NotNil(opts.Population, "population")
	assert.NotNil(opts.Time, "time")
	assert.NotNil(tel, "telemetry")

	plan := opts.Plan
	if plan == nil {
		plan = DefaultPlan()
	}
	return &Pipeline{
		units:      opts.Units,
		publisher:  opts.Publisher,
		workbooks:  opts.Workbooks,
		pacing:     opts.Pacing,
		population: opts.Population,
		time:       opts.Time,
		plan:       plan,
		tel:        telemetry.NewScopedAPI("pipeline", tel),
	}
}

// Result is what a run computed, it is the same whether or not the run
// posted to its destinations.
type Result struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	// Normalized tables by output name.
	Normalized map[string]*table.Table
	// Tables holds the table of every step that ran, by step name.
	Tables map[string]*table.Table
	// Skipped lists steps whose source is disabled.
	Skipped   []string
	Published []publish.Destination
	Warnings  []string
}

// Run extracts and normalizes every unit, then executes the plan step by
// step. The first error aborts the run. With post false every table is
// still computed but nothing is published.
func (p *Pipeline) Run(ctx context.Context, post bool) (Result, error) {
	result := Result{
		RunID:      uuid.NewString(),
		Started:    p.time.Now(),
		Normalized: map[string]*table.Table{},
		Tables:     map[string]*table.Table{},
	}

	ctx, span := tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.String("run_id", result.RunID),
		attribute.Bool("post", post),
	))
	defer span.End()

	p.tel.ReportDebug("starting run", "run_id", result.RunID, "post", post)

	dispatcher, err := publish.NewDispatcher(p.publisher, publish.DispatcherOptions{
		Workbooks: p.workbooks,
		Pacing:    p.pacing,
		Post:      post,
	}, p.tel)
	if err != nil {
		return result, err
	}

	for _, u := range p.units {
		outputs, err := p.runUnit(ctx, u)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}
		for name, t := range outputs {
			result.Normalized[name] = t
		}
	}

	var criteria []summary.Criteria
	var summaries []*table.Table
	for _, step := range p.plan {
		t, ok, err := p.stepTable(step, &result, criteria, summaries)
		if err != nil {
			err = fmt.Errorf("step %s: %w", step.Name, err)
			p.tel.ReportBroken(report_pipeline_step, err)
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}
		if !ok {
			p.tel.ReportDebug("skipping step", "step", step.Name)
			result.Skipped = append(result.Skipped, step.Name)
			continue
		}
		result.Tables[step.Name] = t
		if step.Criteria != nil && len(step.Criteria.Headline) > 0 {
			criteria = append(criteria, *step.Criteria)
			summaries = append(summaries, t)
		}
		p.tel.ReportCount(fmt.Sprintf("%s.%s", report_pipeline_step, step.Name), int64(t.Len()))

		err = p.publishStep(ctx, dispatcher, step, t)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}
	}

	result.Published = dispatcher.Published()
	result.Finished = p.time.Now()
	return result, nil
}

func (p *Pipeline) runUnit(ctx context.Context, u Unit) (Outputs, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("unit %s", u.Name()))
	defer span.End()

	raw, err := u.Extract(ctx)
	if err != nil {
		err = fmt.Errorf("extract %s: %w", u.Name(), err)
		p.tel.ReportBroken(report_pipeline_unit, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	outputs, err := u.Normalize(raw)
	if err != nil {
		err = fmt.Errorf("normalize %s: %w", u.Name(), err)
		p.tel.ReportBroken(report_pipeline_unit, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return outputs, nil
}

// stepTable computes the table of a step, ok is false when the step's
// source did not run.
func (p *Pipeline) stepTable(
	step Step,
	result *Result,
	criteria []summary.Criteria,
	summaries []*table.Table,
) (*table.Table, bool, error) {
	if step.Combined {
		if len(summaries) == 0 {
			return nil, false, nil
		}
		merged, err := summary.Merge(summaries...)
		if err != nil {
			return nil, false, err
		}
		combined, err := merged.Select(summary.CombinedColumns(criteria...)...)
		if err != nil {
			return nil, false, err
		}
		if combined.Len() == 0 {
			warning := fmt.Sprintf("%s: no state is present in every criteria summary", step.Name)
			p.tel.ReportWarning(report_pipeline_combined, warning)
			result.Warnings = append(result.Warnings, warning)
		}
		return combined, true, nil
	}

	normalized, ok := result.Normalized[step.Output]
	if !ok {
		return nil, false, nil
	}
	if step.Criteria == nil {
		return normalized, true, nil
	}
	out, err := summary.Summarize(normalized, step.Criteria.Columns, p.population)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (p *Pipeline) publishStep(ctx context.Context, dispatcher *publish.Dispatcher, step Step, t *table.Table) error {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("publish %s", step.Name), trace.WithAttributes(
		attribute.String("report", step.Report),
		attribute.String("tab", step.Tab),
		attribute.Int("rows", t.Len()),
	))
	defer span.End()

	err := dispatcher.Publish(ctx, t, step.Report, step.Tab)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
