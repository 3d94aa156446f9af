package telemetry

import (
	"fmt"
)

// API is how every stage of the pipeline reports what happened to it. The
// command line wires it to slog and otel, tests wire it to a Recorder and
// assert on the reports.
type API interface {
	// ReportBroken reports a failure that stops a stage, ex. a source that
	// could not be downloaded or a table that violates its schema.
	//
	// id names the stage that failed, not the line that failed: the rt.live
	// client reports "client.estimates" whether the request or the csv
	// decoding went wrong, and the error passed in params tells which.
	// Ids are lowercase, dot separated and use underscores inside a segment.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something the run survives but a maintainer may
	// want to look at, ex. a state code that did not resolve. Ids follow
	// ReportBroken.
	ReportWarning(id string, params ...any)

	ReportDebug(msg string, params ...any)

	// ReportCount reports the value of a counter as of now, ex. how many
	// rows a source dropped. Successive reports of an id replace each other.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, so that a component can use
// short ids and still be told apart in the logs.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
