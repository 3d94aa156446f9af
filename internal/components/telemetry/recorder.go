package telemetry

import (
	"strings"
	"sync"
)

// Report is a single call made against a Recorder.
type Report struct {
	ID     string
	Params []any
}

// Recorder is an API that keeps every report in memory so tests can make
// assertions on what a component reported.
type Recorder struct {
	mu       sync.Mutex
	Broken   []Report
	Warnings []Report
	Debug    []Report
	Counts   map[string]int64
}

func NewRecorder() *Recorder {
	return &Recorder{Counts: map[string]int64{}}
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Broken = append(r.Broken, Report{ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, Report{ID: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Debug = append(r.Debug, Report{ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts[id] = count
}

// Count returns the last count reported under an id ending with suffix,
// scoped namespaces are ignored this way.
func (r *Recorder) Count(suffix string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.Counts {
		if strings.HasSuffix(id, suffix) {
			return n, true
		}
	}
	return 0, false
}

// HasWarning reports whether a warning with an id ending in suffix was recorded.
func (r *Recorder) HasWarning(suffix string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.Warnings {
		if strings.HasSuffix(w.ID, suffix) {
			return true
		}
	}
	return false
}
