package telemetry

import (
	"fmt"
	"log/slog"
)

// SlogAPI writes reports to the default slog logger.
//
// Params are usually an optional leading error followed by key/value pairs,
// ex. ReportBroken(id, err, "destination", dest). They are logged as "err"
// and the given keys. Anything that does not fit that shape is logged under
// positional keys.
type SlogAPI struct{}

func attrs(params []any) []any {
	var out []any
	if len(params) > 0 {
		if err, ok := params[0].(error); ok {
			out = append(out, "err", err)
			params = params[1:]
		}
	}
	if pairs(params) {
		return append(out, params...)
	}
	for i, p := range params {
		out = append(out, fmt.Sprintf("params.%d", i), p)
	}
	return out
}

func pairs(params []any) bool {
	if len(params)%2 != 0 {
		return false
	}
	for i := 0; i < len(params); i += 2 {
		if _, ok := params[i].(string); !ok {
			return false
		}
	}
	return true
}

func (SlogAPI) ReportBroken(id string, params ...any) {
	slog.Error("broken", append([]any{"id", id}, attrs(params)...)...)
}

func (SlogAPI) ReportWarning(id string, params ...any) {
	slog.Warn("warning", append([]any{"id", id}, attrs(params)...)...)
}

func (SlogAPI) ReportDebug(msg string, params ...any) {
	slog.Debug(msg, attrs(params)...)
}

func (SlogAPI) ReportCount(id string, count int64) {
	slog.Info("count", "id", id, "n", count)
}
