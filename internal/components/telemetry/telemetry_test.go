package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := NewRecorder()
	tel := NewScopedAPI("pipeline", NewScopedAPI("transform", rec))

	tel.ReportWarning("keyer.unresolved", "Guam?")
	tel.ReportCount("keyer.dropped", 3)
	tel.ReportBroken("schema.check", "missing")

	require.Len(t, rec.Warnings, 1)
	require.Equal(t, "transform: pipeline: keyer.unresolved", rec.Warnings[0].ID)
	require.Equal(t, []any{"Guam?"}, rec.Warnings[0].Params)

	n, ok := rec.Count("keyer.dropped")
	require.True(t, ok)
	require.Equal(t, int64(3), n)
	require.True(t, rec.HasWarning("keyer.unresolved"))
	require.Len(t, rec.Broken, 1)
}

func TestInstrumentResty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.Header().Set("X-Reason", "gone")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("not here"))
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	rec := NewRecorder()
	client := resty.New().SetBaseURL(srv.URL)
	InstrumentResty(client, "test", rec)

	res, err := client.R().SetContext(context.Background()).Get("/ok")
	require.NoError(t, err)
	require.Equal(t, "ok", res.String())
	require.Len(t, rec.Debug, 2)
	require.Empty(t, rec.Warnings)

	_, err = client.R().Get("/missing")
	require.NoError(t, err)
	require.Len(t, rec.Warnings, 1)
	require.Contains(t, rec.Warnings[0].Params[1], "X-Reason: gone")
	require.Contains(t, rec.Warnings[0].Params[1], "not here")
}

func TestSlogAttrs(t *testing.T) {
	failure := errors.New("quota exceeded")

	testCases := []struct {
		params   []any
		expected []any
	}{
		{params: nil, expected: nil},
		{params: []any{failure}, expected: []any{"err", failure}},
		{
			params:   []any{failure, "destination", "homepage / Historical", "rows", 3},
			expected: []any{"err", failure, "destination", "homepage / Historical", "rows", 3},
		},
		{params: []any{"state", "Ohio"}, expected: []any{"state", "Ohio"}},
		{params: []any{"Guam?"}, expected: []any{"params.0", "Guam?"}},
		{params: []any{1, 2}, expected: []any{"params.0", 1, "params.1", 2}},
	}
	for _, test := range testCases {
		diff := cmp.Diff(test.expected, attrs(test.params), cmp.Comparer(func(a, b error) bool {
			return a == b
		}))
		if diff != "" {
			t.Fatal(diff)
		}
	}
}
