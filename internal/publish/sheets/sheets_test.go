package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"covidexit/internal/components/telemetry"
	"covidexit/internal/publish"
	"covidexit/internal/table"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

type fakeSheets struct {
	mu       sync.Mutex
	tabs     []string
	calls    []string
	written  *gsheets.ValueRange
	failWith int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("content-type", "application/json")
	if f.failWith != 0 {
		w.WriteHeader(f.failWith)
		w.Write([]byte(`{"error": {"code": 403, "message": "caller does not have permission"}}`))
		return
	}

	switch {
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "get")
		var sheets []map[string]any
		for _, tab := range f.tabs {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": tab}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "add")
		var req gsheets.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.tabs = append(f.tabs, req.Requests[0].AddSheet.Properties.Title)
		w.Write([]byte(`{}`))
	case strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		body, _ := io.ReadAll(r.Body)
		var vr gsheets.ValueRange
		json.Unmarshal(body, &vr)
		f.written = &vr
		w.Write([]byte(`{}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFixture(t *testing.T, fake *fakeSheets) *Publisher {
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	publisher, err := NewPublisherWithOptions(
		context.Background(),
		telemetry.NewRecorder(),
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return publisher
}

func summaryTable(t *testing.T) *table.Table {
	out := table.New("State", "positivity_rate")
	require.NoError(t, out.Append(table.String("Guam"), table.Undefined()))
	require.NoError(t, out.Append(table.String("Ohio"), table.Number(0.25)))
	return out
}

func TestPublishExistingTab(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"State Summary"}}
	publisher := newFixture(t, fake)

	err := publisher.Publish(context.Background(), summaryTable(t), publish.Destination{
		Report: "cdc_guidance", Workbook: "workbook-a", Tab: "State Summary",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"get", "clear", "update"}, fake.calls)

	require.NotNil(t, fake.written)
	require.Len(t, fake.written.Values, 3)
	require.Equal(t, []any{"State", "positivity_rate"}, fake.written.Values[0])
	require.Equal(t, []any{"Guam", table.UndefinedMarker}, fake.written.Values[1])
	require.Equal(t, []any{"Ohio", 0.25}, fake.written.Values[2])
}

func TestPublishCreatesTab(t *testing.T) {
	fake := &fakeSheets{}
	publisher := newFixture(t, fake)

	err := publisher.Publish(context.Background(), summaryTable(t), publish.Destination{
		Report: "homepage", Workbook: "workbook-h", Tab: "rt.live - csv",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"get", "add", "clear", "update"}, fake.calls)
	require.Equal(t, []string{"rt.live - csv"}, fake.tabs)
}

func TestPublishFailure(t *testing.T) {
	fake := &fakeSheets{failWith: http.StatusForbidden}
	publisher := newFixture(t, fake)

	err := publisher.Publish(context.Background(), summaryTable(t), publish.Destination{
		Report: "homepage", Workbook: "workbook-h", Tab: "rt.live - csv",
	})
	require.ErrorContains(t, err, "get workbook")
}

func TestQuoteTab(t *testing.T) {
	require.Equal(t, "'State Summary'", quoteTab("State Summary"))
	require.Equal(t, "'Bob''s tab'", quoteTab("Bob's tab"))
}
