package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"covidexit/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.UserAgent()
		w.Write([]byte(`[{"state":"NY"}]`))
	}))
	defer srv.Close()

	dump, err := NewFilesystemOutput(filepath.Join(t.TempDir(), "dump"))
	require.NoError(t, err)

	client := NewClient(ClientOptions{
		BaseUrl: srv.URL,
		Name:    "covidtracking",
		Dump:    dump,
	}, telemetry.NewRecorder())

	res, err := client.R().Get("/v1/states/daily.json")
	require.NoError(t, err)
	require.Equal(t, `[{"state":"NY"}]`, res.String())
	require.Equal(t, "covidexit/1.0", userAgent)

	dumped, err := os.ReadFile(filepath.Join(dump.directory, "001-covidtracking-daily.json"))
	require.NoError(t, err)
	require.Equal(t, res.Body(), dumped)
}

func TestNewClientNegativeRate(t *testing.T) {
	require.Panics(t, func() {
		NewClient(ClientOptions{RequestsPerSecond: -1}, telemetry.NewRecorder())
	})
}
