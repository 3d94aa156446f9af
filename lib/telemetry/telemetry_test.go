package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupWithoutExporters(t *testing.T) {
	tel, err := Setup(context.Background(), "covidexit-test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupFromEnvMissingConfig(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	_, statErr := os.Stat(filepath.Join(dir, ConfigFile))
	require.ErrorIs(t, statErr, os.ErrNotExist)

	tel, err := SetupFromEnv(context.Background(), "covidexit-test")
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
}

func TestPerfGauges(t *testing.T) {
	gauges, err := newPerfGauges()
	require.NoError(t, err)
	// the global meter provider is a no-op here, recording must not panic
	gauges.record(context.Background(), time.Millisecond)
	require.NotNil(t, otel.GetMeterProvider())
}

func TestSetupPerfStatsOutlivesSetup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel, err := Setup(ctx, "covidexit-test", Config{PerfStats: true})
	require.NoError(t, err)
	require.NotNil(t, tel.perfStats)

	time.Sleep(20 * time.Millisecond)
	select {
	case <-tel.perfStats:
		t.Fatal("perf stats recorder stopped when Setup returned")
	default:
	}

	cancel()
	select {
	case <-tel.perfStats:
	case <-time.After(time.Second):
		t.Fatal("perf stats recorder did not stop after cancel")
	}
}
