package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type perfGauges struct {
	cpu         metric.Float64Gauge
	memory      metric.Int64Gauge
	liveObjects metric.Int64Gauge
	goroutines  metric.Int64Gauge
}

func newPerfGauges() (perfGauges, error) {
	meter := otel.Meter("covidexit/perf_stats")
	var g perfGauges
	var err error
	g.cpu, err = meter.Float64Gauge("cpu_usage")
	if err != nil {
		return g, err
	}
	g.memory, err = meter.Int64Gauge("allocated_mb")
	if err != nil {
		return g, err
	}
	g.liveObjects, err = meter.Int64Gauge("live_objects")
	if err != nil {
		return g, err
	}
	g.goroutines, err = meter.Int64Gauge("goroutine_count")
	return g, err
}

func (g perfGauges) record(ctx context.Context, cpuWindow time.Duration) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	usage, err := cpu.PercentWithContext(ctx, cpuWindow, false)
	if err == nil && len(usage) > 0 {
		g.cpu.Record(ctx, usage[0])
	} else if err != nil {
		slog.Debug("failed to read cpu usage", "err", err)
	}

	g.memory.Record(ctx, int64(memStats.Alloc/1_000_000))
	g.liveObjects.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
	g.goroutines.Record(ctx, int64(runtime.NumGoroutine()))
}

// InstrumentPerfStats records process gauges every 30 seconds until ctx
// is done. It must be called after the meter provider is set. The returned
// channel is closed when recording stops.
func InstrumentPerfStats(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	gauges, err := newPerfGauges()
	if err != nil {
		slog.Warn("failed to create perf stats gauges", "err", err)
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Second * 30)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gauges.record(ctx, time.Second*5)
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}
