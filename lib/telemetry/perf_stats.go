package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("lib/telemetry")

// InstrumentPerfStats samples process cpu, heap, and goroutine gauges
// every 30 seconds until ctx is cancelled. The daemon runs it for its
// whole lifetime.
func InstrumentPerfStats(ctx context.Context) {
	cpuUsage, _ := meter.Float64Gauge("cpu_usage_percent")
	heapAllocated, _ := meter.Int64Gauge("heap_allocated_mb")
	liveObjects, _ := meter.Int64Gauge("live_objects")
	goroutines, _ := meter.Int64Gauge("goroutine_count")

	go func() {
		ticker := time.NewTicker(time.Second * 30)
		defer ticker.Stop()

		var memStats runtime.MemStats
		for {
			select {
			case <-ticker.C:
				runtime.ReadMemStats(&memStats)
				heapAllocated.Record(ctx, int64(memStats.Alloc/1_000_000))
				liveObjects.Record(ctx, int64(memStats.Mallocs-memStats.Frees))
				goroutines.Record(ctx, int64(runtime.NumGoroutine()))

				// usage since the previous sample, does not block
				percents, err := cpu.Percent(0, false)
				if err != nil || len(percents) == 0 {
					slog.Warn("failed to read cpu usage", "err", err)
					continue
				}
				cpuUsage.Record(ctx, percents[0])
			case <-ctx.Done():
				return
			}
		}
	}()
}
