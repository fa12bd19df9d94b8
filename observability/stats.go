package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	once sync.Once
)

type runtimeStats struct {
	ctx              context.Context
	shutdownCallback func(ctx context.Context) error
	goroutines       metric.Int64ObservableUpDownCounter
	processes        metric.Int64ObservableUpDownCounter
}

func (stats *runtimeStats) waitForShutdown() {
	if stats == nil || stats.shutdownCallback == nil {
		return
	}
	go func() {
		<-stats.ctx.Done()
		_ = stats.shutdownCallback(context.Background())
	}()
}

func runtimeMeterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("xindex/runtime")
	builder.WriteString("/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitRuntimeStats registers the goroutine and GOMAXPROCS gauges plus the
// otel runtime instrumentation. Only the first call takes effect, shutdown
// runs once ctx is done.
func InitRuntimeStats(ctx context.Context, name string, shutdown ...func(ctx context.Context) error) {
	once.Do(func() {
		name = runtimeMeterName(name)
		stats := &runtimeStats{
			ctx: ctx,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](otel.Meter(
				name,
				metric.WithInstrumentationVersion(otelruntime.Version()),
			).Int64ObservableUpDownCounter(
				"runtime.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			),
			),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](otel.Meter(
				name,
				metric.WithInstrumentationVersion(otelruntime.Version()),
			).Int64ObservableUpDownCounter(
				"runtime.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			),
			),
		}
		if len(shutdown) > 0 {
			stats.shutdownCallback = shutdown[0]
		}
		_ = otelruntime.Start()
		stats.waitForShutdown()
	})
}
