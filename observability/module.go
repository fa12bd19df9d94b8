package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/benz9527/xindex/xlog"
)

type ExporterKind string

const (
	NoneExporter       ExporterKind = "none"
	StdoutExporter     ExporterKind = "stdout"
	PrometheusExporter ExporterKind = "prometheus"
)

var ErrUnknownExporter = errors.New("[observability] unknown metrics exporter")

func ParseExporterKind(kind string) (ExporterKind, error) {
	switch k := ExporterKind(strings.ToLower(strings.TrimSpace(kind))); k {
	case "", NoneExporter:
		return NoneExporter, nil
	case StdoutExporter, PrometheusExporter:
		return k, nil
	default:
	}
	return NoneExporter, ErrUnknownExporter
}

type ExporterConfig struct {
	Kind       ExporterKind
	Interval   time.Duration
	Timeout    time.Duration
	Registerer promclient.Registerer
	// RuntimeStats also starts the runtime instrumentation under this name.
	RuntimeStats string
}

// Exporter is an installed global meter provider.
type Exporter struct {
	Kind     ExporterKind
	shutdown func(ctx context.Context) error
}

func (e *Exporter) Shutdown(ctx context.Context) error {
	if e == nil || e.shutdown == nil {
		return nil
	}
	return e.shutdown(ctx)
}

type exporterParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    ExporterConfig
	Logger    xlog.XLogger `optional:"true"`
}

// NewExporter installs the configured exporter and shuts it down on stop.
func NewExporter(params exporterParams) (*Exporter, error) {
	logger := params.Logger
	if logger == nil {
		logger = xlog.NewNopXLogger()
	}
	cfg := params.Config
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	exporter := &Exporter{Kind: cfg.Kind}
	var err error
	switch cfg.Kind {
	case StdoutExporter:
		exporter.shutdown, err = NewConsoleMetricsExporter(cfg.Interval, cfg.Timeout)
	case PrometheusExporter:
		exporter.shutdown, err = NewPrometheusMetricsExporter(cfg.Registerer)
	case NoneExporter, "":
		exporter.Kind = NoneExporter
	default:
		err = ErrUnknownExporter
	}
	if err != nil {
		return nil, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.RuntimeStats != "" && exporter.Kind != NoneExporter {
				InitRuntimeStats(context.Background(), cfg.RuntimeStats)
			}
			logger.Debug("[observability] metrics exporter installed",
				zap.String("kind", string(exporter.Kind)),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Debug("[observability] metrics exporter shutdown",
				zap.String("kind", string(exporter.Kind)),
			)
			return exporter.Shutdown(ctx)
		},
	})
	return exporter, nil
}

// Module provides *Exporter from a supplied ExporterConfig.
var Module = fx.Module("observability",
	fx.Provide(NewExporter),
)

// WithXLogger routes the fx lifecycle events of an app into logger.
func WithXLogger(logger xlog.XLogger) fx.Option {
	return fx.Options(
		fx.Provide(func() xlog.XLogger { return logger }),
		fx.WithLogger(func() fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
	)
}
