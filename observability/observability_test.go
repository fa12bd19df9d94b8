package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/benz9527/xindex/xlog"
)

func TestParseExporterKind(t *testing.T) {
	testcases := []struct {
		name     string
		input    string
		expected ExporterKind
		wantErr  bool
	}{
		{name: "empty", input: "", expected: NoneExporter},
		{name: "none", input: "none", expected: NoneExporter},
		{name: "stdout", input: " Stdout ", expected: StdoutExporter},
		{name: "prometheus", input: "prometheus", expected: PrometheusExporter},
		{name: "unknown", input: "otlp", expected: NoneExporter, wantErr: true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			kind, err := ParseExporterKind(tc.input)
			if tc.wantErr {
				require.ErrorIs(tt, err, ErrUnknownExporter)
			} else {
				require.NoError(tt, err)
			}
			require.Equal(tt, tc.expected, kind)
		})
	}
}

func TestIndexStats_Nil(t *testing.T) {
	var stats *IndexStats
	require.NotPanics(t, func() {
		stats.RecordInsert(false)
		stats.RecordInsert(true)
		stats.RecordRemove()
		stats.RecordClear(10)
		stats.RecordQuery("overlap", 1)
		stats.RecordViolation()
	})
}

func TestModule_Prometheus(t *testing.T) {
	reg := promclient.NewRegistry()
	var exporter *Exporter
	app := fxtest.New(t,
		WithXLogger(xlog.NewNopXLogger()),
		fx.Supply(ExporterConfig{Kind: PrometheusExporter, Registerer: reg}),
		Module,
		fx.Populate(&exporter),
	)
	app.RequireStart()
	require.Equal(t, PrometheusExporter, exporter.Kind)

	stats := NewIndexStats("module-test")
	stats.RecordInsert(false)
	stats.RecordInsert(false)
	stats.RecordInsert(true)
	stats.RecordRemove()
	stats.RecordQuery("overlap", 3)
	stats.RecordQuery("stab", 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	found := map[string]bool{}
	for _, mf := range mfs {
		for _, prefix := range []string{"xindex_size", "xindex_insert_count", "xindex_query_count", "xindex_query_results"} {
			if strings.HasPrefix(mf.GetName(), prefix) {
				found[prefix] = true
			}
		}
	}
	require.Len(t, found, 4)
	app.RequireStop()
}

func TestModule_None(t *testing.T) {
	var exporter *Exporter
	app := fxtest.New(t,
		fx.Supply(ExporterConfig{}),
		Module,
		fx.Populate(&exporter),
	)
	app.RequireStart()
	require.Equal(t, NoneExporter, exporter.Kind)
	require.NoError(t, exporter.Shutdown(context.Background()))
	app.RequireStop()
}

func TestModule_Stdout(t *testing.T) {
	var exporter *Exporter
	app := fxtest.New(t,
		WithXLogger(xlog.NewNopXLogger()),
		fx.Supply(ExporterConfig{Kind: StdoutExporter, Interval: time.Hour, Timeout: time.Second}),
		Module,
		fx.Populate(&exporter),
	)
	app.RequireStart()
	require.Equal(t, StdoutExporter, exporter.Kind)
	NewIndexStats("stdout-test").RecordInsert(false)
	app.RequireStop()
}

func TestSnapshotProcess(t *testing.T) {
	profile, err := SnapshotProcess()
	require.NoError(t, err)
	require.Greater(t, profile.RSS, uint64(0))
	require.Greater(t, profile.HeapAlloc, uint64(0))
	require.Greater(t, profile.Goroutines, 0)

	profile, err = SnapshotProcess(MemProfile)
	require.NoError(t, err)
	require.Equal(t, int32(0), profile.Threads)
	require.Equal(t, "mem", MemProfile.String())
	require.Equal(t, "cpu", CPUProfile.String())
}

func TestRuntimeMeterName(t *testing.T) {
	require.Equal(t, "xindex/runtime/default", runtimeMeterName("  "))
	require.Equal(t, "xindex/runtime/cli", runtimeMeterName("cli"))
}
