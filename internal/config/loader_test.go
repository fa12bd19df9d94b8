package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xindex/observability"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xindex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	require.True(t, cfg.Index.Multiset)
	require.Equal(t, 0, cfg.Index.Workers)
	require.Equal(t, DefaultLogLevel, cfg.Log.Level)
	require.Equal(t, DefaultLogEncoder, cfg.Log.Encoder)
	require.Empty(t, cfg.Log.File)
	require.Equal(t, DefaultMetricsExporter, cfg.Metrics.Exporter)
	require.Equal(t, DefaultMetricsInterval, cfg.Metrics.Interval)
	require.Equal(t, DefaultOutputStyle, cfg.Output.Style)

	exp := cfg.ExporterConfig()
	require.Equal(t, observability.NoneExporter, exp.Kind)
	require.Equal(t, DefaultMetricsTimeout, exp.Timeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
index:
  multiset: false
  workers: 3
log:
  level: info
  file: /var/log/xindex.log
metrics:
  exporter: prometheus
  interval: 2s
output:
  style: markdown
  limit: 20
`)
	t.Setenv("XINDEX_LOG_LEVEL", "error")
	t.Setenv("XINDEX_OUTPUT_LIMIT", "5")

	cfg, err := Load(nil, path)
	require.NoError(t, err)
	require.False(t, cfg.Index.Multiset)
	require.Equal(t, 3, cfg.Index.Workers)
	require.Equal(t, "error", cfg.Log.Level)
	require.Equal(t, "/var/log/xindex.log", cfg.Log.File)
	require.Equal(t, 2*time.Second, cfg.Metrics.Interval)
	require.Equal(t, "markdown", cfg.Output.Style)
	require.Equal(t, 5, cfg.Output.Limit)
	require.Equal(t, observability.PrometheusExporter, cfg.ExporterConfig().Kind)
}

func TestLoad_OverridesWin(t *testing.T) {
	path := writeConfig(t, "index:\n  workers: 3\n")
	v := viper.New()
	v.Set("index.workers", 7)
	cfg, err := Load(v, path)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Index.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	type testcase struct {
		name    string
		content string
		err     error
	}
	testcases := []testcase{
		{name: "negative workers", content: "index:\n  workers: -1\n", err: ErrInvalidWorkers},
		{name: "log level", content: "log:\n  level: trace\n", err: ErrInvalidLogLevel},
		{name: "encoder", content: "log:\n  encoder: xml\n", err: ErrInvalidEncoder},
		{name: "style", content: "output:\n  style: fancy\n", err: ErrInvalidStyle},
		{name: "exporter", content: "metrics:\n  exporter: otlp\n", err: observability.ErrUnknownExporter},
		{name: "interval", content: "metrics:\n  interval: 0s\n", err: ErrInvalidInterval},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			_, err := Load(nil, writeConfig(tt, tc.content))
			require.ErrorIs(tt, err, tc.err)
		})
	}

	_, err := Load(nil, writeConfig(t, "index: [broken"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "read config")
}
