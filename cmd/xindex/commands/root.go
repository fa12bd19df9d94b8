// Package commands implements the xindex CLI commands.
package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xindex/internal/config"
	"github.com/benz9527/xindex/lib/id"
	"github.com/benz9527/xindex/lib/interval"
	"github.com/benz9527/xindex/lib/orderstat"
	"github.com/benz9527/xindex/observability"
	"github.com/benz9527/xindex/xlog"
)

const stdinInput = "-"

// flagKeys maps the persistent flags onto their config keys.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"log-file":  "log.file",
	"multiset":  "index.multiset",
	"workers":   "index.workers",
	"metrics":   "metrics.exporter",
	"style":     "output.style",
	"limit":     "output.limit",
}

type app struct {
	v          *viper.Viper
	configPath string
	inputPath  string
	cfg        *config.Config
	logger     xlog.XLogger
	// logClose releases the log file, nil when logging to stderr.
	logClose chan struct{}
}

// session is the state of one command run over the loaded records.
type session struct {
	cfg     *config.Config
	logger  xlog.XLogger
	records []Record
	idx     *interval.Tree[interval.Range, string]
	out     *renderer
}

// NewRootCommand builds the xindex command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	rootCmd := &cobra.Command{
		Use:   "xindex",
		Short: "xindex - Interval index queries over start stop [label] records",
		Long: `xindex loads closed integer intervals into an augmented red-black tree
and answers overlap, neighbor, grouping, region and rank queries.

Each input line is "start stop [label]", text after '#' is ignored.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: .xindex.yaml in CWD or $HOME)")
	flags.StringVarP(&a.inputPath, "input", "i", stdinInput, "Interval records file, - reads stdin, a .zip reads every archived file")
	flags.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	flags.String("log-file", config.DefaultLogFile, "Append the log to this file instead of stderr")
	flags.Bool("multiset", config.DefaultIndexMultiset, "Keep equal intervals as separate entries")
	flags.Int("workers", config.DefaultIndexWorkers, "Parallel drain workers (0 = GOMAXPROCS)")
	flags.String("metrics", config.DefaultMetricsExporter, "Metrics exporter: none, stdout, prometheus")
	flags.String("style", config.DefaultOutputStyle, "Table style: default, light, rounded, markdown")
	flags.Int("limit", config.DefaultOutputLimit, "Max printed rows (0 = no limit)")

	rootCmd.AddCommand(
		newQueryCommand(a),
		newGroupsCommand(a),
		newRegionCommand(a),
		newCheckCommand(a),
		newRankCommand(a),
		newSelectCommand(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	for name, key := range flagKeys {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return errors.Wrapf(err, "bind flag %s", name)
		}
	}
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	encoder := xlog.PlainText
	if strings.EqualFold(cfg.Log.Encoder, "json") {
		encoder = xlog.JSON
	}
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerEncoder(encoder),
		xlog.WithXLoggerLevel(xlog.ParseLogLevel(cfg.Log.Level)),
	}
	if cfg.Log.File != "" {
		a.logClose = make(chan struct{})
		opts = append(opts, xlog.WithXLoggerFileCore(&xlog.FileCoreConfig{
			FilePath: filepath.Dir(cfg.Log.File),
			Filename: filepath.Base(cfg.Log.File),
		}, a.logClose))
	} else {
		opts = append(opts, xlog.WithXLoggerWriter(xlog.StdErr))
	}
	if a.logger, err = xlog.BuildXLogger(opts...); err != nil {
		a.releaseLog()
		return errors.Wrapf(err, "open log file %s", cfg.Log.File)
	}
	return nil
}

// releaseLog flushes the logger and closes the log file if there is one.
func (a *app) releaseLog() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.logClose != nil {
		close(a.logClose)
		a.logClose = nil
	}
}

func (a *app) readRecords(cmd *cobra.Command) ([]Record, error) {
	if strings.EqualFold(filepath.Ext(a.inputPath), archiveExt) {
		return ReadArchive(a.inputPath, id.MonotonicNonZeroID())
	}
	var r io.Reader = cmd.InOrStdin()
	if a.inputPath != stdinInput && a.inputPath != "" {
		f, err := os.Open(a.inputPath)
		if err != nil {
			return nil, errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}
	records, err := ParseRecords(r, id.MonotonicNonZeroID())
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", a.inputPath)
	}
	return records, nil
}

// run loads the index and hands it to fn. When a metrics exporter is
// configured, fn runs inside a started observability app.
func (a *app) run(cmd *cobra.Command, fn func(s *session) error) (err error) {
	defer a.releaseLog()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	treeOpts := []interval.TreeOpt[interval.Range]{
		interval.WithLogger[interval.Range](a.logger),
	}
	if a.cfg.Index.Multiset {
		treeOpts = append(treeOpts, interval.WithMultiset[interval.Range]())
	}

	var registry *promclient.Registry
	exporterCfg := a.cfg.ExporterConfig()
	if exporterCfg.Kind != observability.NoneExporter {
		if exporterCfg.Kind == observability.PrometheusExporter {
			registry = promclient.NewRegistry()
			exporterCfg.Registerer = registry
		}
		metricsApp := fx.New(
			observability.Module,
			observability.WithXLogger(a.logger),
			fx.Supply(exporterCfg),
			fx.Invoke(func(*observability.Exporter) {}),
		)
		if err = metricsApp.Start(ctx); err != nil {
			return errors.Wrap(err, "start metrics exporter")
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Metrics.Timeout)
			defer cancel()
			err = multierr.Append(err, metricsApp.Stop(stopCtx))
		}()
		treeOpts = append(treeOpts, interval.WithStats[interval.Range](cmd.Name()))
	}

	records, err := a.readRecords(cmd)
	if err != nil {
		return err
	}
	idx := interval.New[interval.Range, string](treeOpts...)
	for _, rec := range records {
		if _, _, err = idx.Insert(rec.Range, rec.Label); err != nil {
			return errors.Wrapf(err, "line %d: %s", rec.Line, rec.Range)
		}
	}
	a.logger.Debug("[xindex] records loaded",
		zap.Int("records", len(records)),
		zap.Int64("entries", idx.Len()),
		zap.Bool("multiset", idx.IsMultiset()),
	)

	s := &session{
		cfg:     a.cfg,
		logger:  a.logger,
		records: records,
		idx:     idx,
		out: &renderer{
			out:   cmd.OutOrStdout(),
			style: a.cfg.Output.Style,
			limit: a.cfg.Output.Limit,
		},
	}
	if err = fn(s); err != nil {
		return err
	}
	if registry != nil {
		// Gathered before the deferred stop shuts the reader down.
		return s.renderMetrics(registry)
	}
	return nil
}

// starts indexes the record starts for rank queries.
func (s *session) starts() *orderstat.Tree[int64, string] {
	ranks := orderstat.NewOrdered[int64, string](
		orderstat.WithMultiset(),
		orderstat.WithLogger(s.logger),
	)
	for _, rec := range s.records {
		ranks.Insert(rec.Range.Start(), rec.Label)
	}
	return ranks
}

func (s *session) renderMetrics(gatherer promclient.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	rows := make([][2]string, 0, len(families))
	for _, family := range families {
		rows = append(rows, [2]string{
			family.GetName(),
			strings.ToLower(family.GetType().String()),
		})
	}
	s.out.pairs("metrics", rows)
	return nil
}
