package interval

import (
	"github.com/benz9527/xindex/lib/infra"
	"github.com/benz9527/xindex/observability"
	"github.com/benz9527/xindex/xlog"
)

type treeCfg[I Interval] struct {
	multiset  bool
	tie       infra.KeyComparator[I]
	logger    xlog.XLogger
	statsName string
}

type TreeOpt[I Interval] func(cfg *treeCfg[I])

// WithMultiset keeps every inserted entry, equal intervals included, in
// insertion order.
func WithMultiset[I Interval]() TreeOpt[I] {
	return func(cfg *treeCfg[I]) {
		cfg.multiset = true
	}
}

// WithTieBreaker orders intervals with equal start and stop.
func WithTieBreaker[I Interval](tie infra.KeyComparator[I]) TreeOpt[I] {
	return func(cfg *treeCfg[I]) {
		cfg.tie = tie
	}
}

func WithLogger[I Interval](logger xlog.XLogger) TreeOpt[I] {
	return func(cfg *treeCfg[I]) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithStats records mutations and queries under the given index name.
func WithStats[I Interval](name string) TreeOpt[I] {
	return func(cfg *treeCfg[I]) {
		cfg.statsName = name
	}
}

func (cfg *treeCfg[I]) stats() *observability.IndexStats {
	if cfg.statsName == "" {
		return nil
	}
	return observability.NewIndexStats(cfg.statsName)
}
