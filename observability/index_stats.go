package observability

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	IndexStatsName = "xindex/index"
)

// IndexStats records the mutations and queries of one index. A nil
// *IndexStats records nothing.
type IndexStats struct {
	size          metric.Int64UpDownCounter
	insertCount   metric.Int64Counter
	replaceCount  metric.Int64Counter
	removeCount   metric.Int64Counter
	queryCount    metric.Int64Counter
	queryResults  metric.Int64Histogram
	violationsCnt metric.Int64Counter
}

func NewIndexStats(name string) *IndexStats {
	meterName := fmt.Sprintf("%s/%s", IndexStatsName, name)
	meter := otel.Meter(meterName)
	return &IndexStats{
		size: lo.Must[metric.Int64UpDownCounter](meter.
			Int64UpDownCounter(
				"xindex.size",
				metric.WithDescription("The number of entries in the index."),
			),
		),
		insertCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"xindex.insert.count",
				metric.WithDescription("The number of entries inserted into the index."),
			),
		),
		replaceCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"xindex.replace.count",
				metric.WithDescription("The number of values replaced in place."),
			),
		),
		removeCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"xindex.remove.count",
				metric.WithDescription("The number of entries removed from the index."),
			),
		),
		queryCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"xindex.query.count",
				metric.WithDescription("The number of queries issued against the index."),
			),
		),
		queryResults: lo.Must[metric.Int64Histogram](meter.
			Int64Histogram(
				"xindex.query.results",
				metric.WithDescription("The number of entries a materialized query returned."),
			),
		),
		violationsCnt: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"xindex.violation.count",
				metric.WithDescription("The number of failed invariant validations."),
			),
		),
	}
}

func (stats *IndexStats) RecordInsert(replaced bool) {
	if stats == nil {
		return
	}
	if replaced {
		stats.replaceCount.Add(context.Background(), 1)
		return
	}
	stats.insertCount.Add(context.Background(), 1)
	stats.size.Add(context.Background(), 1)
}

func (stats *IndexStats) RecordRemove() {
	if stats == nil {
		return
	}
	stats.removeCount.Add(context.Background(), 1)
	stats.size.Add(context.Background(), -1)
}

func (stats *IndexStats) RecordClear(released int64) {
	if stats == nil || released == 0 {
		return
	}
	stats.size.Add(context.Background(), -released)
}

func (stats *IndexStats) RecordQuery(kind string, results int) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("xindex.query.kind", kind),
	)
	stats.queryCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
	if results >= 0 {
		stats.queryResults.Record(context.Background(), int64(results), metric.WithAttributeSet(as))
	}
}

func (stats *IndexStats) RecordViolation() {
	if stats == nil {
		return
	}
	stats.violationsCnt.Add(context.Background(), 1)
}
