package commands

import (
	"strconv"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benz9527/xindex/lib/interval"
	"github.com/benz9527/xindex/lib/tree"
	"github.com/benz9527/xindex/observability"
)

type indexNode = tree.RBNode[interval.Range, string, int64]

// height is the number of nodes on the longest root to leaf path.
func height(root indexNode) int {
	if root == nil {
		return 0
	}
	type frame struct {
		node  indexNode
		depth int
	}
	best := 0
	stack := []frame{{node: root, depth: 1}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		best = max(best, top.depth)
		if l := top.node.Left(); l != nil {
			stack = append(stack, frame{node: l, depth: top.depth + 1})
		}
		if r := top.node.Right(); r != nil {
			stack = append(stack, frame{node: r, depth: top.depth + 1})
		}
	}
	return best
}

// addSaturating adds n >= 0 to total, stopping at interval.PosInf.
func addSaturating(total *atomic.Int64, n int64) {
	for {
		cur := total.Load()
		next := interval.PosInf
		if cur < interval.PosInf-n {
			next = cur + n
		}
		if total.CompareAndSwap(cur, next) {
			return
		}
	}
}

// CheckReport summarizes an index and the process holding it.
type CheckReport struct {
	Entries  int64
	Height   int
	Span     interval.Range
	MaxStop  int64
	// Covered sums the interval lengths, saturating at interval.PosInf.
	Covered  int64
	Workers  int
	Process  observability.ProcessProfile
	Violated error
}

// check validates the index invariants and recounts the entries with a
// parallel drain.
func (s *session) check() (CheckReport, error) {
	idx, workers := s.idx, s.cfg.Index.Workers
	report := CheckReport{
		Entries:  idx.Len(),
		Height:   height(idx.Index().Root()),
		Workers:  workers,
		Violated: idx.Validate(),
	}
	report.Span, _ = idx.Span()
	report.MaxStop, _ = idx.MaxStop()

	var counted, covered atomic.Int64
	err := tree.ParallelForEach(idx.Index().Scan(nil), workers, func(node indexNode) error {
		counted.Add(1)
		addSaturating(&covered, node.Key().Len())
		return nil
	}, tree.WithParallelLogger(s.logger))
	if err != nil {
		return report, errors.Wrap(err, "parallel drain")
	}
	if counted.Load() != report.Entries {
		return report, errors.Wrapf(tree.ErrCountViolation, "drained %d of %d entries", counted.Load(), report.Entries)
	}
	report.Covered = covered.Load()

	if report.Process, err = observability.SnapshotProcess(); err != nil {
		s.logger.Warn("[xindex] process snapshot failed", zap.Error(err))
	}
	return report, nil
}

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the index invariants and print its shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(s *session) error {
				report, err := s.check()
				if err != nil {
					return err
				}
				invariants := "ok"
				if report.Violated != nil {
					invariants = report.Violated.Error()
				}
				rows := [][2]string{
					{"invariants", invariants},
					{"entries", humanize.Comma(report.Entries)},
					{"height", strconv.Itoa(report.Height)},
				}
				if report.Entries > 0 {
					rows = append(rows,
						[2]string{"span", report.Span.String()},
						[2]string{"max stop", formatInt(report.MaxStop)},
						[2]string{"covered", humanize.Comma(report.Covered)},
					)
				}
				rows = append(rows,
					[2]string{"rss", humanize.Bytes(report.Process.RSS)},
					[2]string{"heap", humanize.Bytes(report.Process.HeapAlloc)},
					[2]string{"goroutines", strconv.Itoa(report.Process.Goroutines)},
					[2]string{"threads", strconv.Itoa(int(report.Process.Threads))},
				)
				s.out.pairs("check", rows)
				return report.Violated
			})
		},
	}
}
