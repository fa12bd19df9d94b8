package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/benz9527/xindex/lib/interval"
)

const (
	ModeOverlap   = "overlap"
	ModeStab      = "stab"
	ModeSpanning  = "spanning"
	ModeContained = "contained"
	ModeLeft      = "left"
	ModeRight     = "right"
	ModeNearest   = "nearest"
)

var queryModes = []string{
	ModeOverlap,
	ModeStab,
	ModeSpanning,
	ModeContained,
	ModeLeft,
	ModeRight,
	ModeNearest,
}

var ErrUnknownMode = errors.New("unknown query mode")

// Query answers one query mode over [start, stop]. Stabbing only uses start.
func Query(idx *interval.Tree[interval.Range, string], mode string, start, stop int64) ([]entry, error) {
	switch mode {
	case ModeOverlap:
		return idx.Overlapping(start, stop), nil
	case ModeStab:
		return idx.Stabbing(start), nil
	case ModeSpanning:
		return idx.Spanning(start, stop), nil
	case ModeContained:
		return idx.ContainedBy(start, stop), nil
	case ModeLeft:
		return idx.LeftNeighbors(start, stop), nil
	case ModeRight:
		return idx.RightNeighbors(start, stop), nil
	case ModeNearest:
		return idx.Nearest(start, stop), nil
	default:
	}
	return nil, errors.Wrapf(ErrUnknownMode, "%q, expected one of %s", mode, strings.Join(queryModes, ", "))
}

func newQueryCommand(a *app) *cobra.Command {
	var (
		mode        string
		start, stop int64
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Find the intervals related to [start, stop]",
		Long: `Find the intervals related to the closed query range [start, stop].

Modes:
  overlap    intervals sharing at least one position
  stab       intervals containing start
  spanning   intervals containing the whole range
  contained  intervals lying inside the range
  left       intervals ending closest before start
  right      intervals starting closest after stop
  nearest    overlapping intervals, else the left and right neighbors`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(queryModes, mode) {
				return errors.Wrapf(ErrUnknownMode, "%q", mode)
			}
			if !cmd.Flags().Changed("stop") {
				stop = start
			}
			if stop < start {
				return errors.Errorf("--stop %d is before --start %d", stop, start)
			}
			return a.run(cmd, func(s *session) error {
				entries, err := Query(s.idx, mode, start, stop)
				if err != nil {
					return err
				}
				title := fmt.Sprintf("%s %s", mode, interval.NewRange(start, stop))
				if mode == ModeStab {
					title = fmt.Sprintf("%s %d", mode, start)
				}
				s.out.entries(title, entries)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", ModeOverlap, "Query mode: "+strings.Join(queryModes, ", "))
	cmd.Flags().Int64Var(&start, "start", 0, "Query range start")
	cmd.Flags().Int64Var(&stop, "stop", 0, "Query range stop, inclusive (default: start)")
	return cmd
}
