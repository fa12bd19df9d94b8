package commands

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/benz9527/xindex/lib/tree"
)

func newRankCommand(a *app) *cobra.Command {
	var key int64
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank an interval start among all starts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(s *session) error {
				starts := s.starts()
				rows := [][2]string{
					{"starts", humanize.Comma(starts.Len())},
					{"less", humanize.Comma(starts.CountLess(key))},
					{"less or equal", humanize.Comma(starts.CountLessOrEqual(key))},
				}
				minRank, err := starts.MinRank(key)
				switch {
				case err == nil:
					maxRank, _ := starts.MaxRank(key)
					meanRank, _ := starts.MeanRank(key)
					rows = append(rows,
						[2]string{"min rank", formatInt(minRank)},
						[2]string{"max rank", formatInt(maxRank)},
						[2]string{"mean rank", strconv.FormatFloat(meanRank, 'f', -1, 64)},
					)
				case errors.Is(err, tree.ErrElementNotFound):
					rows = append(rows, [2]string{"min rank", "-"})
				default:
					return err
				}
				s.out.pairs(fmt.Sprintf("rank %d", key), rows)
				return nil
			})
		},
	}
	cmd.Flags().Int64VarP(&key, "key", "k", 0, "Start position to rank")
	return cmd
}

func newSelectCommand(a *app) *cobra.Command {
	var (
		rank     int64
		quantile float64
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the interval start of a 1-indexed rank or a quantile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			byQuantile := cmd.Flags().Changed("quantile")
			if byQuantile == cmd.Flags().Changed("rank") {
				return errors.New("exactly one of --rank and --quantile is required")
			}
			return a.run(cmd, func(s *session) error {
				starts := s.starts()
				var (
					key   int64
					label string
					err   error
					title = fmt.Sprintf("select rank %d", rank)
				)
				if byQuantile {
					title = fmt.Sprintf("select quantile %s", strconv.FormatFloat(quantile, 'f', -1, 64))
					key, label, err = starts.Quantile(quantile)
				} else {
					key, label, err = starts.Select(rank)
				}
				if err != nil {
					return err
				}
				s.out.pairs(title, [][2]string{
					{"start", formatInt(key)},
					{"label", label},
				})
				return nil
			})
		},
	}
	cmd.Flags().Int64VarP(&rank, "rank", "r", 1, "1-indexed rank")
	cmd.Flags().Float64VarP(&quantile, "quantile", "q", 0.5, "Nearest-rank quantile in [0, 1]")
	return cmd
}
