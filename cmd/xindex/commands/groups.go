package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newGroupsCommand(a *app) *cobra.Command {
	var tolerance int64
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Cluster the intervals into overlapping groups",
		Long: `Cluster the intervals in start order. An interval joins the current group
when it overlaps it or starts at most --tolerance positions after the
group's furthest stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if tolerance < 0 {
				return errors.Errorf("--tolerance %d must not be negative", tolerance)
			}
			return a.run(cmd, func(s *session) error {
				s.out.groups(fmt.Sprintf("groups (tolerance %d)", tolerance), s.idx.GroupByOverlap(tolerance))
				return nil
			})
		},
	}
	cmd.Flags().Int64VarP(&tolerance, "tolerance", "t", 0, "Largest gap still joining a group")
	return cmd
}
