package commands

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/benz9527/xindex/lib/interval"
)

func newRegionCommand(a *app) *cobra.Command {
	var partsFlag string
	cmd := &cobra.Command{
		Use:   "region",
		Short: "Find the intervals overlapping any part of a region",
		Long: `Find the intervals overlapping any part of a region given as
"s1-e1,s2-e2". Overlapping parts are merged and every interval is
reported once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parts, err := ParseParts(partsFlag)
			if err != nil {
				return err
			}
			return a.run(cmd, func(s *session) error {
				normalized := lo.Map(interval.NormalizeRegion(parts), func(r interval.Range, _ int) string {
					return r.String()
				})
				title := fmt.Sprintf("region %s", strings.Join(normalized, ","))
				s.out.entries(title, s.idx.RestrictedToRegion(parts))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&partsFlag, "parts", "p", "", `Region parts, e.g. "1-10,20-30"`)
	_ = cmd.MarkFlagRequired("parts")
	return cmd
}
