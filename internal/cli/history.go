package cli

import (
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your recent visits grouped by day",
		Long: `Show the acting user's visit history for the last N days, merged from
the per-user and flat visit stores and grouped by date, newest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(days)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 30, "number of days to include")

	return cmd
}

func runHistory(days int) error {
	res, err := newAPIClient().History(days)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(res)
	}
	printDayBuckets(res.Days, res.PhotoURLs)
	return nil
}
