package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/field-visits/internal/plan"
)

type plansOptions struct {
	date  string
	from  string
	to    string
	today bool
}

func newPlansCmd() *cobra.Command {
	var opts plansOptions

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List visit plans",
		Long: `List stored plans for a date (default today) or a date range.
With --today, ad-hoc customers recorded for the day are included.

Examples:
  fv plans
  fv plans --today
  fv plans --from 2024-01-01 --to 2024-01-07`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlans(opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.date, "date", "", "date, YYYY-MM-DD")
	f.StringVar(&opts.from, "from", "", "range start, YYYY-MM-DD")
	f.StringVar(&opts.to, "to", "", "range end, YYYY-MM-DD")
	f.BoolVar(&opts.today, "today", false, "include ad-hoc entries")
	cmd.MarkFlagsMutuallyExclusive("date", "from")
	cmd.MarkFlagsMutuallyExclusive("today", "from")

	return cmd
}

func runPlans(opts plansOptions) error {
	c := newAPIClient()

	var (
		plans []*plan.Plan
		err   error
	)
	switch {
	case opts.today:
		plans, err = c.TodayPlans(opts.date)
	case opts.from != "" || opts.to != "":
		from, to := opts.from, opts.to
		if from == "" {
			from = to
		}
		if to == "" {
			to = from
		}
		plans, err = c.ListPlanRange(from, to)
	default:
		plans, err = c.ListPlans(opts.date)
	}
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(plans)
	}
	return printPlans(plans)
}
