package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/field-visits/internal/plan"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage visit plans",
		Long:  "Add visit plans, record unplanned stops, and update plan status.",
	}
	cmd.AddCommand(newPlanAddCmd(), newPlanAdHocCmd(), newPlanStatusCmd())
	return cmd
}

func newPlanAddCmd() *cobra.Command {
	var p plan.Plan
	var purpose string

	cmd := &cobra.Command{
		Use:   "add <customer-name>",
		Short: "Plan a customer visit",
		Long: `Plan a visit to a customer.

Purposes: deal, demo, followup

Examples:
  fv plan add "Toko Maju" --date 2024-01-15 --time 10:00 --purpose demo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.CustomerName = args[0]
			p.Purpose = plan.Purpose(purpose)
			return runPlanAdd(&p)
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.Date, "date", "", "date, YYYY-MM-DD (default today)")
	f.StringVar(&p.Time, "time", "", "time, HH:mm")
	f.StringVar(&purpose, "purpose", "", "deal, demo or followup")
	f.StringVar(&p.CustomerID, "customer-id", "", "customer code")
	f.StringVarP(&p.Note, "note", "n", "", "note")

	return cmd
}

func runPlanAdd(p *plan.Plan) error {
	p.UserID = getUser()
	created, err := newAPIClient().AddPlan(p)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(created)
	}
	fmt.Printf("Planned %s on %s (%s)\n", created.CustomerName, created.Date, created.ID)
	return nil
}

func newPlanAdHocCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "adhoc <customer-name>",
		Short: "Record an unplanned customer for today",
		Long:  "Add a customer to today's list without storing a plan. Ad-hoc entries expire with the session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanAdHoc(date, args[0])
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date, YYYY-MM-DD (default today)")

	return cmd
}

func runPlanAdHoc(date, name string) error {
	names, err := newAPIClient().AddAdHoc(date, name)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(names)
	}
	fmt.Printf("Ad-hoc customers: %d\n", len(names))
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
	return nil
}

func newPlanStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <plan-id> <planned|done|skipped>",
		Short: "Update a plan's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanStatus(args[0], args[1])
		},
	}
}

func runPlanStatus(id, status string) error {
	s := plan.Status(status)
	if !s.IsValid() {
		return fmt.Errorf("invalid status %q (use planned, done or skipped)", status)
	}
	p, err := newAPIClient().UpdatePlanStatus(id, s)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(p)
	}
	fmt.Printf("Plan %s is now %s\n", p.ID, p.Status)
	return nil
}
