package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCustomersCmd() *cobra.Command {
	var (
		limit int
		lite  bool
	)

	cmd := &cobra.Command{
		Use:   "customers",
		Short: "List your customers",
		Long:  "List the acting user's customers, newest first. --lite prints code and name only, sorted by name.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCustomers(limit, lite)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum customers (default 100)")
	cmd.Flags().BoolVar(&lite, "lite", false, "code and name only")

	return cmd
}

func runCustomers(limit int, lite bool) error {
	c := newAPIClient()

	if lite {
		names, err := c.ListCustomersLite()
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(names)
		}
		for _, n := range names {
			fmt.Printf("%s\t%s\n", n.ID, n.Name)
		}
		return nil
	}

	customers, err := c.ListCustomers(limit)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(customers)
	}
	return printCustomerTable(customers)
}
