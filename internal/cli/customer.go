package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/field-visits/internal/customer"
)

func newCustomerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage customers",
	}
	cmd.AddCommand(newCustomerAddCmd(), newCustomerShowCmd())
	return cmd
}

func newCustomerAddCmd() *cobra.Command {
	var (
		c            customer.Customer
		businessType string
		mode         string
	)

	cmd := &cobra.Command{
		Use:   "add <code> <name>",
		Short: "Add or update a customer",
		Long: `Add a customer. By default an existing customer with the same code is
updated with the non-empty fields given. --mode strict fails on an existing
code; --mode minimal stores only code and name.

Business types: retail, umkm, restaurant, supermarket

Examples:
  fv customer add C-001 "Toko Maju" --type retail --city Bandung
  fv customer add C-002 "Warung Sari" --mode strict`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Code, c.Name = args[0], args[1]
			c.BusinessType = customer.ParseBusinessType(businessType)
			return runCustomerAdd(&c, mode)
		},
	}

	f := cmd.Flags()
	f.StringVar(&mode, "mode", "", "strict or minimal (default: update existing)")
	f.StringVar(&businessType, "type", "", "business type")
	f.StringVar(&c.Phone, "phone", "", "phone number")
	f.StringVar(&c.Address, "address", "", "street address")
	f.StringVar(&c.AddressLink, "address-link", "", "maps link")
	f.StringVar(&c.City, "city", "", "city")
	f.StringVar(&c.District, "district", "", "district")
	f.StringVar(&c.OwnerName, "owner", "", "owner name")
	f.StringVar(&c.OwnerNIK, "owner-nik", "", "owner national ID")
	f.StringVar(&c.OwnerAddress, "owner-address", "", "owner address")

	return cmd
}

func runCustomerAdd(c *customer.Customer, mode string) error {
	switch mode {
	case "", "strict", "minimal":
	default:
		return fmt.Errorf("invalid mode %q (use strict or minimal)", mode)
	}
	c.UserID = getUser()

	saved, err := newAPIClient().AddCustomer(c, mode)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(saved)
	}
	fmt.Println("Customer saved.")
	printCustomer(saved)
	return nil
}

func newCustomerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Show a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient().GetCustomer(args[0])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(c)
			}
			printCustomer(c)
			return nil
		},
	}
}
