// Package cli defines the cobra command tree for field-visits.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/field-visits/internal/client"
)

var (
	flagFormat string
	flagDB     string
	flagUser   string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fv",
		Short:         "Track sales field visits",
		Long:          "A tool for field sales staff: log customer visits, plan the day, manage customers, and review visits on a dashboard via CLI or HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path for serve (default: ~/.config/fv/visits.db)")
	root.PersistentFlags().StringVar(&flagUser, "user", "", "acting user ID (default: FV_USER or config)")

	root.AddCommand(
		newServeCmd(),
		newHistoryCmd(),
		newVisitCmd(),
		newVisitsCmd(),
		newExportCmd(),
		newPlanCmd(),
		newPlansCmd(),
		newCustomerCmd(),
		newCustomersCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the field-visits API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getUser())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// warn prints a non-fatal problem to stderr.
func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
