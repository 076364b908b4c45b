package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "login <user-id>",
		Short: "Set the acting user",
		Long: `Store the user ID sent with every request, and optionally the server URL.

Examples:
  fv login SALES-07
  fv login SALES-07 --server https://visits.example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(args[0], server)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL to store")

	return cmd
}

func runLogin(userID, server string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.UserID = userID
	if server != "" {
		cfg.ServerURL = strings.TrimRight(server, "/")
	}
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("✓ Acting as %s\n", userID)
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored user",
		Long:  "Removes the stored user ID from the config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}
}

func runLogout() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.UserID == "" {
		fmt.Println("No user stored.")
		return nil
	}

	cfg.UserID = ""
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println("✓ Stored user removed.")
	return nil
}
