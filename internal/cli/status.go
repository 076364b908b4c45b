package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection status",
		Long:  "Shows the configured server and user and checks that the server is reachable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	serverURL := getServerURL()
	user := getUser()

	fmt.Printf("Server:  %s\n", serverURL)
	if user == "" {
		fmt.Println("User:    server default")
	} else {
		fmt.Printf("User:    %s\n", user)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		fmt.Printf("Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			warn("closing response body: %v", cerr)
		}
	}()

	if resp.StatusCode == http.StatusOK {
		fmt.Println("Status:  ✓ connected")
	} else {
		fmt.Printf("Status:  ✗ unexpected response (%d)\n", resp.StatusCode)
	}
	return nil
}
