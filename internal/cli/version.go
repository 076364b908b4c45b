package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type versionInfo struct {
	Version string `json:"version"`
	Go      string `json:"go"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fv version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{Version: Version, Go: runtime.Version()}
			out := cmd.OutOrStdout()
			if isJSON() {
				return json.NewEncoder(out).Encode(info)
			}
			_, err := fmt.Fprintf(out, "fv %s (%s)\n", info.Version, info.Go)
			return err
		},
	}
}
