package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/field-visits/internal/client"
)

// addFilterFlags registers the dashboard filter flags shared by visits and
// export.
func addFilterFlags(cmd *cobra.Command, f *client.VisitFilter) {
	flags := cmd.Flags()
	flags.StringVarP(&f.Search, "search", "q", "", "search customer name, note and customer ID")
	flags.StringVarP(&f.Temperature, "temperature", "t", "", "only this temperature (or all)")
	flags.StringVar(&f.From, "from", "", "earliest date, YYYY-MM-DD")
	flags.StringVar(&f.To, "to", "", "latest date, YYYY-MM-DD")
	flags.StringVar(&f.UserID, "for", "", "only visits by this user")
	flags.IntVar(&f.Limit, "limit", 0, "maximum visits to load (default 200)")
}

func newVisitsCmd() *cobra.Command {
	var f client.VisitFilter

	cmd := &cobra.Command{
		Use:   "visits",
		Short: "List visits across all users",
		Long: `List recent visits across all users, newest first, with summary counts.

Examples:
  fv visits --temperature hot --from 2024-01-01
  fv visits -q "toko" --for SALES-07`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVisits(f)
		},
	}
	addFilterFlags(cmd, &f)

	return cmd
}

func runVisits(f client.VisitFilter) error {
	list, err := newAPIClient().ListVisits(f)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(list)
	}
	if err := printVisitTable(list.Visits); err != nil {
		return err
	}
	if len(list.Visits) > 0 {
		printStats(list.Stats)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	var (
		f      client.VisitFilter
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <csv|xlsx|geojson>",
		Short: "Export visits",
		Long: `Export the filtered visit list as CSV, an Excel workbook, or a GeoJSON
point layer of visits with a location.

Examples:
  fv export csv -o visits.csv
  fv export xlsx --from 2024-01-01 -o january.xlsx
  fv export geojson --temperature hot > hot.geojson`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"csv", "xlsx", "geojson"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], f, output)
		},
	}
	addFilterFlags(cmd, &f)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func runExport(format string, f client.VisitFilter, output string) (err error) {
	switch format {
	case "csv", "xlsx", "geojson":
	default:
		return fmt.Errorf("unknown export format %q (use csv, xlsx or geojson)", format)
	}
	if format == "xlsx" && output == "" {
		return fmt.Errorf("xlsx export needs --output")
	}

	var w io.Writer = os.Stdout
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing output file: %w", cerr)
			}
		}()
		w = file
	}

	if err := newAPIClient().ExportVisits(format, f, w); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", output)
	}
	return nil
}
