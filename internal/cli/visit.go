package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/field-visits/internal/visit"
)

type visitOptions struct {
	customerID  string
	temperature string
	note        string
	date        string
	planID      string
	photoPath   string
	photoURL    string
	offered     []string
	lat, lng    float64
	hasGeo      bool
}

func newVisitCmd() *cobra.Command {
	var opts visitOptions

	cmd := &cobra.Command{
		Use:   "visit <customer-name>",
		Short: "Log a customer visit",
		Long: `Log a visit to a customer.

Temperatures: cold, cool, warm, hot, blazing

Examples:
  fv visit "Toko Maju" --temperature hot --note "wants a demo"
  fv visit "Toko Maju" -t warm --customer-id C-001 --offer "Minyak=12" --lat -6.2 --lng 106.8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.hasGeo = cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng")
			return runVisit(args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.customerID, "customer-id", "", "customer code")
	f.StringVarP(&opts.temperature, "temperature", "t", "", "sales temperature (required)")
	f.StringVarP(&opts.note, "note", "n", "", "result note")
	f.StringVar(&opts.date, "date", "", "visit time, RFC 3339 (default now)")
	f.StringVar(&opts.planID, "plan", "", "plan ID this visit fulfils")
	f.StringVar(&opts.photoPath, "photo-path", "", "uploaded photo path/public ID")
	f.StringVar(&opts.photoURL, "photo-url", "", "uploaded photo URL")
	f.StringArrayVar(&opts.offered, "offer", nil, "offered product as NAME or NAME=QTY (repeatable)")
	f.Float64Var(&opts.lat, "lat", 0, "latitude")
	f.Float64Var(&opts.lng, "lng", 0, "longitude")
	_ = cmd.MarkFlagRequired("temperature")

	return cmd
}

func runVisit(customerName string, opts visitOptions) error {
	offered, err := parseOffered(opts.offered)
	if err != nil {
		return err
	}

	v := &visit.Visit{
		UserID:       getUser(),
		CustomerID:   opts.customerID,
		CustomerName: customerName,
		PlanID:       opts.planID,
		DateISO:      opts.date,
		Temperature:  visit.ParseTemperature(opts.temperature),
		Offered:      offered,
		ResultNote:   opts.note,
		PhotoPath:    opts.photoPath,
		PhotoURL:     opts.photoURL,
	}
	if opts.hasGeo {
		v.Geo = &visit.Geo{Lat: opts.lat, Lng: opts.lng}
	}

	created, err := newAPIClient().AddVisit(v)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(created)
	}
	fmt.Println("Visit logged.")
	printVisitSummary(created)
	return nil
}

// parseOffered turns NAME or NAME=QTY flags into offered products.
func parseOffered(specs []string) ([]visit.OfferedProduct, error) {
	var out []visit.OfferedProduct
	for _, s := range specs {
		name, qtyStr, hasQty := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid --offer %q: product name is required", s)
		}
		p := visit.OfferedProduct{Name: name}
		if hasQty {
			var qty float64
			if _, err := fmt.Sscanf(strings.TrimSpace(qtyStr), "%g", &qty); err != nil {
				return nil, fmt.Errorf("invalid --offer %q: quantity must be a number", s)
			}
			p.Qty = &qty
		}
		out = append(out, p)
	}
	return out, nil
}
