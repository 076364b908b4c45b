package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/field-visits/internal/customer"
	"github.com/evcraddock/field-visits/internal/dashboard"
	"github.com/evcraddock/field-visits/internal/plan"
	"github.com/evcraddock/field-visits/internal/visit"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printVisitSummary prints a single visit in text format.
func printVisitSummary(v *visit.Visit) {
	fmt.Printf("Visit %s\n", v.ID)
	fmt.Printf("  Customer:    %s", v.CustomerName)
	if v.CustomerID != "" {
		fmt.Printf(" (%s)", v.CustomerID)
	}
	fmt.Println()
	fmt.Printf("  Date:        %s\n", formatDateISO(v.DateISO))
	fmt.Printf("  Temperature: %s\n", v.Temperature.Label())
	if v.ResultNote != "" {
		fmt.Printf("  Note:        %s\n", v.ResultNote)
	}
	for _, line := range productLines(v) {
		fmt.Printf("  Product:     %s\n", line)
	}
	if v.LocationLink != "" {
		fmt.Printf("  Map:         %s\n", v.LocationLink)
	}
	if v.PhotoURL != "" {
		fmt.Printf("  Photo:       %s\n", v.PhotoURL)
	} else if v.PhotoPath != "" {
		fmt.Printf("  Photo path:  %s\n", v.PhotoPath)
	}
}

// printDayBuckets prints visit history grouped by date.
func printDayBuckets(days []visit.DayBucket, photoURLs map[string]string) {
	if len(days) == 0 {
		fmt.Println("No visits recorded.")
		return
	}

	for _, day := range days {
		fmt.Printf("%s (%d)\n", day.Date, len(day.Visits))
		for _, v := range day.Visits {
			fmt.Printf("  %s  %-8s %s\n", timeOfDay(v.DateISO), v.Temperature.Label(), v.CustomerName)
			if v.ResultNote != "" {
				fmt.Printf("      %s\n", truncate(oneLine(v.ResultNote), 70))
			}
			link := v.PhotoURL
			if link == "" {
				link = photoURLs[visit.Key(v)]
			}
			if link != "" {
				fmt.Printf("      photo: %s\n", link)
			}
		}
		fmt.Println()
	}
}

// printVisitTable prints a dashboard listing as a formatted table.
func printVisitTable(visits []*visit.Visit) error {
	if len(visits) == 0 {
		fmt.Println("No visits found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "DATE\tUSER\tCUSTOMER\tTEMP\tNOTE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "----\t----\t--------\t----\t----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, v := range visits {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			formatDateISO(v.DateISO), v.UserID, truncate(v.CustomerName, 30),
			v.Temperature.Label(), truncate(oneLine(v.ResultNote), 40)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printStats prints dashboard summary counts.
func printStats(s dashboard.Stats) {
	fmt.Printf("\nTotal: %d visits by %d users (%d with photo, %d with location)\n",
		s.Total, s.Users, s.WithPhoto, s.WithGeo)
	var parts []string
	for i := len(visit.ValidTemperatures) - 1; i >= 0; i-- {
		t := visit.ValidTemperatures[i]
		parts = append(parts, fmt.Sprintf("%s %d", t.Label(), s.ByTemperature[t]))
	}
	fmt.Println(strings.Join(parts, " · "))
}

// printPlans prints plans in text format.
func printPlans(plans []*plan.Plan) error {
	if len(plans) == 0 {
		fmt.Println("No plans.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "DATE\tTIME\tCUSTOMER\tPURPOSE\tSTATUS\tID"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, p := range plans {
		id := p.ID
		if p.AdHoc {
			id = "(ad-hoc)"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Date, dash(p.Time), truncate(p.CustomerName, 30), dash(string(p.Purpose)), p.Status, id); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}

// printCustomer prints a single customer in text format.
func printCustomer(c *customer.Customer) {
	fmt.Printf("Customer %s\n", c.Code)
	fmt.Printf("  Name:     %s\n", c.Name)
	field := func(label, v string) {
		if v != "" {
			fmt.Printf("  %-9s %s\n", label+":", v)
		}
	}
	field("Phone", c.Phone)
	field("Type", string(c.BusinessType))
	field("Address", c.Address)
	field("City", c.City)
	field("District", c.District)
	field("Owner", c.OwnerName)
	field("Map", c.AddressLink)
}

// printCustomerTable prints customers as a formatted table.
func printCustomerTable(customers []*customer.Customer) error {
	if len(customers) == 0 {
		fmt.Println("No customers found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "CODE\tNAME\tTYPE\tCITY\tPHONE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, c := range customers {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.Code, truncate(c.Name, 30), dash(string(c.BusinessType)), dash(c.City), dash(c.Phone)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d customers\n", len(customers))
	return nil
}

// productLines renders each product detail that carries values.
func productLines(v *visit.Visit) []string {
	var lines []string
	for _, name := range sortedKeys(v.OfferedDetailed) {
		d := v.OfferedDetailed[name]
		if d.IsEmpty() {
			continue
		}
		lines = append(lines, name+formatDetail(d.Normalize()))
	}
	return lines
}

// formatDetail renders a normalized product detail after the product name.
func formatDetail(d visit.Detail) string {
	var parts []string
	if d.Brand != "" {
		parts = append(parts, "brand "+d.Brand)
	}
	if d.Quantity != "" {
		parts = append(parts, "qty "+d.Quantity)
	}
	if d.SwitchPotential != "" {
		parts = append(parts, "switch "+d.SwitchPotential.Label())
	}
	if d.PotentialBrand != "" {
		parts = append(parts, "potential "+d.PotentialBrand)
	}
	if d.PotentialQty != "" {
		parts = append(parts, "potential qty "+d.PotentialQty)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// formatDateISO shortens an RFC 3339 timestamp for display.
func formatDateISO(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02 15:04")
}

// timeOfDay returns the HH:MM portion of an ISO timestamp.
func timeOfDay(s string) string {
	if len(s) >= 16 {
		return s[11:16]
	}
	return "--:--"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
