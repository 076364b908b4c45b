package dashboard

import (
	"strings"
	"time"

	"github.com/evcraddock/field-visits/internal/visit"
)

// Columns is the header row shared by the CSV and XLSX exports.
var Columns = []string{
	"id",
	"date",
	"userId",
	"customerId",
	"customerName",
	"temperature",
	"note",
	"photoUrl",
	"maps",
}

// ExportDateLayout formats the date column.
const ExportDateLayout = "2006-01-02 15:04"

// row flattens a visit into export column order.
func row(v *visit.Visit) []string {
	return []string{
		v.ID,
		exportDate(v.DateISO),
		v.UserID,
		v.CustomerID,
		v.CustomerName,
		string(v.Temperature),
		strings.ReplaceAll(v.ResultNote, "\n", " "),
		v.PhotoURL,
		v.LocationLink,
	}
}

// exportDate renders an RFC 3339 timestamp in UTC. Unparseable values are
// passed through as stored.
func exportDate(dateISO string) string {
	t, err := time.Parse(time.RFC3339, dateISO)
	if err != nil {
		return dateISO
	}
	return t.UTC().Format(ExportDateLayout)
}
