// Package visit provides the customer visit domain model, visit record
// reconciliation, and data access for the flat and per-user visit stores.
package visit

import (
	"encoding/json"
	"strings"
	"time"
)

// Temperature is the sales-readiness rating of a visit.
type Temperature string

const (
	Cold    Temperature = "cold"
	Cool    Temperature = "cool"
	Warm    Temperature = "warm"
	Hot     Temperature = "hot"
	Blazing Temperature = "blazing"
)

// ValidTemperatures is the set of allowed temperatures, coldest first.
var ValidTemperatures = []Temperature{Cold, Cool, Warm, Hot, Blazing}

// temperatureAliases maps values written by older mobile clients.
var temperatureAliases = map[string]Temperature{
	"dingin":  Cold,
	"hangat":  Warm,
	"panas":   Hot,
	"menyala": Blazing,
}

// ParseTemperature maps a stored or submitted value onto a canonical
// temperature. Unknown values are returned unchanged.
func ParseTemperature(s string) Temperature {
	v := strings.ToLower(strings.TrimSpace(s))
	if t, ok := temperatureAliases[v]; ok {
		return t
	}
	t := Temperature(v)
	if t.IsValid() {
		return t
	}
	return Temperature(s)
}

// IsValid checks if a temperature is recognized.
func (t Temperature) IsValid() bool {
	for _, v := range ValidTemperatures {
		if t == v {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the temperature.
func (t Temperature) Label() string {
	switch t {
	case Cold:
		return "Cold"
	case Cool:
		return "Cool"
	case Warm:
		return "Warm"
	case Hot:
		return "Hot"
	case Blazing:
		return "Blazing"
	default:
		return string(t)
	}
}

// UnmarshalJSON accepts legacy aliases.
func (t *Temperature) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTemperature(s)
	return nil
}

// Geo is a captured GPS position.
type Geo struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// OfferedProduct is one product offered during a visit.
type OfferedProduct struct {
	Name string   `json:"name" bson:"name"`
	Qty  *float64 `json:"qty,omitempty" bson:"qty,omitempty"`
}

// Visit is one logged customer visit.
type Visit struct {
	ID              string                   `json:"id,omitempty"`
	UserID          string                   `json:"userId"`
	CustomerID      string                   `json:"customerId"`
	CustomerName    string                   `json:"customerName"`
	PlanID          string                   `json:"planId,omitempty"`
	DateISO         string                   `json:"dateISO"`
	Temperature     Temperature              `json:"temperature,omitempty"`
	Offered         []OfferedProduct         `json:"offered,omitempty"`
	OfferedDetailed map[string]ProductDetail `json:"offeredDetailed,omitempty"`
	ResultNote      string                   `json:"resultNote,omitempty"`
	Geo             *Geo                     `json:"geo,omitempty"`
	LocationLink    string                   `json:"locationLink,omitempty"`
	PhotoURL        string                   `json:"photoUrl,omitempty"`
	PhotoPath       string                   `json:"photoPath,omitempty"`
	CreatedAt       time.Time                `json:"createdAt,omitzero"`
}

// DateKey returns the calendar date portion of the visit's dateISO,
// taken verbatim without timezone normalization.
func (v *Visit) DateKey() string {
	return DateKey(v.DateISO)
}

// DateKey returns the first 10 characters of an ISO-8601 timestamp, or the
// whole string when it is shorter.
func DateKey(dateISO string) string {
	if len(dateISO) < 10 {
		return dateISO
	}
	return dateISO[:10]
}

// LocationLink builds a Google Maps link for a position.
func LocationLink(g Geo) string {
	return "https://maps.google.com/?q=" +
		formatCoord(g.Lat) + "," + formatCoord(g.Lng)
}
