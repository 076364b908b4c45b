// Package dashboard provides the back-office view over logged visits:
// filtering, summary counts, and spreadsheet and map exports.
package dashboard

import (
	"strings"

	"github.com/evcraddock/field-visits/internal/visit"
)

// Filter narrows the dashboard visit list. Zero fields match everything.
type Filter struct {
	Search      string
	Temperature string
	From        string
	To          string
	UserID      string
}

// Matches reports whether v passes every active condition of the filter.
func (f Filter) Matches(v *visit.Visit) bool {
	if v == nil {
		return false
	}
	if f.UserID != "" && v.UserID != f.UserID {
		return false
	}
	if t := f.Temperature; t != "" && t != "all" && v.Temperature != visit.ParseTemperature(t) {
		return false
	}

	day := visit.DateKey(v.DateISO)
	if f.From != "" && day < f.From {
		return false
	}
	if f.To != "" && day > f.To {
		return false
	}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hay := strings.ToLower(v.CustomerName + " " + v.ResultNote + " " + v.CustomerID)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// Apply returns the visits that match, preserving order.
func (f Filter) Apply(visits []*visit.Visit) []*visit.Visit {
	out := make([]*visit.Visit, 0, len(visits))
	for _, v := range visits {
		if f.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}
