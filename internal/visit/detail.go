package visit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Schema identifies the shape of a product detail record.
type Schema string

const (
	// SchemaLegacy is brand / capacity / potential brand / potential qty.
	SchemaLegacy Schema = "v1"
	// SchemaCurrent is current brand / package quantity / switch potential.
	SchemaCurrent Schema = "v2"
)

// SwitchPotential is how likely a customer is to switch to our product.
type SwitchPotential string

const (
	SwitchHigh     SwitchPotential = "high"
	SwitchPossible SwitchPotential = "possible"
	SwitchUnlikely SwitchPotential = "unlikely"
)

var switchAliases = map[string]SwitchPotential{
	"sangat":       SwitchHigh,
	"ada":          SwitchPossible,
	"tidakmungkin": SwitchUnlikely,
}

// ParseSwitchPotential maps a stored value onto a canonical switch
// potential. Unknown values are returned unchanged.
func ParseSwitchPotential(s string) SwitchPotential {
	v := strings.ToLower(strings.TrimSpace(s))
	if p, ok := switchAliases[v]; ok {
		return p
	}
	switch p := SwitchPotential(v); p {
	case SwitchHigh, SwitchPossible, SwitchUnlikely:
		return p
	}
	return SwitchPotential(s)
}

// Label returns a human-readable label.
func (p SwitchPotential) Label() string {
	switch p {
	case SwitchHigh:
		return "High switch potential"
	case SwitchPossible:
		return "Possible switch"
	case SwitchUnlikely:
		return "Unlikely to switch"
	default:
		return string(p)
	}
}

// LegacyDetail is the product detail shape written by older clients.
type LegacyDetail struct {
	Brand                string
	CapacityPerMonth     string
	PotentialBrand       string
	PotentialQtyPerMonth string
}

// CurrentDetail is the product detail shape written by current clients.
type CurrentDetail struct {
	CurrentBrand string
	PackageQty   string
	Switch       SwitchPotential
}

// ProductDetail holds exactly one of the detail variants, selected by Schema.
type ProductDetail struct {
	Schema  Schema
	Legacy  *LegacyDetail
	Current *CurrentDetail
}

// Detail is the canonical form of a product detail used for display.
type Detail struct {
	Brand           string          `json:"brand,omitempty"`
	Quantity        string          `json:"quantity,omitempty"`
	SwitchPotential SwitchPotential `json:"switchPotential,omitempty"`
	PotentialBrand  string          `json:"potentialBrand,omitempty"`
	PotentialQty    string          `json:"potentialQty,omitempty"`
}

// NewLegacyDetail wraps a legacy detail.
func NewLegacyDetail(d LegacyDetail) ProductDetail {
	return ProductDetail{Schema: SchemaLegacy, Legacy: &d}
}

// NewCurrentDetail wraps a current detail.
func NewCurrentDetail(d CurrentDetail) ProductDetail {
	return ProductDetail{Schema: SchemaCurrent, Current: &d}
}

// Normalize converts either variant into the canonical detail.
func (p ProductDetail) Normalize() Detail {
	switch {
	case p.Schema == SchemaCurrent && p.Current != nil:
		return Detail{
			Brand:           p.Current.CurrentBrand,
			Quantity:        p.Current.PackageQty,
			SwitchPotential: p.Current.Switch,
		}
	case p.Legacy != nil:
		return Detail{
			Brand:          p.Legacy.Brand,
			Quantity:       p.Legacy.CapacityPerMonth,
			PotentialBrand: p.Legacy.PotentialBrand,
			PotentialQty:   p.Legacy.PotentialQtyPerMonth,
		}
	default:
		return Detail{}
	}
}

// IsEmpty reports whether the detail carries no values.
func (p ProductDetail) IsEmpty() bool {
	return p.Normalize() == (Detail{})
}

type wireDetail struct {
	Schema Schema `json:"schema,omitempty"`

	Brand                flexString `json:"brand,omitempty"`
	CapacityPerMonth     flexString `json:"capacityPerMonth,omitempty"`
	PotentialBrand       flexString `json:"potentialBrand,omitempty"`
	PotentialQtyPerMonth flexString `json:"potentialQtyPerMonth,omitempty"`

	BrandSaatIni  flexString `json:"brandSaatIni,omitempty"`
	KemasanQty    flexString `json:"kemasanQty,omitempty"`
	PotensiSwitch flexString `json:"potensiSwitch,omitempty"`
}

// MarshalJSON writes the variant's wire fields plus a schema marker.
func (p ProductDetail) MarshalJSON() ([]byte, error) {
	var w wireDetail
	switch {
	case p.Schema == SchemaCurrent && p.Current != nil:
		w.Schema = SchemaCurrent
		w.BrandSaatIni = flexString(p.Current.CurrentBrand)
		w.KemasanQty = flexString(p.Current.PackageQty)
		w.PotensiSwitch = flexString(p.Current.Switch)
	case p.Legacy != nil:
		w.Schema = SchemaLegacy
		w.Brand = flexString(p.Legacy.Brand)
		w.CapacityPerMonth = flexString(p.Legacy.CapacityPerMonth)
		w.PotentialBrand = flexString(p.Legacy.PotentialBrand)
		w.PotentialQtyPerMonth = flexString(p.Legacy.PotentialQtyPerMonth)
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads either variant. Documents without a schema marker are
// classified by which fields they carry.
func (p *ProductDetail) UnmarshalJSON(data []byte) error {
	var w wireDetail
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decoding product detail: %w", err)
	}

	schema := w.Schema
	if schema != SchemaLegacy && schema != SchemaCurrent {
		schema = SchemaLegacy
		if w.BrandSaatIni != "" || w.KemasanQty != "" || w.PotensiSwitch != "" {
			schema = SchemaCurrent
		}
	}

	if schema == SchemaCurrent {
		*p = NewCurrentDetail(CurrentDetail{
			CurrentBrand: string(w.BrandSaatIni),
			PackageQty:   string(w.KemasanQty),
			Switch:       ParseSwitchPotential(string(w.PotensiSwitch)),
		})
		return nil
	}

	*p = NewLegacyDetail(LegacyDetail{
		Brand:                string(w.Brand),
		CapacityPerMonth:     string(w.CapacityPerMonth),
		PotentialBrand:       string(w.PotentialBrand),
		PotentialQtyPerMonth: string(w.PotentialQtyPerMonth),
	})
	return nil
}

// flexString decodes from either a JSON string or a JSON number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
