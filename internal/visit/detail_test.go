package visit

import (
	"encoding/json"
	"testing"
)

func TestProductDetailUnmarshal(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantSchema Schema
		want       Detail
	}{
		{
			name:       "legacy without marker",
			input:      `{"brand":"Bimoli","capacityPerMonth":"20 dus","potentialBrand":"Sania","potentialQtyPerMonth":"5"}`,
			wantSchema: SchemaLegacy,
			want:       Detail{Brand: "Bimoli", Quantity: "20 dus", PotentialBrand: "Sania", PotentialQty: "5"},
		},
		{
			name:       "legacy with numeric quantities",
			input:      `{"brand":"Bimoli","capacityPerMonth":20,"potentialQtyPerMonth":7.5}`,
			wantSchema: SchemaLegacy,
			want:       Detail{Brand: "Bimoli", Quantity: "20", PotentialQty: "7.5"},
		},
		{
			name:       "current without marker",
			input:      `{"brandSaatIni":"Filma","kemasanQty":"2L x 12","potensiSwitch":"sangat"}`,
			wantSchema: SchemaCurrent,
			want:       Detail{Brand: "Filma", Quantity: "2L x 12", SwitchPotential: SwitchHigh},
		},
		{
			name:       "current with marker",
			input:      `{"schema":"v2","brandSaatIni":"Filma","potensiSwitch":"tidakMungkin"}`,
			wantSchema: SchemaCurrent,
			want:       Detail{Brand: "Filma", SwitchPotential: SwitchUnlikely},
		},
		{
			name:       "marker overrides keys",
			input:      `{"schema":"v1","brand":"Sunco"}`,
			wantSchema: SchemaLegacy,
			want:       Detail{Brand: "Sunco"},
		},
		{
			name:       "empty object",
			input:      `{}`,
			wantSchema: SchemaLegacy,
			want:       Detail{},
		},
		{
			name:       "null fields",
			input:      `{"brand":null,"potensiSwitch":"ada"}`,
			wantSchema: SchemaCurrent,
			want:       Detail{SwitchPotential: SwitchPossible},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p ProductDetail
			if err := json.Unmarshal([]byte(tt.input), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if p.Schema != tt.wantSchema {
				t.Errorf("schema = %q, want %q", p.Schema, tt.wantSchema)
			}
			if got := p.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProductDetailUnmarshalInvalid(t *testing.T) {
	var p ProductDetail
	if err := json.Unmarshal([]byte(`{"brand":true}`), &p); err == nil {
		t.Error("expected error for boolean brand")
	}
}

func TestProductDetailMarshalCarriesSchema(t *testing.T) {
	p := NewCurrentDetail(CurrentDetail{CurrentBrand: "Filma", PackageQty: "1L", Switch: SwitchPossible})

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["schema"] != "v2" {
		t.Errorf("schema = %q, want v2", raw["schema"])
	}
	if raw["brandSaatIni"] != "Filma" {
		t.Errorf("brandSaatIni = %q, want Filma", raw["brandSaatIni"])
	}
	if _, ok := raw["brand"]; ok {
		t.Error("current detail should not carry legacy brand field")
	}
}

func TestProductDetailIsEmpty(t *testing.T) {
	if !(ProductDetail{}).IsEmpty() {
		t.Error("zero detail should be empty")
	}
	if NewLegacyDetail(LegacyDetail{Brand: "x"}).IsEmpty() {
		t.Error("detail with brand should not be empty")
	}
}

func TestParseSwitchPotential(t *testing.T) {
	tests := []struct {
		in   string
		want SwitchPotential
	}{
		{"sangat", SwitchHigh},
		{"ada", SwitchPossible},
		{"tidakMungkin", SwitchUnlikely},
		{"high", SwitchHigh},
		{"Possible", SwitchPossible},
		{"maybe", "maybe"},
	}

	for _, tt := range tests {
		if got := ParseSwitchPotential(tt.in); got != tt.want {
			t.Errorf("ParseSwitchPotential(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
