// Package customer provides the customer directory keyed by customer code.
package customer

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// BusinessType classifies a customer's business.
type BusinessType string

const (
	Retail      BusinessType = "retail"
	UMKM        BusinessType = "umkm"
	Restaurant  BusinessType = "restaurant"
	Supermarket BusinessType = "supermarket"
)

// ParseBusinessType maps stored values, including the older "restorant"
// spelling, onto a business type. Unknown values are returned unchanged.
func ParseBusinessType(s string) BusinessType {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "restorant" {
		return Restaurant
	}
	switch b := BusinessType(v); b {
	case Retail, UMKM, Restaurant, Supermarket:
		return b
	}
	return BusinessType(s)
}

// IsValid checks if a business type is recognized. Empty is allowed.
func (b BusinessType) IsValid() bool {
	switch b {
	case "", Retail, UMKM, Restaurant, Supermarket:
		return true
	}
	return false
}

// UnmarshalJSON accepts legacy spellings.
func (b *BusinessType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*b = ParseBusinessType(s)
	return nil
}

var (
	// ErrInvalid is returned for customers that fail validation.
	ErrInvalid = errors.New("invalid customer")
	// ErrDuplicateCode is returned when adding a code that is already used.
	ErrDuplicateCode = errors.New("customer code already in use")
	// ErrNotFound is returned when a customer does not exist.
	ErrNotFound = errors.New("customer not found")
)

// Customer is a shop or business visited by field staff.
type Customer struct {
	Code         string       `json:"code"`
	UserID       string       `json:"userId"`
	Name         string       `json:"name"`
	Phone        string       `json:"phone,omitempty"`
	Address      string       `json:"address,omitempty"`
	BusinessType BusinessType `json:"businessType,omitempty"`
	City         string       `json:"city,omitempty"`
	District     string       `json:"district,omitempty"`
	OwnerNIK     string       `json:"ownerNik,omitempty"`
	OwnerName    string       `json:"ownerName,omitempty"`
	OwnerAddress string       `json:"ownerAddress,omitempty"`
	AddressLink  string       `json:"addressLink,omitempty"`
	CreatedAt    time.Time    `json:"createdAt,omitzero"`
	UpdatedAt    time.Time    `json:"updatedAt,omitzero"`
}

// Lite is the id/name pair used by customer pickers.
type Lite struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
