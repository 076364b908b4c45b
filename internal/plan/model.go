// Package plan provides scheduled customer visits and the per-day list of
// ad-hoc plans added in the field.
package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Purpose is why a visit is planned.
type Purpose string

const (
	Deal     Purpose = "deal"
	Demo     Purpose = "demo"
	FollowUp Purpose = "followup"
)

// Status tracks what happened to a plan.
type Status string

const (
	Planned Status = "planned"
	Done    Status = "done"
	Skipped Status = "skipped"
)

// ValidStatuses is the set of allowed statuses.
var ValidStatuses = []Status{Planned, Done, Skipped}

// IsValid checks if a purpose is recognized. An empty purpose is allowed.
func (p Purpose) IsValid() bool {
	switch p {
	case "", Deal, Demo, FollowUp:
		return true
	}
	return false
}

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

var (
	// ErrInvalid is returned for plans that fail validation.
	ErrInvalid = errors.New("invalid plan")
	// ErrNotFound is returned when a plan does not exist.
	ErrNotFound = errors.New("plan not found")
)

// Plan is a scheduled intention to visit a customer.
type Plan struct {
	ID           string    `json:"id,omitempty"`
	UserID       string    `json:"userId"`
	CustomerID   string    `json:"customerId"`
	CustomerName string    `json:"customerName"`
	Date         string    `json:"date"`           // YYYY-MM-DD
	Time         string    `json:"time,omitempty"` // HH:mm
	Purpose      Purpose   `json:"purpose,omitempty"`
	Status       Status    `json:"status"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	// AdHoc marks entries added in the field that are not stored plans.
	AdHoc bool `json:"adhoc,omitempty"`
}

// Validate checks required fields and formats.
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalid)
	}
	if strings.TrimSpace(p.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalid)
	}
	if err := ValidateDate(p.Date); err != nil {
		return err
	}
	if p.Time != "" {
		// Times sort as strings, so only zero-padded HH:mm is accepted.
		if _, err := time.Parse("15:04", p.Time); err != nil || len(p.Time) != len("15:04") {
			return fmt.Errorf("%w: invalid time %q (use HH:mm)", ErrInvalid, p.Time)
		}
	}
	if !p.Purpose.IsValid() {
		return fmt.Errorf("%w: invalid purpose %q", ErrInvalid, p.Purpose)
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", ErrInvalid, p.Status)
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD date.
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: invalid date %q (use YYYY-MM-DD)", ErrInvalid, date)
	}
	return nil
}

// maxRangeDays bounds DateRange.
const maxRangeDays = 92

// DateRange returns every date from from to to inclusive.
func DateRange(from, to string) ([]string, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid from date %q", ErrInvalid, from)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid to date %q", ErrInvalid, to)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: to date %s is before from date %s", ErrInvalid, to, from)
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if len(dates) == maxRangeDays {
			return nil, fmt.Errorf("%w: range exceeds %d days", ErrInvalid, maxRangeDays)
		}
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}
