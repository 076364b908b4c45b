package visit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultDays is the history window used when none is given.
	DefaultDays = 30
	// RecentLimit caps the records read from either store for history.
	RecentLimit = 1000
	// DefaultListLimit caps dashboard listings.
	DefaultListLimit = 200
)

// ErrInvalid is returned for visits that fail validation.
var ErrInvalid = errors.New("invalid visit")

// Source reads a user's recent visits from one storage location.
type Source interface {
	ListRecent(ctx context.Context, userID string, days int) ([]*Visit, error)
}

// ListOptions filters dashboard listings.
type ListOptions struct {
	UserID string
	Limit  int
}

// Store persists visits to the flat legacy store and mirrors them into the
// per-user store.
type Store interface {
	Add(ctx context.Context, v *Visit) (*Visit, error)
	Legacy() Source
	Mirror() Source
	List(ctx context.Context, opts ListOptions) ([]*Visit, error)
}

// Prepare validates a new visit and fills in the fields assigned at
// creation time. It returns a copy; v is not modified.
func Prepare(v *Visit, now time.Time) (*Visit, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: missing visit", ErrInvalid)
	}
	p := *v
	p.UserID = strings.TrimSpace(p.UserID)
	p.CustomerName = strings.TrimSpace(p.CustomerName)

	if p.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalid)
	}
	if p.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalid)
	}

	p.Temperature = ParseTemperature(string(p.Temperature))
	if !p.Temperature.IsValid() {
		return nil, fmt.Errorf("%w: unknown temperature %q", ErrInvalid, p.Temperature)
	}

	if p.DateISO != "" {
		t, err := time.Parse(time.RFC3339, p.DateISO)
		if err != nil {
			return nil, fmt.Errorf("%w: dateISO must be RFC 3339: %v", ErrInvalid, err)
		}
		// Stored values compare as strings, so they must all be second
		// precision UTC.
		p.DateISO = t.UTC().Format(time.RFC3339)
	} else {
		p.DateISO = now.UTC().Format(time.RFC3339)
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.LocationLink == "" && p.Geo != nil {
		p.LocationLink = LocationLink(*p.Geo)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now.UTC()
	}
	return &p, nil
}

// MirrorDateKey returns the date key a visit is mirrored under.
func MirrorDateKey(dateISO string, now time.Time) string {
	if len(dateISO) >= 10 {
		return dateISO[:10]
	}
	return now.UTC().Format("2006-01-02")
}

// legacySince returns the earliest dateISO kept by a legacy listing.
func legacySince(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, -normalizeDays(days)).Format(time.RFC3339)
}

// mirrorSince returns the earliest date key kept by a mirror listing; the
// window includes today.
func mirrorSince(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, -(normalizeDays(days) - 1)).Format("2006-01-02")
}

func normalizeDays(days int) int {
	if days <= 0 {
		return DefaultDays
	}
	return days
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
