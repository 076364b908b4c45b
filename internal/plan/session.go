package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evcraddock/field-visits/internal/cache"
)

// DefaultSessionTTL is how long ad-hoc names are remembered.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore remembers the customer names a user added ad hoc to one day's
// plan list. Entries live in a cache and expire after the TTL.
type SessionStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewSessionStore creates a session store backed by c.
func NewSessionStore(c cache.Cache, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{cache: c, ttl: ttl}
}

func sessionKey(userID, date string) string {
	return "adhoc:" + userID + "|" + date
}

// Names returns the ad-hoc names for a user and date in insertion order.
func (s *SessionStore) Names(ctx context.Context, userID, date string) ([]string, error) {
	data, err := s.cache.Get(ctx, sessionKey(userID, date))
	if errors.Is(err, cache.ErrCacheMiss) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ad-hoc plans: %w", err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decoding ad-hoc plans: %w", err)
	}
	return names, nil
}

// Add records a name for a user and date. Names are trimmed; a name already
// present (ignoring case) is not added again. It returns the updated list.
func (s *SessionStore) Add(ctx context.Context, userID, date, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalid)
	}
	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	data, err := s.cache.Update(ctx, sessionKey(userID, date), s.ttl, func(current []byte) ([]byte, error) {
		names := []string{}
		if current != nil {
			if err := json.Unmarshal(current, &names); err != nil {
				return nil, fmt.Errorf("decoding ad-hoc plans: %w", err)
			}
		}
		if !containsName(names, name) {
			names = append(names, name)
		}
		return json.Marshal(names)
	})
	if err != nil {
		return nil, fmt.Errorf("saving ad-hoc plans: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decoding ad-hoc plans: %w", err)
	}
	return names, nil
}

// Clear forgets the ad-hoc names for a user and date.
func (s *SessionStore) Clear(ctx context.Context, userID, date string) error {
	return s.cache.Delete(ctx, sessionKey(userID, date))
}

func normName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsName(names []string, name string) bool {
	n := normName(name)
	for _, existing := range names {
		if normName(existing) == n {
			return true
		}
	}
	return false
}
