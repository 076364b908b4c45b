package plan

import (
	"context"
	"log/slog"
)

// Service combines stored plans with ad-hoc session entries.
type Service struct {
	repo     *Repository
	sessions *SessionStore
}

// NewService creates a plan service.
func NewService(repo *Repository, sessions *SessionStore) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// Repository returns the underlying plan repository.
func (s *Service) Repository() *Repository {
	return s.repo
}

// Sessions returns the ad-hoc session store.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// Today returns the user's stored plans for date followed by ad-hoc names
// that do not match a stored plan's customer name.
func (s *Service) Today(ctx context.Context, userID, date string) ([]*Plan, error) {
	stored, err := s.repo.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	names, err := s.sessions.Names(ctx, userID, date)
	if err != nil {
		// A broken session cache only hides ad-hoc entries.
		slog.Warn("loading ad-hoc plans", "user_id", userID, "date", date, "error", err)
		return stored, nil
	}

	out := stored
	for _, name := range names {
		if matchesStored(stored, name) {
			continue
		}
		out = append(out, &Plan{
			UserID:       userID,
			CustomerName: name,
			Date:         date,
			Status:       Planned,
			AdHoc:        true,
		})
	}
	return out, nil
}

func matchesStored(stored []*Plan, name string) bool {
	n := normName(name)
	for _, p := range stored {
		if normName(p.CustomerName) == n {
			return true
		}
	}
	return false
}
