// Package history assembles a user's visit history from the per-user and
// legacy visit stores.
package history

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/field-visits/internal/visit"
)

// Result is a reconciled visit history.
type Result struct {
	Visits    []*visit.Visit    `json:"visits"`
	Days      []visit.DayBucket `json:"days"`
	PhotoURLs map[string]string `json:"photoUrls"`
}

// PhotoPrefetcher resolves photo URLs for visits that only carry a path.
type PhotoPrefetcher interface {
	Prefetch(ctx context.Context, visits []*visit.Visit) map[string]string
}

// Service loads reconciled visit history.
type Service struct {
	cloud  visit.Source
	legacy visit.Source
	photos PhotoPrefetcher
}

// NewService creates a history service. photos may be nil.
func NewService(cloud, legacy visit.Source, photos PhotoPrefetcher) *Service {
	return &Service{cloud: cloud, legacy: legacy, photos: photos}
}

// NewServiceFromStore reads cloud records from the store's per-user mirror
// and legacy records from its flat collection.
func NewServiceFromStore(store visit.Store, photos PhotoPrefetcher) *Service {
	return NewService(store.Mirror(), store.Legacy(), photos)
}

// Load fetches both sources concurrently and reconciles them. A source that
// fails contributes no records; Load itself never fails.
func (s *Service) Load(ctx context.Context, userID string, days int) *Result {
	if days <= 0 {
		days = visit.DefaultDays
	}

	var cloud, legacy []*visit.Visit
	var g errgroup.Group
	g.Go(func() error {
		cloud = fetch(ctx, "cloud", s.cloud, userID, days)
		return nil
	})
	g.Go(func() error {
		legacy = fetch(ctx, "legacy", s.legacy, userID, days)
		return nil
	})
	_ = g.Wait()

	visits := visit.Reconcile(cloud, legacy)

	photoURLs := map[string]string{}
	if s.photos != nil {
		photoURLs = s.photos.Prefetch(ctx, visits)
	}

	slog.Debug("history loaded",
		"user_id", userID,
		"days", days,
		"cloud", len(cloud),
		"legacy", len(legacy),
		"visits", len(visits),
	)

	return &Result{
		Visits:    visits,
		Days:      visit.GroupByDate(visits),
		PhotoURLs: photoURLs,
	}
}

func fetch(ctx context.Context, name string, src visit.Source, userID string, days int) []*visit.Visit {
	if src == nil {
		return nil
	}
	visits, err := src.ListRecent(ctx, userID, days)
	if err != nil {
		slog.Warn("loading visits failed", "source", name, "user_id", userID, "error", err)
		return nil
	}
	return visits
}
