package history

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/evcraddock/field-visits/internal/db"
	"github.com/evcraddock/field-visits/internal/photo"
	"github.com/evcraddock/field-visits/internal/visit"
)

type fakeSource struct {
	visits []*visit.Visit
	err    error
	delay  time.Duration

	mu      sync.Mutex
	gotUser string
	gotDays int
	started chan struct{}
	waitFor chan struct{}
}

func (f *fakeSource) ListRecent(ctx context.Context, userID string, days int) ([]*visit.Visit, error) {
	f.mu.Lock()
	f.gotUser, f.gotDays = userID, days
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.waitFor != nil {
		<-f.waitFor
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.visits, f.err
}

func TestLoadReconciles(t *testing.T) {
	cloud := &fakeSource{visits: []*visit.Visit{
		{ID: "a", DateISO: "2024-01-02T10:00:00Z", CustomerName: "Toko A", PhotoURL: "x"},
		{ID: "c", DateISO: "2024-01-03T09:00:00Z", CustomerName: "Toko C"},
	}}
	legacy := &fakeSource{visits: []*visit.Visit{
		{ID: "a", DateISO: "2024-01-02T10:00:00Z", CustomerName: "Toko A", ResultNote: "good"},
		{DateISO: "2024-01-02T08:00:00Z", CustomerName: "B"},
	}}

	res := NewService(cloud, legacy, nil).Load(context.Background(), "u1", 7)

	if len(res.Visits) != 3 {
		t.Fatalf("got %d visits, want 3", len(res.Visits))
	}
	if res.Visits[0].ID != "c" {
		t.Errorf("first visit = %q, want c", res.Visits[0].ID)
	}
	if res.Visits[1].ResultNote != "good" || res.Visits[1].PhotoURL != "x" {
		t.Errorf("merged = %+v", res.Visits[1])
	}
	if len(res.Days) != 2 || res.Days[0].Date != "2024-01-03" || len(res.Days[1].Visits) != 2 {
		t.Errorf("days = %+v", res.Days)
	}
	if res.PhotoURLs == nil {
		t.Error("photoUrls should be an empty map, not nil")
	}
	if cloud.gotUser != "u1" || cloud.gotDays != 7 || legacy.gotDays != 7 {
		t.Errorf("sources called with %s/%d and %d", cloud.gotUser, cloud.gotDays, legacy.gotDays)
	}
}

func TestLoadSourceFailure(t *testing.T) {
	tests := []struct {
		name      string
		cloudErr  error
		legacyErr error
		want      int
	}{
		{"cloud fails", errors.New("unavailable"), nil, 1},
		{"legacy fails", nil, errors.New("unavailable"), 1},
		{"both fail", errors.New("x"), errors.New("y"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cloud := &fakeSource{visits: []*visit.Visit{{ID: "c", DateISO: "2024-01-02T10:00:00Z"}}, err: tt.cloudErr}
			legacy := &fakeSource{visits: []*visit.Visit{{ID: "l", DateISO: "2024-01-01T10:00:00Z"}}, err: tt.legacyErr}
			if tt.cloudErr != nil {
				cloud.visits = nil
			}
			if tt.legacyErr != nil {
				legacy.visits = nil
			}

			res := NewService(cloud, legacy, nil).Load(context.Background(), "u1", 30)
			if len(res.Visits) != tt.want {
				t.Errorf("got %d visits, want %d", len(res.Visits), tt.want)
			}
			if res.Days == nil {
				t.Error("days should be empty, not nil")
			}
		})
	}
}

func TestLoadDefaultsDays(t *testing.T) {
	cloud, legacy := &fakeSource{}, &fakeSource{}
	NewService(cloud, legacy, nil).Load(context.Background(), "u1", 0)
	if cloud.gotDays != visit.DefaultDays || legacy.gotDays != visit.DefaultDays {
		t.Errorf("days = %d/%d, want %d", cloud.gotDays, legacy.gotDays, visit.DefaultDays)
	}
}

func TestLoadFetchesConcurrently(t *testing.T) {
	// Each source waits for the other to start; a sequential fetch would
	// deadlock.
	cloudStarted, legacyStarted := make(chan struct{}), make(chan struct{})
	cloud := &fakeSource{started: cloudStarted, waitFor: legacyStarted}
	legacy := &fakeSource{started: legacyStarted, waitFor: cloudStarted}

	done := make(chan struct{})
	go func() {
		NewService(cloud, legacy, nil).Load(context.Background(), "u1", 30)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sources were not fetched concurrently")
	}
}

func TestLoadPrefetchesPhotos(t *testing.T) {
	cloud := &fakeSource{visits: []*visit.Visit{
		{ID: "a", DateISO: "2024-01-02T10:00:00Z", PhotoPath: "visits/a.jpg"},
		{ID: "b", DateISO: "2024-01-02T11:00:00Z", PhotoURL: "https://has-url"},
	}}

	svc := NewService(cloud, &fakeSource{}, photo.NewResolver("demo", nil, 2))
	res := svc.Load(context.Background(), "u1", 30)

	if len(res.PhotoURLs) != 1 {
		t.Fatalf("photoUrls = %v, want one entry", res.PhotoURLs)
	}
	if res.PhotoURLs["a"] != photo.CloudinaryURL("demo", "visits/a.jpg") {
		t.Errorf("photoUrls[a] = %q", res.PhotoURLs["a"])
	}
}

func TestLoadFromSQLiteStore(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	repo := visit.NewRepository(d)
	ctx := context.Background()

	today := time.Now().UTC().Format(time.RFC3339)
	v, err := repo.Add(ctx, &visit.Visit{UserID: "u1", CustomerName: "Toko A", Temperature: visit.Hot, DateISO: today})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	// A legacy-only record that was never mirrored.
	_, err = d.Exec(`INSERT INTO visits (id, user_id, customer_name, date_iso, temperature) VALUES (?, ?, ?, ?, ?)`,
		"old", "u1", "Toko Lama", today, "dingin")
	if err != nil {
		t.Fatalf("insert legacy: %v", err)
	}

	res := NewServiceFromStore(repo, nil).Load(ctx, "u1", 30)

	if len(res.Visits) != 2 {
		t.Fatalf("got %d visits, want 2", len(res.Visits))
	}
	ids := map[string]bool{}
	for _, rv := range res.Visits {
		ids[rv.ID] = true
	}
	if !ids[v.ID] || !ids["old"] {
		t.Errorf("ids = %v", ids)
	}
}
