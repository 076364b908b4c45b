package visit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/field-visits/internal/db"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func TestAddAndGet(t *testing.T) {
	repo := testSetup(t)
	ctx := context.Background()

	qty := 2.0
	v, err := repo.Add(ctx, &Visit{
		UserID:       "USER-DEMO",
		CustomerID:   "C-1",
		CustomerName: " Toko A ",
		Temperature:  "panas",
		Offered:      []OfferedProduct{{Name: "Minyak", Qty: &qty}},
		OfferedDetailed: map[string]ProductDetail{
			"minyak": NewCurrentDetail(CurrentDetail{CurrentBrand: "Filma", Switch: SwitchHigh}),
		},
		ResultNote: "interested",
		Geo:        &Geo{Lat: -6.2, Lng: 106.8},
		PhotoPath:  "visits/USER-DEMO/a.jpg",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if v.ID == "" {
		t.Error("expected generated ID")
	}
	if v.DateISO != "2024-01-10T12:00:00Z" {
		t.Errorf("dateISO = %q, want now", v.DateISO)
	}
	if v.CustomerName != "Toko A" {
		t.Errorf("customerName = %q, want trimmed", v.CustomerName)
	}
	if v.Temperature != Hot {
		t.Errorf("temperature = %q, want %q", v.Temperature, Hot)
	}
	if v.LocationLink != "https://maps.google.com/?q=-6.2,106.8" {
		t.Errorf("locationLink = %q", v.LocationLink)
	}

	got, err := repo.Get(ctx, v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CustomerName != "Toko A" || got.ResultNote != "interested" || got.PhotoPath != v.PhotoPath {
		t.Errorf("got %+v", got)
	}
	if len(got.Offered) != 1 || got.Offered[0].Qty == nil || *got.Offered[0].Qty != 2 {
		t.Errorf("offered = %+v", got.Offered)
	}
	if d := got.OfferedDetailed["minyak"].Normalize(); d.Brand != "Filma" || d.SwitchPotential != SwitchHigh {
		t.Errorf("detail = %+v", d)
	}
	if got.Geo == nil || got.Geo.Lng != 106.8 {
		t.Errorf("geo = %+v", got.Geo)
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, testNow)
	}
}

func TestAddValidation(t *testing.T) {
	repo := testSetup(t)

	tests := []struct {
		name string
		v    *Visit
	}{
		{"missing user", &Visit{CustomerName: "A", Temperature: Hot}},
		{"missing customer name", &Visit{UserID: "u", CustomerName: "  ", Temperature: Hot}},
		{"invalid temperature", &Visit{UserID: "u", CustomerName: "A", Temperature: "lukewarm"}},
		{"missing temperature", &Visit{UserID: "u", CustomerName: "A"}},
		{"bad dateISO", &Visit{UserID: "u", CustomerName: "A", Temperature: Hot, DateISO: "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Add(context.Background(), tt.v)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestAddKeepsProvidedFields(t *testing.T) {
	repo := testSetup(t)

	v, err := repo.Add(context.Background(), &Visit{
		ID:           "fixed-id",
		UserID:       "u",
		CustomerName: "A",
		Temperature:  Warm,
		DateISO:      "2024-01-09T08:00:00.000Z",
		LocationLink: "https://maps.example/x",
		Geo:          &Geo{Lat: 1, Lng: 2},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if v.ID != "fixed-id" {
		t.Errorf("id = %q", v.ID)
	}
	if v.DateISO != "2024-01-09T08:00:00Z" {
		t.Errorf("dateISO = %q", v.DateISO)
	}
	if v.LocationLink != "https://maps.example/x" {
		t.Errorf("locationLink = %q", v.LocationLink)
	}
}

func TestAddNormalizesDateISOToUTC(t *testing.T) {
	repo := testSetup(t)
	ctx := context.Background()

	// 16:00Z, earlier than "late" despite sorting after it as raw strings.
	early := addVisit(t, repo, "u1", "early", "2024-01-02T23:00:00+07:00")
	addVisit(t, repo, "u1", "late", "2024-01-02T17:00:00.250Z")

	if early.DateISO != "2024-01-02T16:00:00Z" {
		t.Errorf("dateISO = %q, want 2024-01-02T16:00:00Z", early.DateISO)
	}

	got, err := repo.Legacy().ListRecent(ctx, "u1", 30)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	out := Reconcile(nil, got)
	if len(out) != 2 || out[0].CustomerName != "late" || out[1].CustomerName != "early" {
		t.Errorf("order = %v, want [late early]", keys(out))
	}
	if out[0].DateISO != "2024-01-02T17:00:00Z" {
		t.Errorf("fractional dateISO = %q, want 2024-01-02T17:00:00Z", out[0].DateISO)
	}
}

func TestMirrorWindowUsesUTCDate(t *testing.T) {
	repo := testSetup(t)
	ctx := context.Background()

	// 2024-01-10T05:00+07:00 is still 2024-01-09 in UTC.
	repo.now = func() time.Time {
		return time.Date(2024, 1, 10, 5, 0, 0, 0, time.FixedZone("WIB", 7*60*60))
	}
	addVisit(t, repo, "u1", "yesterday utc", "2024-01-08T23:00:00Z")

	got, err := repo.Mirror().ListRecent(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %v, want the 2024-01-08 visit inside a two-day window", keys(got))
	}
	if key := MirrorDateKey("", repo.now()); key != "2024-01-09" {
		t.Errorf("fallback date key = %q, want 2024-01-09", key)
	}
}

func TestListSkipsMalformedProducts(t *testing.T) {
	repo := testSetup(t)
	ctx := context.Background()

	addVisit(t, repo, "u1", "A", "2024-01-07T08:00:00Z")
	bad := addVisit(t, repo, "u1", "B", "2024-01-08T08:00:00Z")
	addVisit(t, repo, "u1", "C", "2024-01-09T08:00:00Z")

	_, err := repo.db.Exec(
		"UPDATE visits SET offered_json = ?, offered_detailed_json = ? WHERE id = ?",
		"bad json", "{", bad.ID,
	)
	if err != nil {
		t.Fatalf("corrupting row: %v", err)
	}

	got, err := repo.Legacy().ListRecent(ctx, "u1", 30)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d visits, want 3", len(got))
	}
	if got[1].ID != bad.ID || got[1].Offered != nil || got[1].OfferedDetailed != nil {
		t.Errorf("malformed row = %+v, want products absent", got[1])
	}
}

func TestAddMirrorsToUserStore(t *testing.T) {
	repo := testSetup(t)
	ctx := context.Background()

	v := addVisit(t, repo, "u1", "Toko A", "2024-01-09T08:00:00Z")

	var dateKey string
	err := repo.db.QueryRow("SELECT date_key FROM user_visits WHERE user_id = ? AND id = ?", "u1", v.ID).Scan(&dateKey)
	if err != nil {
		t.Fatalf("reading mirror: %v", err)
	}
	if dateKey != "2024-01-09" {
		t.Errorf("date_key = %q, want %q", dateKey, "2024-01-09")
	}

	mirrored, err := repo.Mirror().ListRecent(ctx, "u1", 30)
	if err != nil {
		t.Fatalf("mirror list: %v", err)
	}
	if len(mirrored) != 1 || mirrored[0].ID != v.ID {
		t.Errorf("mirror = %v", keys(mirrored))
	}
}

func TestAddMirrorFailureDoesNotFail(t *testing.T) {
	repo := testSetup(t)

	if _, err := repo.db.Exec("DROP TABLE user_visits"); err != nil {
		t.Fatalf("drop mirror: %v", err)
	}

	v := addVisit(t, repo, "u1", "Toko A", "2024-01-09T08:00:00Z")

	legacy, err := repo.Legacy().ListRecent(context.Background(), "u1", 30)
	if err != nil {
		t.Fatalf("legacy list: %v", err)
	}
	if len(legacy) != 1 || legacy[0].ID != v.ID {
		t.Errorf("legacy = %v", keys(legacy))
	}
}

func TestLegacyListRecent(t *testing.T) {
	repo := testSetup(t)
	ctx := context.Background()

	addVisit(t, repo, "u1", "old", "2023-12-01T08:00:00Z")
	addVisit(t, repo, "u1", "recent", "2024-01-05T08:00:00Z")
	addVisit(t, repo, "u1", "newest", "2024-01-09T08:00:00Z")
	addVisit(t, repo, "u2", "other user", "2024-01-09T09:00:00Z")

	got, err := repo.Legacy().ListRecent(ctx, "u1", 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d visits, want 2", len(got))
	}
	if got[0].CustomerName != "newest" || got[1].CustomerName != "recent" {
		t.Errorf("order = %s, %s", got[0].CustomerName, got[1].CustomerName)
	}
}

func TestMirrorListRecentIncludesToday(t *testing.T) {
	repo := testSetup(t)
	ctx := context.Background()

	addVisit(t, repo, "u1", "today", "2024-01-10T01:00:00Z")
	addVisit(t, repo, "u1", "edge", "2024-01-04T01:00:00Z")
	addVisit(t, repo, "u1", "outside", "2024-01-03T23:00:00Z")

	got, err := repo.Mirror().ListRecent(ctx, "u1", 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, v := range got {
		names = append(names, v.CustomerName)
	}
	if strings.Join(names, ",") != "today,edge" {
		t.Errorf("names = %v, want [today edge]", names)
	}
}

func TestListRecentDefaultsDays(t *testing.T) {
	repo := testSetup(t)

	addVisit(t, repo, "u1", "in window", "2023-12-20T08:00:00Z")
	addVisit(t, repo, "u1", "outside", "2023-11-01T08:00:00Z")

	got, err := repo.Legacy().ListRecent(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].CustomerName != "in window" {
		t.Errorf("got %v", keys(got))
	}
}

func TestList(t *testing.T) {
	repo := testSetup(t)
	ctx := context.Background()

	addVisit(t, repo, "u1", "A", "2024-01-01T08:00:00Z")
	addVisit(t, repo, "u2", "B", "2024-01-03T08:00:00Z")
	addVisit(t, repo, "u1", "C", "2024-01-02T08:00:00Z")

	all, err := repo.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].CustomerName != "B" || all[2].CustomerName != "A" {
		t.Errorf("all = %v", keys(all))
	}

	limited, err := repo.List(ctx, ListOptions{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d, want 1", len(limited))
	}

	mine, err := repo.List(ctx, ListOptions{UserID: "u1"})
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("got %d, want 2", len(mine))
	}
}

func TestLegacyRowsWithIndonesianTemperature(t *testing.T) {
	repo := testSetup(t)

	_, err := repo.db.Exec(
		`INSERT INTO visits (id, user_id, customer_name, date_iso, temperature) VALUES (?, ?, ?, ?, ?)`,
		"old-1", "u1", "Toko Lama", "2024-01-08T08:00:00Z", "menyala",
	)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Get(context.Background(), "old-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Temperature != Blazing {
		t.Errorf("temperature = %q, want %q", got.Temperature, Blazing)
	}
	if got.Geo != nil {
		t.Errorf("geo = %+v, want nil", got.Geo)
	}
}

func TestGetNotFound(t *testing.T) {
	repo := testSetup(t)

	if _, err := repo.Get(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for missing visit")
	}
}

func testSetup(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	repo := NewRepository(d)
	repo.now = func() time.Time { return testNow }
	return repo
}

func addVisit(t *testing.T, repo *Repository, userID, customer, dateISO string) *Visit {
	t.Helper()
	v, err := repo.Add(context.Background(), &Visit{
		UserID:       userID,
		CustomerName: customer,
		Temperature:  Warm,
		DateISO:      dateISO,
	})
	if err != nil {
		t.Fatalf("add visit %s: %v", customer, err)
	}
	return v
}
