package visit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestDocumentRoundTrip(t *testing.T) {
	qty := 4.0
	v := &Visit{
		ID:           "v1",
		UserID:       "u1",
		CustomerName: "Toko A",
		DateISO:      "2024-01-02T10:00:00Z",
		Temperature:  Hot,
		Offered:      []OfferedProduct{{Name: "Minyak", Qty: &qty}},
		OfferedDetailed: map[string]ProductDetail{
			"minyak": NewCurrentDetail(CurrentDetail{CurrentBrand: "Filma", PackageQty: "1L", Switch: SwitchUnlikely}),
			"gula":   NewLegacyDetail(LegacyDetail{Brand: "Gulaku", CapacityPerMonth: "10"}),
		},
		Geo:       &Geo{Lat: 1, Lng: 2},
		CreatedAt: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}

	got := toDocument(v).toVisit()

	if got.ID != "v1" || got.Temperature != Hot || got.Geo.Lat != 1 {
		t.Errorf("got %+v", got)
	}
	if d := got.OfferedDetailed["minyak"].Normalize(); d.SwitchPotential != SwitchUnlikely || d.Quantity != "1L" {
		t.Errorf("current detail = %+v", d)
	}
	if d := got.OfferedDetailed["gula"].Normalize(); d.Brand != "Gulaku" || d.Quantity != "10" {
		t.Errorf("legacy detail = %+v", d)
	}
}

// TestMongoStore runs against a live MongoDB when FV_TEST_MONGO_URI is set.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("FV_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FV_TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	database := fmt.Sprintf("fv_test_%d", time.Now().UnixNano())
	store, err := NewMongoStore(ctx, uri, database)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		if err := store.flat.Database().Drop(ctx); err != nil {
			t.Errorf("drop database: %v", err)
		}
		if err := store.Close(ctx); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	store.now = func() time.Time { return testNow }

	for _, name := range []string{"A", "B"} {
		_, err := store.Add(ctx, &Visit{UserID: "u1", CustomerName: name, Temperature: Warm, DateISO: "2024-01-09T08:00:00Z"})
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	// temperature stored as a number cannot decode into the document type.
	_, err = store.flat.InsertOne(ctx, bson.M{"user_id": "u1", "date_iso": "2024-01-09T09:00:00Z", "temperature": 42})
	if err != nil {
		t.Fatalf("insert bad document: %v", err)
	}

	legacy, err := store.Legacy().ListRecent(ctx, "u1", 30)
	if err != nil {
		t.Fatalf("legacy: %v", err)
	}
	mirror, err := store.Mirror().ListRecent(ctx, "u1", 30)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if len(legacy) != 2 || len(mirror) != 2 {
		t.Fatalf("legacy=%d mirror=%d, want 2 each", len(legacy), len(mirror))
	}
	if out := Reconcile(mirror, legacy); len(out) != 2 {
		t.Errorf("reconciled %d, want 2", len(out))
	}

	all, err := store.List(ctx, ListOptions{Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("list returned %d, want 1", len(all))
	}
}
