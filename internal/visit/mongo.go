package visit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore stores visits in MongoDB: the flat "visits" collection and the
// per-user "visit_items" mirror collection.
type MongoStore struct {
	client *mongo.Client
	flat   *mongo.Collection
	mirror *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects to MongoDB and prepares the visit collections.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(20).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		flat:   db.Collection("visits"),
		mirror: db.Collection("visit_items"),
		now:    time.Now,
	}

	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.flat, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date_iso", Value: -1}}}},
		{s.mirror, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "visit_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.mirror, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date_key", Value: -1}}}},
	}
	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateOne(ctx, ix.model); err != nil {
			slog.Warn("creating mongodb index", "collection", ix.coll.Name(), "error", err)
		}
	}

	slog.Info("connected to mongodb", "database", database)
	return s, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Add validates and records a new visit, then mirrors it into the user's
// collection. A failed mirror write is logged and does not fail the add.
func (s *MongoStore) Add(ctx context.Context, v *Visit) (*Visit, error) {
	now := s.now()
	p, err := Prepare(v, now)
	if err != nil {
		return nil, err
	}

	doc := toDocument(p)
	if _, err := s.flat.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("inserting visit: %w", err)
	}

	doc.DateKey = MirrorDateKey(p.DateISO, now)
	filter := bson.M{"user_id": p.UserID, "visit_id": p.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.mirror.ReplaceOne(ctx, filter, doc, opts); err != nil {
		slog.Warn("mirroring visit to user store", "visit_id", p.ID, "user_id", p.UserID, "error", err)
	}

	return p, nil
}

// List returns visits across users, newest first.
func (s *MongoStore) List(ctx context.Context, opts ListOptions) ([]*Visit, error) {
	filter := bson.M{}
	if opts.UserID != "" {
		filter["user_id"] = opts.UserID
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "date_iso", Value: -1}}).
		SetLimit(int64(normalizeLimit(opts.Limit)))
	return find(ctx, s.flat, filter, findOpts)
}

// Legacy returns the flat collection as a history source.
func (s *MongoStore) Legacy() Source {
	return mongoLegacySource{s}
}

// Mirror returns the per-user collection as a history source.
func (s *MongoStore) Mirror() Source {
	return mongoMirrorSource{s}
}

type mongoLegacySource struct{ s *MongoStore }

func (m mongoLegacySource) ListRecent(ctx context.Context, userID string, days int) ([]*Visit, error) {
	filter := bson.M{
		"user_id":  userID,
		"date_iso": bson.M{"$gte": legacySince(m.s.now(), days)},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date_iso", Value: -1}}).
		SetLimit(RecentLimit)
	return find(ctx, m.s.flat, filter, opts)
}

type mongoMirrorSource struct{ s *MongoStore }

func (m mongoMirrorSource) ListRecent(ctx context.Context, userID string, days int) ([]*Visit, error) {
	filter := bson.M{
		"user_id":  userID,
		"date_key": bson.M{"$gte": mirrorSince(m.s.now(), days)},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date_iso", Value: -1}}).
		SetLimit(RecentLimit)
	return find(ctx, m.s.mirror, filter, opts)
}

func find(ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]*Visit, error) {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding visits in %s: %w", coll.Name(), err)
	}
	defer func() {
		if err := cur.Close(ctx); err != nil {
			slog.Warn("closing mongodb cursor", "collection", coll.Name(), "error", err)
		}
	}()

	var visits []*Visit
	for cur.Next(ctx) {
		var doc visitDocument
		if err := cur.Decode(&doc); err != nil {
			slog.Warn("skipping undecodable visit", "collection", coll.Name(), "id", cur.Current.Lookup("_id").String(), "error", err)
			continue
		}
		visits = append(visits, doc.toVisit())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}
	return visits, nil
}

// visitDocument is the BSON form of a visit. Mirror documents also carry
// date_key.
type visitDocument struct {
	VisitID         string                    `bson:"visit_id"`
	UserID          string                    `bson:"user_id"`
	DateKey         string                    `bson:"date_key,omitempty"`
	CustomerID      string                    `bson:"customer_id"`
	CustomerName    string                    `bson:"customer_name"`
	PlanID          string                    `bson:"plan_id,omitempty"`
	DateISO         string                    `bson:"date_iso"`
	Temperature     string                    `bson:"temperature"`
	Offered         []OfferedProduct          `bson:"offered,omitempty"`
	OfferedDetailed map[string]detailDocument `bson:"offered_detailed,omitempty"`
	ResultNote      string                    `bson:"result_note,omitempty"`
	Geo             *Geo                      `bson:"geo,omitempty"`
	LocationLink    string                    `bson:"location_link,omitempty"`
	PhotoPath       string                    `bson:"photo_path,omitempty"`
	PhotoURL        string                    `bson:"photo_url,omitempty"`
	CreatedAt       time.Time                 `bson:"created_at"`
}

type detailDocument struct {
	Schema               Schema `bson:"schema"`
	Brand                string `bson:"brand,omitempty"`
	CapacityPerMonth     string `bson:"capacity_per_month,omitempty"`
	PotentialBrand       string `bson:"potential_brand,omitempty"`
	PotentialQtyPerMonth string `bson:"potential_qty_per_month,omitempty"`
	CurrentBrand         string `bson:"current_brand,omitempty"`
	PackageQty           string `bson:"package_qty,omitempty"`
	SwitchPotential      string `bson:"switch_potential,omitempty"`
}

func toDocument(v *Visit) *visitDocument {
	doc := &visitDocument{
		VisitID:      v.ID,
		UserID:       v.UserID,
		CustomerID:   v.CustomerID,
		CustomerName: v.CustomerName,
		PlanID:       v.PlanID,
		DateISO:      v.DateISO,
		Temperature:  string(v.Temperature),
		Offered:      v.Offered,
		ResultNote:   v.ResultNote,
		Geo:          v.Geo,
		LocationLink: v.LocationLink,
		PhotoPath:    v.PhotoPath,
		PhotoURL:     v.PhotoURL,
		CreatedAt:    v.CreatedAt,
	}
	if len(v.OfferedDetailed) > 0 {
		doc.OfferedDetailed = make(map[string]detailDocument, len(v.OfferedDetailed))
		for k, d := range v.OfferedDetailed {
			dd := detailDocument{Schema: d.Schema}
			if d.Current != nil {
				dd.CurrentBrand = d.Current.CurrentBrand
				dd.PackageQty = d.Current.PackageQty
				dd.SwitchPotential = string(d.Current.Switch)
			}
			if d.Legacy != nil {
				dd.Brand = d.Legacy.Brand
				dd.CapacityPerMonth = d.Legacy.CapacityPerMonth
				dd.PotentialBrand = d.Legacy.PotentialBrand
				dd.PotentialQtyPerMonth = d.Legacy.PotentialQtyPerMonth
			}
			doc.OfferedDetailed[k] = dd
		}
	}
	return doc
}

func (d *visitDocument) toVisit() *Visit {
	v := &Visit{
		ID:           d.VisitID,
		UserID:       d.UserID,
		CustomerID:   d.CustomerID,
		CustomerName: d.CustomerName,
		PlanID:       d.PlanID,
		DateISO:      d.DateISO,
		Temperature:  ParseTemperature(d.Temperature),
		Offered:      d.Offered,
		ResultNote:   d.ResultNote,
		Geo:          d.Geo,
		LocationLink: d.LocationLink,
		PhotoPath:    d.PhotoPath,
		PhotoURL:     d.PhotoURL,
		CreatedAt:    d.CreatedAt.UTC(),
	}
	if len(d.OfferedDetailed) > 0 {
		v.OfferedDetailed = make(map[string]ProductDetail, len(d.OfferedDetailed))
		for k, dd := range d.OfferedDetailed {
			if dd.Schema == SchemaCurrent {
				v.OfferedDetailed[k] = NewCurrentDetail(CurrentDetail{
					CurrentBrand: dd.CurrentBrand,
					PackageQty:   dd.PackageQty,
					Switch:       ParseSwitchPotential(dd.SwitchPotential),
				})
				continue
			}
			v.OfferedDetailed[k] = NewLegacyDetail(LegacyDetail{
				Brand:                dd.Brand,
				CapacityPerMonth:     dd.CapacityPerMonth,
				PotentialBrand:       dd.PotentialBrand,
				PotentialQtyPerMonth: dd.PotentialQtyPerMonth,
			})
		}
	}
	return v
}
