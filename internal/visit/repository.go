package visit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

const visitColumns = `id, user_id, customer_id, customer_name, date_iso, temperature,
	offered_json, offered_detailed_json, result_note, lat, lng, location_link,
	photo_path, photo_url, created_at`

// Repository stores visits in SQLite: the flat visits table and the
// per-user user_visits mirror.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a visit repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Add validates and records a new visit, then mirrors it into the user's
// store. A failed mirror write is logged and does not fail the add.
func (r *Repository) Add(ctx context.Context, v *Visit) (*Visit, error) {
	now := r.now()
	p, err := Prepare(v, now)
	if err != nil {
		return nil, err
	}

	args, err := visitArgs(p)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO visits ("+visitColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting visit: %w", err)
	}

	mirrorArgs := append([]any{MirrorDateKey(p.DateISO, now)}, args...)
	_, err = r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO user_visits (date_key, "+visitColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		mirrorArgs...,
	)
	if err != nil {
		slog.Warn("mirroring visit to user store", "visit_id", p.ID, "user_id", p.UserID, "error", err)
	}

	return p, nil
}

// Get returns a visit from the flat store by ID.
func (r *Repository) Get(ctx context.Context, id string) (*Visit, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+visitColumns+" FROM visits WHERE id = ?", id)
	v, err := scanVisit(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("visit %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting visit: %w", err)
	}
	return v, nil
}

// List returns visits across users, newest first.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]*Visit, error) {
	query := "SELECT " + visitColumns + " FROM visits"
	var args []any
	if opts.UserID != "" {
		query += " WHERE user_id = ?"
		args = append(args, opts.UserID)
	}
	query += " ORDER BY date_iso DESC, created_at DESC LIMIT ?"
	args = append(args, normalizeLimit(opts.Limit))

	return r.query(ctx, query, args...)
}

// Legacy returns the flat store as a history source.
func (r *Repository) Legacy() Source {
	return legacySource{r}
}

// Mirror returns the per-user store as a history source.
func (r *Repository) Mirror() Source {
	return mirrorSource{r}
}

type legacySource struct{ r *Repository }

// ListRecent returns the user's visits from the last days, newest first.
func (s legacySource) ListRecent(ctx context.Context, userID string, days int) ([]*Visit, error) {
	return s.r.query(ctx,
		"SELECT "+visitColumns+" FROM visits WHERE user_id = ? AND date_iso >= ? ORDER BY date_iso DESC LIMIT ?",
		userID, legacySince(s.r.now(), days), RecentLimit,
	)
}

type mirrorSource struct{ r *Repository }

// ListRecent returns the user's mirrored visits dated within the last days,
// today included, newest first.
func (s mirrorSource) ListRecent(ctx context.Context, userID string, days int) ([]*Visit, error) {
	return s.r.query(ctx,
		"SELECT "+visitColumns+" FROM user_visits WHERE user_id = ? AND date_key >= ? ORDER BY date_iso DESC LIMIT ?",
		userID, mirrorSince(s.r.now(), days), RecentLimit,
	)
}

func (r *Repository) query(ctx context.Context, query string, args ...any) (visits []*Visit, err error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}

	return visits, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVisit(s scanner) (*Visit, error) {
	var (
		v                       Visit
		temperature             string
		offeredJSON, detailJSON string
		lat, lng                sql.NullFloat64
		createdAt               sql.NullTime
	)
	err := s.Scan(
		&v.ID, &v.UserID, &v.CustomerID, &v.CustomerName, &v.DateISO, &temperature,
		&offeredJSON, &detailJSON, &v.ResultNote, &lat, &lng, &v.LocationLink,
		&v.PhotoPath, &v.PhotoURL, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	v.Temperature = ParseTemperature(temperature)
	if lat.Valid && lng.Valid {
		v.Geo = &Geo{Lat: lat.Float64, Lng: lng.Float64}
	}
	if createdAt.Valid {
		v.CreatedAt = createdAt.Time.UTC()
	}
	// A malformed product column leaves that field absent rather than
	// hiding the visit.
	if offeredJSON != "" {
		if err := json.Unmarshal([]byte(offeredJSON), &v.Offered); err != nil {
			slog.Warn("decoding offered products", "visit_id", v.ID, "error", err)
			v.Offered = nil
		}
	}
	if detailJSON != "" {
		if err := json.Unmarshal([]byte(detailJSON), &v.OfferedDetailed); err != nil {
			slog.Warn("decoding product details", "visit_id", v.ID, "error", err)
			v.OfferedDetailed = nil
		}
	}
	if len(v.OfferedDetailed) == 0 {
		v.OfferedDetailed = nil
	}
	return &v, nil
}

func visitArgs(v *Visit) ([]any, error) {
	offered := v.Offered
	if offered == nil {
		offered = []OfferedProduct{}
	}
	offeredJSON, err := json.Marshal(offered)
	if err != nil {
		return nil, fmt.Errorf("encoding offered products: %w", err)
	}
	detailed := v.OfferedDetailed
	if detailed == nil {
		detailed = map[string]ProductDetail{}
	}
	detailJSON, err := json.Marshal(detailed)
	if err != nil {
		return nil, fmt.Errorf("encoding product details: %w", err)
	}

	var lat, lng sql.NullFloat64
	if v.Geo != nil {
		lat = sql.NullFloat64{Float64: v.Geo.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: v.Geo.Lng, Valid: true}
	}

	return []any{
		v.ID, v.UserID, v.CustomerID, v.CustomerName, v.DateISO, string(v.Temperature),
		string(offeredJSON), string(detailJSON), v.ResultNote, lat, lng, v.LocationLink,
		v.PhotoPath, v.PhotoURL, v.CreatedAt,
	}, nil
}
