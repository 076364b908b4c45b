package plan

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const planColumns = "id, user_id, customer_id, customer_name, date, time, purpose, status, note, created_at"

// Repository provides data access for plans.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a plan repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Add validates and stores a new plan. Status defaults to planned.
func (r *Repository) Add(ctx context.Context, p *Plan) (*Plan, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: missing plan", ErrInvalid)
	}
	n := *p
	n.UserID = strings.TrimSpace(n.UserID)
	n.CustomerName = strings.TrimSpace(n.CustomerName)
	n.AdHoc = false
	if n.Status == "" {
		n.Status = Planned
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = r.now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO plans ("+planColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		n.ID, n.UserID, n.CustomerID, n.CustomerName, n.Date, n.Time, n.Purpose, n.Status, n.Note, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting plan: %w", err)
	}
	return &n, nil
}

// Get returns a plan by ID.
func (r *Repository) Get(ctx context.Context, id string) (*Plan, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM plans WHERE id = ?", id)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting plan: %w", err)
	}
	return p, nil
}

// ListByDate returns a user's plans for one date, ordered by time and then
// creation.
func (r *Repository) ListByDate(ctx context.Context, userID, date string) ([]*Plan, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	return r.query(ctx,
		"SELECT "+planColumns+" FROM plans WHERE user_id = ? AND date = ? ORDER BY time ASC, created_at ASC",
		userID, date,
	)
}

// ListByRange returns a user's plans for the given dates, ordered by date
// and then time.
func (r *Repository) ListByRange(ctx context.Context, userID string, dates []string) ([]*Plan, error) {
	if len(dates) == 0 {
		return []*Plan{}, nil
	}
	args := []any{userID}
	for _, d := range dates {
		if err := ValidateDate(d); err != nil {
			return nil, err
		}
		args = append(args, d)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(dates)), ", ")

	plans, err := r.query(ctx,
		"SELECT "+planColumns+" FROM plans WHERE user_id = ? AND date IN ("+placeholders+") ORDER BY created_at ASC",
		args...,
	)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(plans, func(i, j int) bool {
		if plans[i].Date != plans[j].Date {
			return plans[i].Date < plans[j].Date
		}
		return plans[i].Time < plans[j].Time
	})
	return plans, nil
}

// UpdateStatus changes a plan's status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status) (*Plan, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalid, status)
	}
	result, err := r.db.ExecContext(ctx, "UPDATE plans SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return nil, fmt.Errorf("updating plan status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.Get(ctx, id)
}

func (r *Repository) query(ctx context.Context, query string, args ...any) (plans []*Plan, err error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	plans = []*Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plans: %w", err)
	}
	return plans, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(s scanner) (*Plan, error) {
	var p Plan
	var createdAt sql.NullTime
	err := s.Scan(&p.ID, &p.UserID, &p.CustomerID, &p.CustomerName, &p.Date, &p.Time,
		&p.Purpose, &p.Status, &p.Note, &createdAt)
	if err != nil {
		return nil, err
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time.UTC()
	}
	return &p, nil
}
