package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const (
	// DefaultListLimit caps List.
	DefaultListLimit = 100
	// DefaultLiteLimit caps ListLite.
	DefaultLiteLimit = 500
)

const customerColumns = `code, user_id, name, phone, address, business_type, city, district,
	owner_nik, owner_name, owner_address, address_link, created_at, updated_at`

// Repository provides data access for customers.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a customer repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Get returns a customer by code.
func (r *Repository) Get(ctx context.Context, code string) (*Customer, error) {
	code = strings.TrimSpace(code)
	row := r.db.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE code = ?", code)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("getting customer: %w", err)
	}
	return c, nil
}

// AddMinimal creates a customer from just a code and name.
func (r *Repository) AddMinimal(ctx context.Context, userID, code, name string) (*Customer, error) {
	return r.Add(ctx, &Customer{UserID: userID, Code: code, Name: name})
}

// Add creates a customer. It fails if the code or name is blank or the code
// is already in use.
func (r *Repository) Add(ctx context.Context, c *Customer) (*Customer, error) {
	n, err := normalize(c)
	if err != nil {
		return nil, err
	}
	if n.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	now := r.now().UTC()
	n.CreatedAt, n.UpdatedAt = now, now

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO customers ("+customerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		n.Code, n.UserID, n.Name, n.Phone, n.Address, n.BusinessType, n.City, n.District,
		n.OwnerNIK, n.OwnerName, n.OwnerAddress, n.AddressLink, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, n.Code)
		}
		return nil, fmt.Errorf("inserting customer: %w", err)
	}
	return n, nil
}

// Upsert creates a customer or merges non-empty fields into an existing
// one. The original creation time is kept.
func (r *Repository) Upsert(ctx context.Context, c *Customer) (*Customer, error) {
	n, err := normalize(c)
	if err != nil {
		return nil, err
	}
	now := r.now().UTC()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			user_id       = CASE WHEN excluded.user_id != '' THEN excluded.user_id ELSE customers.user_id END,
			name          = CASE WHEN excluded.name != '' THEN excluded.name ELSE customers.name END,
			phone         = CASE WHEN excluded.phone != '' THEN excluded.phone ELSE customers.phone END,
			address       = CASE WHEN excluded.address != '' THEN excluded.address ELSE customers.address END,
			business_type = CASE WHEN excluded.business_type != '' THEN excluded.business_type ELSE customers.business_type END,
			city          = CASE WHEN excluded.city != '' THEN excluded.city ELSE customers.city END,
			district      = CASE WHEN excluded.district != '' THEN excluded.district ELSE customers.district END,
			owner_nik     = CASE WHEN excluded.owner_nik != '' THEN excluded.owner_nik ELSE customers.owner_nik END,
			owner_name    = CASE WHEN excluded.owner_name != '' THEN excluded.owner_name ELSE customers.owner_name END,
			owner_address = CASE WHEN excluded.owner_address != '' THEN excluded.owner_address ELSE customers.owner_address END,
			address_link  = CASE WHEN excluded.address_link != '' THEN excluded.address_link ELSE customers.address_link END,
			updated_at    = excluded.updated_at`,
		n.Code, n.UserID, n.Name, n.Phone, n.Address, n.BusinessType, n.City, n.District,
		n.OwnerNIK, n.OwnerName, n.OwnerAddress, n.AddressLink, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting customer: %w", err)
	}
	return r.Get(ctx, n.Code)
}

// List returns a user's customers, newest first.
func (r *Repository) List(ctx context.Context, userID string, max int) (customers []*Customer, err error) {
	if max <= 0 {
		max = DefaultListLimit
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE user_id = ? ORDER BY created_at DESC, code ASC LIMIT ?",
		userID, max,
	)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	customers = []*Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}
	return customers, nil
}

// ListLite returns id/name pairs for a user's customers that have a name.
func (r *Repository) ListLite(ctx context.Context, userID string, max int) (out []Lite, err error) {
	if max <= 0 {
		max = DefaultLiteLimit
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT code, name FROM customers WHERE user_id = ? AND TRIM(name) != '' ORDER BY name COLLATE NOCASE ASC LIMIT ?",
		userID, max,
	)
	if err != nil {
		return nil, fmt.Errorf("listing customer names: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	out = []Lite{}
	for rows.Next() {
		var l Lite
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scanning customer name: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer names: %w", err)
	}
	return out, nil
}

func normalize(c *Customer) (*Customer, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: missing customer", ErrInvalid)
	}
	n := *c
	n.Code = strings.TrimSpace(n.Code)
	n.Name = strings.TrimSpace(n.Name)
	n.UserID = strings.TrimSpace(n.UserID)
	n.BusinessType = ParseBusinessType(string(n.BusinessType))

	if n.Code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalid)
	}
	if !n.BusinessType.IsValid() {
		return nil, fmt.Errorf("%w: unknown business type %q", ErrInvalid, n.BusinessType)
	}
	return &n, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s scanner) (*Customer, error) {
	var c Customer
	var businessType string
	var createdAt, updatedAt sql.NullTime
	err := s.Scan(&c.Code, &c.UserID, &c.Name, &c.Phone, &c.Address, &businessType, &c.City,
		&c.District, &c.OwnerNIK, &c.OwnerName, &c.OwnerAddress, &c.AddressLink, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.BusinessType = ParseBusinessType(businessType)
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time.UTC()
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time.UTC()
	}
	return &c, nil
}
