package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	// Flat visit log shared by every user. Older clients only wrote here.
	`CREATE TABLE IF NOT EXISTS visits (
		id                    TEXT PRIMARY KEY,
		user_id               TEXT NOT NULL,
		customer_id           TEXT NOT NULL DEFAULT '',
		customer_name         TEXT NOT NULL DEFAULT '',
		date_iso              TEXT NOT NULL,
		temperature           TEXT NOT NULL DEFAULT '',
		offered_json          TEXT NOT NULL DEFAULT '[]',
		offered_detailed_json TEXT NOT NULL DEFAULT '{}',
		result_note           TEXT NOT NULL DEFAULT '',
		lat                   REAL,
		lng                   REAL,
		location_link         TEXT NOT NULL DEFAULT '',
		photo_path            TEXT NOT NULL DEFAULT '',
		photo_url             TEXT NOT NULL DEFAULT '',
		created_at            DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_user_date ON visits (user_id, date_iso DESC)`,
	// Per-user mirror of visits, keyed by the same id as the flat log.
	`CREATE TABLE IF NOT EXISTS user_visits (
		user_id               TEXT NOT NULL,
		id                    TEXT NOT NULL,
		date_key              TEXT NOT NULL,
		customer_id           TEXT NOT NULL DEFAULT '',
		customer_name         TEXT NOT NULL DEFAULT '',
		date_iso              TEXT NOT NULL,
		temperature           TEXT NOT NULL DEFAULT '',
		offered_json          TEXT NOT NULL DEFAULT '[]',
		offered_detailed_json TEXT NOT NULL DEFAULT '{}',
		result_note           TEXT NOT NULL DEFAULT '',
		lat                   REAL,
		lng                   REAL,
		location_link         TEXT NOT NULL DEFAULT '',
		photo_path            TEXT NOT NULL DEFAULT '',
		photo_url             TEXT NOT NULL DEFAULT '',
		created_at            DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_visits_date_key ON user_visits (user_id, date_key DESC)`,
	`CREATE TABLE IF NOT EXISTS plans (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		customer_id   TEXT NOT NULL DEFAULT '',
		customer_name TEXT NOT NULL,
		date          TEXT NOT NULL,
		time          TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'planned' CHECK (status IN ('planned', 'done', 'skipped')),
		note          TEXT NOT NULL DEFAULT '',
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_user_date ON plans (user_id, date, time)`,
	`CREATE TABLE IF NOT EXISTS customers (
		code          TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		name          TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		business_type TEXT NOT NULL DEFAULT '',
		city          TEXT NOT NULL DEFAULT '',
		district      TEXT NOT NULL DEFAULT '',
		owner_nik     TEXT NOT NULL DEFAULT '',
		owner_name    TEXT NOT NULL DEFAULT '',
		owner_address TEXT NOT NULL DEFAULT '',
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_user ON customers (user_id, created_at DESC)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions are skipped when the column exists
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"plans", "purpose", "TEXT NOT NULL DEFAULT ''"},
		{"customers", "address_link", "TEXT NOT NULL DEFAULT ''"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("closing rows", "error", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return nil // column already exists
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
