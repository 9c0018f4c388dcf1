package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db *sql.DB
}

// DB returns the underlying *sql.DB instance
func (d *Database) DB() *sql.DB {
	return d.db
}

func New(path string) (*Database, error) {
	// Create the directory if it doesn't exist
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with a single connection
	dbInstance := &Database{db: db}

	// Run migrations
	if err := dbInstance.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return dbInstance, nil
}

// NewInMemory opens a throwaway in-memory database, used by tests
func NewInMemory() (*Database, error) {
	return New(":memory:")
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Begin starts a new transaction
func (d *Database) Begin() (*sql.Tx, error) {
	return d.db.Begin()
}

// migrate runs the database migrations
func (d *Database) migrate() error {
	// Check if migrations table exists
	var tableExists int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='_migrations'`,
	).Scan(&tableExists)

	if err != nil {
		return fmt.Errorf("failed to check migrations table: %v", err)
	}

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	// Create migrations table if it doesn't exist
	if tableExists == 0 {
		if _, err := tx.Exec(`
			CREATE TABLE _migrations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				run_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`); err != nil {
			return fmt.Errorf("failed to create migrations table: %v", err)
		}
	}

	// Run migrations in order
	for _, migration := range getMigrations() {
		// Check if migration already ran
		var count int
		err := tx.QueryRow(
			`SELECT COUNT(*) FROM _migrations WHERE name = ?`,
			migration.name,
		).Scan(&count)

		if err != nil {
			return fmt.Errorf("failed to check migration status: %v", err)
		}

		if count == 0 {
			// Run migration
			if _, err := tx.Exec(migration.statement); err != nil {
				return fmt.Errorf("failed to run migration %s: %v", migration.name, err)
			}

			// Record migration
			if _, err := tx.Exec(
				`INSERT INTO _migrations (name) VALUES (?)`,
				migration.name,
			); err != nil {
				return fmt.Errorf("failed to record migration %s: %v", migration.name, err)
			}
		}
	}

	return tx.Commit()
}

type migration struct {
	name      string
	statement string
}

func getMigrations() []migration {
	return []migration{
		{
			name: "initial_schema",
			statement: `
				-- Users mirror accounts held by the Rift identity provider
				CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					external_id TEXT NOT NULL UNIQUE,
					email TEXT NOT NULL,
					name TEXT NOT NULL DEFAULT '',
					role TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ORGANIZER', 'ADMIN')),
					rift_user_id TEXT NOT NULL DEFAULT '',
					bearer_token TEXT NOT NULL DEFAULT '',
					wallet_address TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);

				CREATE UNIQUE INDEX IF NOT EXISTS idx_users_bearer_token ON users(bearer_token);

				CREATE TRIGGER IF NOT EXISTS update_users_timestamp
				AFTER UPDATE ON users
				BEGIN
					UPDATE users SET updated_at = CURRENT_TIMESTAMP WHERE id = OLD.id;
				END;

				-- Events
				CREATE TABLE IF NOT EXISTS events (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					date TIMESTAMP NOT NULL,
					location TEXT NOT NULL DEFAULT '',
					is_online BOOLEAN NOT NULL DEFAULT 0,
					category TEXT NOT NULL DEFAULT 'OTHER',
					price REAL NOT NULL DEFAULT 0,
					capacity INTEGER NOT NULL,
					organizer_id TEXT NOT NULL,
					image TEXT NOT NULL DEFAULT '',
					share_token TEXT NOT NULL UNIQUE,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (organizer_id) REFERENCES users(id) ON DELETE CASCADE
				);

				CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);

				CREATE TRIGGER IF NOT EXISTS update_events_timestamp
				AFTER UPDATE ON events
				BEGIN
					UPDATE events SET updated_at = CURRENT_TIMESTAMP WHERE id = OLD.id;
				END;

				-- RSVPs: one per (user, event), enforced at commit time
				CREATE TABLE IF NOT EXISTS rsvps (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					event_id TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'CONFIRMED')),
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
					FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
					UNIQUE(user_id, event_id)
				);

				-- Invoices hold an explicit reference to their RSVP
				CREATE TABLE IF NOT EXISTS invoices (
					id TEXT PRIMARY KEY,
					rsvp_id TEXT NOT NULL,
					user_id TEXT NOT NULL,
					event_id TEXT NOT NULL,
					order_id TEXT NOT NULL UNIQUE,
					status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'CONFIRMED')),
					proof_kind TEXT CHECK (proof_kind IN ('receipt', 'transaction')),
					proof_value TEXT,
					ticket_email_sent BOOLEAN NOT NULL DEFAULT 0,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (rsvp_id) REFERENCES rsvps(id) ON DELETE CASCADE,
					FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
					FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
				);

				CREATE INDEX IF NOT EXISTS idx_invoices_rsvp ON invoices(rsvp_id);

				-- Accounts for the embedded identity provider (local mode only)
				CREATE TABLE IF NOT EXISTS rift_accounts (
					id TEXT PRIMARY KEY,
					external_id TEXT NOT NULL UNIQUE,
					email TEXT NOT NULL,
					display_name TEXT NOT NULL DEFAULT '',
					hashed_password TEXT NOT NULL,
					wallet_address TEXT NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
			`,
		},
		// Add more migrations here as needed
	}
}
