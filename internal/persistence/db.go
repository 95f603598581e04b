// Package persistence provides the SQLite store for the catalog, venue
// configuration, auctions, backing items, and mail.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/auctionbot/internal/venue"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS item_template (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		class INTEGER NOT NULL,
		quality INTEGER NOT NULL,
		buy_price INTEGER NOT NULL DEFAULT 0,
		sell_price INTEGER NOT NULL DEFAULT 0,
		max_stack INTEGER NOT NULL DEFAULT 1,
		sellable INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS item_price_override (
		item_id INTEGER PRIMARY KEY,
		avg_price INTEGER NOT NULL DEFAULT 0,
		min_price INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS item_instance (
		guid INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL,
		owner INTEGER NOT NULL,
		count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auction (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		house INTEGER NOT NULL,
		item_guid INTEGER NOT NULL UNIQUE REFERENCES item_instance(guid),
		item_id INTEGER NOT NULL,
		item_count INTEGER NOT NULL,
		owner INTEGER NOT NULL,
		bidder INTEGER NOT NULL DEFAULT 0,
		bid INTEGER NOT NULL DEFAULT 0,
		start_bid INTEGER NOT NULL,
		buyout INTEGER NOT NULL DEFAULT 0,
		deposit INTEGER NOT NULL DEFAULT 0,
		expire_time INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mail (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		receiver INTEGER NOT NULL,
		auction_id INTEGER NOT NULL,
		item_guid INTEGER NOT NULL DEFAULT 0,
		money INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_auction_house ON auction(house, bidder);
	CREATE INDEX IF NOT EXISTS idx_auction_expire ON auction(expire_time);
	CREATE INDEX IF NOT EXISTS idx_mail_receiver ON mail(receiver);
	` + venueSchema()
	_, err := db.conn.Exec(schema)
	return err
}

// venueSchema builds the venue_config table: one row per house, one column
// per configuration value.
func venueSchema() string {
	var b strings.Builder
	b.WriteString("\n\tCREATE TABLE IF NOT EXISTS venue_config (\n\t\thouse INTEGER PRIMARY KEY,\n\t\tname TEXT NOT NULL")
	for _, col := range venue.Columns() {
		fmt.Fprintf(&b, ",\n\t\t%s INTEGER NOT NULL DEFAULT 0", col)
	}
	b.WriteString("\n\t);\n")
	return b.String()
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a value. A missing key returns "" and no error.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}
