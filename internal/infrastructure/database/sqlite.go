package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cash_card (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	amount TEXT    NOT NULL,
	owner  TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cash_card_owner ON cash_card (owner);
`

// NewSQLiteDB opens (creating if needed) the database file at path and ensures the schema.
func NewSQLiteDB(path string) (*sql.DB, error) {
	if path == "" {
		path = "cashcards.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cash_card table: %w", err)
	}
	return db, nil
}
