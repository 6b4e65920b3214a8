package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database with the client_state table
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS client_state (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create client_state table: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// InsertState inserts a raw state row
func InsertState(t *testing.T, db *sql.DB, key string, value []byte, expiresAt int64) {
	t.Helper()
	insertSQL := "INSERT INTO client_state (key, value, expires_at) VALUES (?, ?, ?)"
	if _, err := db.Exec(insertSQL, key, value, expiresAt); err != nil {
		t.Fatalf("Failed to insert state %s: %v", key, err)
	}
}
