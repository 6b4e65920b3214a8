package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const stateSchema = `
CREATE TABLE IF NOT EXISTS client_state (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
)`

// OpenDatabase opens (creating if needed) the SQLite client state database
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time keeps sqlite away from SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := MigrateDatabase(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// MigrateDatabase creates the client_state table when missing
func MigrateDatabase(db *sql.DB) error {
	if _, err := db.Exec(stateSchema); err != nil {
		return fmt.Errorf("failed to create client_state table: %w", err)
	}
	return nil
}

// QueryStateKeys lists keys matching a LIKE pattern
func QueryStateKeys(db *sql.DB, pattern string) ([]string, error) {
	rows, err := db.Query("SELECT key FROM client_state WHERE key LIKE ? ORDER BY key", pattern)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}
