package internal

import (
	"database/sql"
	"errors"
	"time"
)

// Well known state keys. They mirror what the web client kept in local storage and cookies.
const (
	KeyAuth          = "auth"
	KeyCookieConsent = "cookie_consent"
)

// StateStore is a small key/value store with optional expiry, backed by sqlite
type StateStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewStateStore creates a new StateStore instance
func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db, now: time.Now}
}

// Get returns the value stored under key, or ErrNotFound when missing or expired
func (s *StateStore) Get(key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := s.db.QueryRow("SELECT value, expires_at FROM client_state WHERE key = ?", key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Key: key, Op: "get", Err: err}
	}

	if expiresAt > 0 && s.now().Unix() >= expiresAt {
		LogDebug("State key %s expired", key)
		_ = s.Delete(key)
		return nil, ErrNotFound
	}
	return value, nil
}

// GetString is Get for text values
func (s *StateStore) GetString(key string) (string, error) {
	v, err := s.Get(key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Set stores value under key without expiry
func (s *StateStore) Set(key string, value []byte) error {
	return s.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key, expiring after ttl when ttl > 0
func (s *StateStore) SetWithTTL(key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).Unix()
	}
	_, err := s.db.Exec(`
		INSERT INTO client_state (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return &StoreError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *StateStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM client_state WHERE key = ?", key); err != nil {
		return &StoreError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Keys lists all stored keys, including expired ones not yet swept
func (s *StateStore) Keys() ([]string, error) {
	return QueryStateKeys(s.db, "%")
}
