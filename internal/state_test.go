package internal

import (
	"errors"
	"testing"
	"time"

	"github.com/trainerhub/poketrainer/testutil"
)

func newTestStateStore(t *testing.T) *StateStore {
	t.Helper()
	return NewStateStore(testutil.CreateInMemoryDB(t))
}

func TestStateStore_SetGet(t *testing.T) {
	store := newTestStateStore(t)

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := store.Set(KeyCookieConsent, []byte("accepted")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := store.GetString(KeyCookieConsent)
	if err != nil {
		t.Fatalf("GetString() error = %v", err)
	}
	if got != "accepted" {
		t.Errorf("GetString() = %q, want %q", got, "accepted")
	}

	// overwrite
	if err := store.Set(KeyCookieConsent, []byte("declined")); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if got, _ := store.GetString(KeyCookieConsent); got != "declined" {
		t.Errorf("after overwrite GetString() = %q, want %q", got, "declined")
	}
}

func TestStateStore_Expiry(t *testing.T) {
	store := newTestStateStore(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.SetWithTTL("profile_image", []byte("png"), 7*24*time.Hour); err != nil {
		t.Fatalf("SetWithTTL() error = %v", err)
	}

	now = now.Add(6 * 24 * time.Hour)
	if _, err := store.Get("profile_image"); err != nil {
		t.Errorf("Get() before expiry error = %v", err)
	}

	now = now.Add(2 * 24 * time.Hour)
	if _, err := store.Get("profile_image"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrNotFound", err)
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expired key should be swept, got keys %v", keys)
	}
}

func TestStateStore_Delete(t *testing.T) {
	store := newTestStateStore(t)

	if err := store.Delete("never-set"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}

	_ = store.Set("auth", []byte("{}"))
	if err := store.Delete("auth"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get("auth"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
}
