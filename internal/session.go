package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the authenticated identity held by the client
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// UserID returns the session owner's id
func (s *Session) UserID() string {
	return s.User.ID
}

// DisplayName returns the session owner's display name
func (s *Session) DisplayName() string {
	return s.User.Name
}

// Valid reports whether the session carries a usable token
func (s *Session) Valid() bool {
	return s != nil && strings.TrimSpace(s.Token) != ""
}

// SessionStore is the single authoritative accessor for the persisted session.
// Every read goes to the state store so a logout from another process is seen immediately.
type SessionStore struct {
	state *StateStore
	now   func() time.Time
}

// NewSessionStore creates a session store on top of the client state
func NewSessionStore(state *StateStore) *SessionStore {
	return &SessionStore{state: state, now: time.Now}
}

// Current returns the stored session, or ErrLoginRequired when there is none,
// its token is empty, or the token's exp claim has passed.
func (ss *SessionStore) Current() (*Session, error) {
	data, err := ss.state.Get(KeyAuth)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrLoginRequired
	}
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		LogWarn("Discarding unreadable session: %v", err)
		_ = ss.state.Delete(KeyAuth)
		return nil, ErrLoginRequired
	}
	if !session.Valid() {
		return nil, ErrLoginRequired
	}

	if expired, exp := ss.tokenExpired(session.Token); expired {
		LogInfo("Stored token expired at %s, clearing session", exp.Format(time.RFC3339))
		_ = ss.state.Delete(KeyAuth)
		return nil, ErrLoginRequired
	}

	return &session, nil
}

// Token returns the current bearer token or "" when logged out
func (ss *SessionStore) Token() string {
	session, err := ss.Current()
	if err != nil {
		return ""
	}
	return session.Token
}

// Save persists the session returned by a successful login
func (ss *SessionStore) Save(session *Session) error {
	if !session.Valid() {
		return fmt.Errorf("refusing to store session without token")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return ss.state.Set(KeyAuth, data)
}

// Clear removes the stored session (logout)
func (ss *SessionStore) Clear() error {
	return ss.state.Delete(KeyAuth)
}

// tokenExpired inspects the exp claim without verifying the signature; the backend
// remains the authority. Opaque (non-JWT) tokens never expire client side.
func (ss *SessionStore) tokenExpired(token string) (bool, time.Time) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, time.Time{}
	}
	return !ss.now().Before(exp.Time), exp.Time
}
