package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/trainerhub/poketrainer/internal"
)

// SelfLabel replaces the current user's name in the presence list
const SelfLabel = "You"

// PresenceEntry is one rendered row of the presence list
type PresenceEntry struct {
	ID    string
	Name  string
	Label string // SelfLabel for the current user, Name otherwise
	Self  bool
}

// Presence holds the last presence snapshot received from the server.
// Every presence event replaces the whole set; nothing is merged.
type Presence struct {
	mu     sync.RWMutex
	selfID string
	users  []internal.ConnectedUser
}

// NewPresence creates a tracker for the user selfID
func NewPresence(selfID string) *Presence {
	return &Presence{selfID: selfID}
}

// Apply replaces the set with the snapshot in payload
func (p *Presence) Apply(payload json.RawMessage) error {
	users, err := decodeSnapshot(payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.users = users
	p.mu.Unlock()
	return nil
}

// Users returns the snapshot in wire order
func (p *Presence) Users() []internal.ConnectedUser {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]internal.ConnectedUser, len(p.users))
	copy(out, p.users)
	return out
}

// Entries returns the snapshot with the current user labelled SelfLabel
func (p *Presence) Entries() []PresenceEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]PresenceEntry, 0, len(p.users))
	for _, u := range p.users {
		e := PresenceEntry{ID: u.ID, Name: u.Name, Label: u.Name}
		if u.ID == p.selfID {
			e.Self = true
			e.Label = SelfLabel
		}
		out = append(out, e)
	}
	return out
}

// Len returns the number of connected users
func (p *Presence) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users)
}

// Reset empties the set
func (p *Presence) Reset() {
	p.mu.Lock()
	p.users = nil
	p.mu.Unlock()
}

// decodeSnapshot reads an {id: name} object keeping the key order of the wire.
// A list of {id, name} objects is accepted too.
func decodeSnapshot(payload json.RawMessage) ([]internal.ConnectedUser, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var users []internal.ConnectedUser
		if err := json.Unmarshal(trimmed, &users); err != nil {
			return nil, fmt.Errorf("invalid presence list: %w", err)
		}
		return users, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid presence snapshot: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("invalid presence snapshot: expected object, got %v", tok)
	}

	var users []internal.ConnectedUser
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid presence snapshot: %w", err)
		}
		id, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid presence snapshot entry %q: %w", id, err)
		}
		name := presenceName(raw)

		if i, seen := index[id]; seen {
			users[i].Name = name
			continue
		}
		index[id] = len(users)
		users = append(users, internal.ConnectedUser{ID: id, Name: name})
	}
	return users, nil
}

// presenceName accepts a bare name or an object carrying one
func presenceName(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	var obj struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Name != "" {
			return obj.Name
		}
		return obj.Username
	}
	return string(raw)
}
