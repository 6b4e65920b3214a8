package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trainerhub/poketrainer/internal"
)

// SessionSource is the read side of the session store
type SessionSource interface {
	Current() (*internal.Session, error)
}

// ChatOptions configures a Chat
type ChatOptions struct {
	URL    string
	Dialer Dialer
	// RetryDelay overrides the reconnect pause, mainly for tests
	RetryDelay time.Duration

	// OnMessage runs after each message is appended
	OnMessage func(msg internal.ChatMessage, own bool)
	// OnPresence runs after each presence snapshot is applied
	OnPresence func(entries []PresenceEntry)
	// OnState runs on connection state changes
	OnState func(State)
}

// Chat wires a Manager to a Stream, a Presence tracker and a Composer
type Chat struct {
	sessions SessionSource
	opts     ChatOptions

	mu         sync.Mutex
	session    *internal.Session
	manager    *Manager
	stream     *Stream
	presence   *Presence
	composer   *Composer
	startedAt  time.Time
	transcript *internal.Transcript
	unmount    sync.Once
}

// NewChat creates an unmounted chat view
func NewChat(sessions SessionSource, opts ChatOptions) *Chat {
	return &Chat{sessions: sessions, opts: opts}
}

// Mount opens the chat channel for the stored session. Without a session it
// returns ErrLoginRequired and opens no connection.
func (c *Chat) Mount() error {
	c.mu.Lock()
	mounted := c.manager != nil
	c.mu.Unlock()
	if mounted {
		return errors.New("chat already mounted")
	}

	session, err := c.sessions.Current()
	if err != nil || !session.Valid() {
		return internal.ErrLoginRequired
	}

	manager, err := NewManager(Options{
		URL:        c.opts.URL,
		Dialer:     c.opts.Dialer,
		RetryDelay: c.opts.RetryDelay,
		OnState:    c.opts.OnState,
	})
	if err != nil {
		return err
	}

	selfID := session.UserID()
	stream := NewStream(func(msg internal.ChatMessage, _ int) {
		if c.opts.OnMessage != nil {
			c.opts.OnMessage(msg, IsOwn(msg, selfID))
		}
	})
	presence := NewPresence(selfID)

	manager.On(EventMessage, func(payload json.RawMessage) {
		if err := stream.AppendPayload(payload); err != nil {
			log.Warn("%v", err)
		}
	})
	for _, event := range PresenceEvents {
		event := event
		manager.On(event, func(payload json.RawMessage) {
			if err := presence.Apply(payload); err != nil {
				log.Warn("%s: %v", event, err)
				return
			}
			if c.opts.OnPresence != nil {
				c.opts.OnPresence(presence.Entries())
			}
		})
	}

	c.mu.Lock()
	c.session = session
	c.manager = manager
	c.stream = stream
	c.presence = presence
	c.composer = NewComposer(manager, session.User)
	c.startedAt = time.Now()
	c.mu.Unlock()

	return manager.Open(session.Token)
}

// Unmount closes the connection exactly once and drops stream and presence.
// It returns the transcript of the session, nil if the chat was never mounted.
func (c *Chat) Unmount() *internal.Transcript {
	c.unmount.Do(func() {
		c.mu.Lock()
		manager := c.manager
		c.mu.Unlock()
		if manager == nil {
			return
		}
		_ = manager.Close()

		c.mu.Lock()
		defer c.mu.Unlock()
		c.transcript = &internal.Transcript{
			ID:          uuid.NewString(),
			UserID:      c.session.UserID(),
			DisplayName: c.session.DisplayName(),
			StartedAt:   c.startedAt,
			EndedAt:     time.Now(),
			Messages:    c.stream.Messages(),
		}
		c.stream.Reset()
		c.presence.Reset()
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// Composer returns the composer, nil before Mount
func (c *Chat) Composer() *Composer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.composer
}

// Stream returns the message stream, nil before Mount
func (c *Chat) Stream() *Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

// Presence returns the presence tracker, nil before Mount
func (c *Chat) Presence() *Presence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presence
}

// Manager returns the connection manager, nil before Mount
func (c *Chat) Manager() *Manager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager
}

// Session returns the mounted session, nil before Mount
func (c *Chat) Session() *internal.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}
