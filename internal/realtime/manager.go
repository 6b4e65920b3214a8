package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trainerhub/poketrainer/internal"
)

const (
	// DefaultMaxAttempts is the reconnect budget after a connection is lost
	DefaultMaxAttempts = 5
	// DefaultRetryDelay is the fixed pause between reconnect attempts
	DefaultRetryDelay = time.Second
)

// State of a Manager
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateDown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateDown:
		return "down"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrManagerClosed is returned when using a manager after Close
var ErrManagerClosed = errors.New("realtime manager is closed")

// errRejected marks a connect_error from the server; it is not retried
var errRejected = errors.New("connection rejected by server")

// Handler receives the first argument of an event
type Handler func(payload json.RawMessage)

// Options configures a Manager
type Options struct {
	URL         string // backend root, e.g. http://localhost:8080
	Dialer      Dialer
	MaxAttempts int
	RetryDelay  time.Duration
	// OnState is called on every state transition, never after Close returns
	OnState func(State)
}

// Manager owns at most one Socket.IO connection and its reconnect policy.
// Events are dispatched in arrival order from a single reader goroutine.
// Handlers must not call Close or Rebind.
type Manager struct {
	opts     Options
	endpoint string

	handlers map[string]Handler

	mu     sync.Mutex
	state  State
	conn   Conn
	connID string
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// NewManager creates a manager. Subscriptions are registered with On before Open.
func NewManager(opts Options) (*Manager, error) {
	endpoint, err := SocketURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.Dialer == nil {
		opts.Dialer = WebsocketDialer{}
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &Manager{
		opts:     opts,
		endpoint: endpoint,
		handlers: make(map[string]Handler),
	}, nil
}

// On subscribes h to event, replacing any previous handler
func (m *Manager) On(event string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = h
}

// State returns the current state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Open starts a connection authenticated with token. With an empty token
// nothing is dialed and ErrLoginRequired is returned.
func (m *Manager) Open(token string) error {
	if token == "" {
		return internal.ErrLoginRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrManagerClosed
	}
	if m.cancel != nil {
		return fmt.Errorf("realtime connection already open")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx, token, m.done)
	return nil
}

// Rebind reconnects with a new token. An empty token leaves the manager idle.
func (m *Manager) Rebind(token string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	m.mu.Unlock()

	m.stop()
	m.setState(StateIdle)
	if token == "" {
		return nil
	}
	return m.Open(token)
}

// Close tears the connection down. It is idempotent and no handler or
// state callback runs after it returns.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.state = StateClosed
	m.mu.Unlock()

	m.stop()
	log.Debug("Manager closed")
	return nil
}

// stop cancels the running connection loop and waits for it to exit
func (m *Manager) stop() {
	m.mu.Lock()
	cancel, done, conn := m.cancel, m.done, m.conn
	m.cancel, m.done, m.conn = nil, nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if conn != nil {
		_ = conn.Close()
	}
	<-done
}

// Emit sends event with data on the live connection
func (m *Manager) Emit(event string, data interface{}) error {
	m.mu.Lock()
	conn, state := m.conn, m.state
	m.mu.Unlock()
	if conn == nil || state != StateConnected {
		return internal.ErrNotConnected
	}

	msg, err := encodeEvent(event, data)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(msg); err != nil {
		return &internal.RealtimeError{Op: "write", URL: m.endpoint, Err: err}
	}
	return nil
}

func (m *Manager) run(ctx context.Context, token string, done chan struct{}) {
	defer close(done)

	attempts := 0
	for {
		m.setState(StateConnecting)
		established, err := m.session(ctx, token)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, errRejected) {
			log.Warn("%v", err)
			m.setState(StateDown)
			return
		}
		if established {
			attempts = 0
		}
		if attempts >= m.opts.MaxAttempts {
			log.Warn("Giving up after %d reconnect attempts: %v", attempts, err)
			m.setState(StateDown)
			return
		}
		attempts++
		log.Info("Connection lost (%v), reconnecting in %s (attempt %d/%d)", err, m.opts.RetryDelay, attempts, m.opts.MaxAttempts)
		m.setState(StateReconnecting)

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.opts.RetryDelay):
		}
	}
}

// session dials once and serves the connection until it drops.
// established reports whether the namespace connect was acknowledged.
func (m *Manager) session(ctx context.Context, token string) (established bool, err error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, err := m.opts.Dialer.Dial(ctx, m.endpoint, header)
	if err != nil {
		return false, &internal.RealtimeError{Op: "dial", URL: m.endpoint, Err: err}
	}
	defer conn.Close()

	connID := uuid.NewString()
	m.mu.Lock()
	if ctx.Err() != nil {
		m.mu.Unlock()
		return false, ctx.Err()
	}
	m.conn = conn
	m.connID = connID
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		if m.conn == conn {
			m.conn = nil
		}
		m.mu.Unlock()
	}()
	log.Debug("Dialed %s (conn %s)", m.endpoint, connID)

	var liveness time.Duration
	for {
		if liveness > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(liveness))
		}
		data, err := conn.ReadMessage()
		if err != nil {
			return established, &internal.RealtimeError{Op: "read", URL: m.endpoint, Err: err}
		}

		f, err := parseFrame(data)
		if err != nil {
			log.Warn("Dropping frame on conn %s: %v", connID, err)
			continue
		}

		switch f.kind {
		case frameOpen:
			var open openPayload
			if err := json.Unmarshal(f.data, &open); err != nil {
				return established, &internal.RealtimeError{Op: "handshake", URL: m.endpoint, Err: err}
			}
			liveness = open.liveness()
			if err := conn.WriteMessage(encodeConnect()); err != nil {
				return established, &internal.RealtimeError{Op: "handshake", URL: m.endpoint, Err: err}
			}
		case framePing:
			if err := conn.WriteMessage(encodePong()); err != nil {
				return established, &internal.RealtimeError{Op: "write", URL: m.endpoint, Err: err}
			}
		case frameConnect:
			established = true
			m.setState(StateConnected)
			log.Info("Connected (conn %s)", connID)
			if err := m.Emit(EventGetConnectedUsers, nil); err != nil {
				log.Warn("Failed to request presence: %v", err)
			}
		case frameConnectError:
			return established, fmt.Errorf("%w: %s", errRejected, rejectionReason(f.data))
		case frameDisconnect, frameClose:
			return established, io.EOF
		case frameEvent:
			if ctx.Err() != nil {
				return established, ctx.Err()
			}
			m.dispatch(f.event, f.payload())
		}
	}
}

func (m *Manager) dispatch(event string, payload json.RawMessage) {
	m.mu.Lock()
	h := m.handlers[event]
	m.mu.Unlock()
	if h == nil {
		log.Debug("No handler for event %q", event)
		return
	}
	h(payload)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.closed || m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	cb := m.opts.OnState
	m.mu.Unlock()

	log.Debug("State -> %s", s)
	if cb != nil {
		cb(s)
	}
}
