package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/trainerhub/poketrainer/internal"
)

// Stream is the append-only list of chat messages in arrival order
type Stream struct {
	mu       sync.RWMutex
	messages []internal.ChatMessage
	onAppend func(msg internal.ChatMessage, index int)
}

// NewStream creates a stream. onAppend, if set, runs after every append so
// the view can render the newest message.
func NewStream(onAppend func(msg internal.ChatMessage, index int)) *Stream {
	return &Stream{onAppend: onAppend}
}

// Append adds msg at the end
func (s *Stream) Append(msg internal.ChatMessage) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	index := len(s.messages) - 1
	s.mu.Unlock()

	if s.onAppend != nil {
		s.onAppend(msg, index)
	}
}

// AppendPayload decodes a message event and appends it
func (s *Stream) AppendPayload(payload json.RawMessage) error {
	var msg internal.ChatMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("invalid message payload: %w", err)
	}
	s.Append(msg)
	return nil
}

// Messages returns a copy of all messages
func (s *Stream) Messages() []internal.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]internal.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages
func (s *Stream) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Reset drops every message
func (s *Stream) Reset() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}

// IsOwn reports whether msg was sent by selfID; own messages render right-aligned
func IsOwn(msg internal.ChatMessage, selfID string) bool {
	return selfID != "" && msg.SenderID == selfID
}
