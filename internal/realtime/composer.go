package realtime

import (
	"strings"
	"sync"
	"time"

	"github.com/trainerhub/poketrainer/internal"
)

// TimestampLayout is the 12-hour clock used for chat timestamps
const TimestampLayout = "3:04 PM"

// Emitter sends events on the chat channel
type Emitter interface {
	Emit(event string, data interface{}) error
}

// Composer holds the message being typed
type Composer struct {
	mu      sync.Mutex
	text    strings.Builder
	emitter Emitter
	user    internal.User
	now     func() time.Time

	// kept is set when a failed emit left the text in place
	kept bool
	// continuing is set while a backslash-continued message is open
	continuing bool
}

// NewComposer creates a composer sending as user
func NewComposer(emitter Emitter, user internal.User) *Composer {
	return &Composer{emitter: emitter, user: user, now: time.Now}
}

// Text returns the pending composition
func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.String()
}

// SetText replaces the pending composition
func (c *Composer) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text.Reset()
	c.text.WriteString(text)
	c.kept = false
	c.continuing = false
}

// Continuing reports whether the last fed line ended in a backslash
func (c *Composer) Continuing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.continuing
}

// CanSubmit is false for empty or whitespace-only text
func (c *Composer) CanSubmit() bool {
	return strings.TrimSpace(c.Text()) != ""
}

// Submit emits the composition as a message and clears it. A whitespace-only
// composition emits nothing, is discarded and returns ErrEmptyMessage. On a
// failed emit the text is kept. The message is not added to any stream; the
// server echo is.
func (c *Composer) Submit() (internal.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitLocked()
}

func (c *Composer) submitLocked() (internal.ChatMessage, error) {
	c.continuing = false
	text := c.text.String()
	if strings.TrimSpace(text) == "" {
		c.text.Reset()
		c.kept = false
		return internal.ChatMessage{}, internal.ErrEmptyMessage
	}

	msg := internal.ChatMessage{
		Text:       text,
		Timestamp:  c.now().Format(TimestampLayout),
		SenderName: c.user.Name,
		SenderID:   c.user.ID,
	}
	if err := c.emitter.Emit(EventMessage, msg); err != nil {
		c.kept = true
		return internal.ChatMessage{}, err
	}
	c.text.Reset()
	c.kept = false
	return msg, nil
}

// Feed takes one line typed by the user. A line ending in a backslash continues
// the message on a new line; any other line submits. Text kept by a failed
// emit is retried by an empty line, and a non-empty line is added to it as a
// new line. submitted is false for continuations and for lines that left the
// composition empty.
func (c *Composer) Feed(line string) (msg internal.ChatMessage, submitted bool, err error) {
	line = strings.TrimRight(line, "\r\n")

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kept && strings.TrimSpace(line) != "" {
		c.text.WriteByte('\n')
		c.kept = false
	}
	if strings.HasSuffix(line, `\`) {
		c.text.WriteString(strings.TrimSuffix(line, `\`))
		c.text.WriteByte('\n')
		c.continuing = true
		return internal.ChatMessage{}, false, nil
	}
	if !c.kept {
		c.text.WriteString(line)
	}

	msg, err = c.submitLocked()
	if err != nil {
		return internal.ChatMessage{}, false, err
	}
	return msg, true, nil
}
