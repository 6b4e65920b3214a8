package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trainerhub/poketrainer/internal"
)

type staticSessions struct {
	session *internal.Session
}

func (s staticSessions) Current() (*internal.Session, error) {
	if s.session == nil {
		return nil, internal.ErrLoginRequired
	}
	return s.session, nil
}

type chatRecorder struct {
	mu       sync.Mutex
	messages []internal.ChatMessage
	own      []bool
	presence [][]PresenceEntry
}

func (r *chatRecorder) options(url string, dialer Dialer) ChatOptions {
	return ChatOptions{
		URL:        url,
		Dialer:     dialer,
		RetryDelay: 20 * time.Millisecond,
		OnMessage: func(msg internal.ChatMessage, own bool) {
			r.mu.Lock()
			r.messages = append(r.messages, msg)
			r.own = append(r.own, own)
			r.mu.Unlock()
		},
		OnPresence: func(entries []PresenceEntry) {
			r.mu.Lock()
			r.presence = append(r.presence, entries)
			r.mu.Unlock()
		},
	}
}

func (r *chatRecorder) messageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *chatRecorder) presenceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.presence)
}

func TestChat_MountWithoutSession(t *testing.T) {
	dialer := newCountingDialer()
	rec := &chatRecorder{}
	chat := NewChat(staticSessions{}, rec.options("http://127.0.0.1:1", dialer))

	require.ErrorIs(t, chat.Mount(), internal.ErrLoginRequired)
	time.Sleep(20 * time.Millisecond)
	require.Zero(t, dialer.count())
	require.Nil(t, chat.Unmount(), "nothing to tear down")
}

func TestChat_MountWithEmptyToken(t *testing.T) {
	dialer := newCountingDialer()
	chat := NewChat(staticSessions{session: &internal.Session{User: ashUser, Token: "  "}}, (&chatRecorder{}).options("http://127.0.0.1:1", dialer))

	require.ErrorIs(t, chat.Mount(), internal.ErrLoginRequired)
	require.Zero(t, dialer.count())
}

func TestChat_SendAppearsOnceViaEcho(t *testing.T) {
	fs := newFakeServer(t)
	fs.setEcho(true)
	dialer := newCountingDialer()
	rec := &chatRecorder{}
	chat := NewChat(staticSessions{session: &internal.Session{User: ashUser, Token: "tok"}}, rec.options(fs.URL(), dialer))

	require.NoError(t, chat.Mount())
	defer chat.Unmount()
	sc := fs.accept(t)
	require.Equal(t, `42["get_connected_users"]`, sc.expect(t))
	require.Eventually(t, func() bool { return chat.Manager().State() == StateConnected }, 3*time.Second, 5*time.Millisecond)

	chat.Composer().SetText("hello")
	_, err := chat.Composer().Submit()
	require.NoError(t, err)
	require.Zero(t, chat.Stream().Len(), "not appended locally")

	require.Eventually(t, func() bool { return rec.messageCount() == 1 }, 3*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, chat.Stream().Len())

	msg := chat.Stream().Messages()[0]
	require.Equal(t, "hello", msg.Text)
	require.Equal(t, "Ash", msg.SenderName)
	rec.mu.Lock()
	require.True(t, rec.own[0], "own message is right-aligned")
	rec.mu.Unlock()
	require.Equal(t, 1, dialer.count(), "exactly one connection")
}

func TestChat_PresenceSnapshot(t *testing.T) {
	fs := newFakeServer(t)
	rec := &chatRecorder{}
	misty := &internal.Session{User: internal.User{ID: "u2", Name: "Misty"}, Token: "tok"}
	chat := NewChat(staticSessions{session: misty}, rec.options(fs.URL(), nil))

	require.NoError(t, chat.Mount())
	defer chat.Unmount()
	sc := fs.accept(t)

	sc.emit(EventConnectedUsers, `{"u1":"Ash","u2":"Misty"}`)
	sc.emit(EventUserDisconnected, `{"u2":"Misty"}`)
	sc.emit(EventUserConnected, `{"u2":"Misty","u3":"Brock"}`)
	require.Eventually(t, func() bool { return rec.presenceCount() == 3 }, 3*time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	first := rec.presence[0]
	rec.mu.Unlock()
	require.Equal(t, []PresenceEntry{
		{ID: "u1", Name: "Ash", Label: "Ash"},
		{ID: "u2", Name: "Misty", Label: "You", Self: true},
	}, first)

	require.Equal(t, []internal.ConnectedUser{{ID: "u2", Name: "Misty"}, {ID: "u3", Name: "Brock"}}, chat.Presence().Users())
}

func TestChat_OthersMessages(t *testing.T) {
	fs := newFakeServer(t)
	rec := &chatRecorder{}
	chat := NewChat(staticSessions{session: &internal.Session{User: ashUser, Token: "tok"}}, rec.options(fs.URL(), nil))

	require.NoError(t, chat.Mount())
	defer chat.Unmount()
	sc := fs.accept(t)
	sc.emit(EventMessage, `{"text":"hi Ash","timestamp":"3:05 PM","senderName":"Misty","senderId":"u2"}`)
	sc.emit(EventMessage, `{"bad":`) // dropped
	sc.emit(EventMessage, `{"text":"again","timestamp":"3:06 PM","senderName":"Misty","senderId":"u2"}`)

	require.Eventually(t, func() bool { return rec.messageCount() == 2 }, 3*time.Second, 5*time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, []bool{false, false}, rec.own)
	require.Equal(t, "again", rec.messages[1].Text)
}

func TestChat_UnmountOnce(t *testing.T) {
	fs := newFakeServer(t)
	rec := &chatRecorder{}
	chat := NewChat(staticSessions{session: &internal.Session{User: ashUser, Token: "tok"}}, rec.options(fs.URL(), nil))

	require.NoError(t, chat.Mount())
	sc := fs.accept(t)
	sc.emit(EventMessage, `{"text":"one","senderId":"u2","senderName":"Misty"}`)
	require.Eventually(t, func() bool { return rec.messageCount() == 1 }, 3*time.Second, 5*time.Millisecond)

	transcript := chat.Unmount()
	require.NotNil(t, transcript)
	require.Equal(t, "u1", transcript.UserID)
	require.Equal(t, "Ash", transcript.DisplayName)
	require.Len(t, transcript.Messages, 1)
	require.NotEmpty(t, transcript.ID)

	require.Same(t, transcript, chat.Unmount(), "second unmount is a no-op")
	require.Equal(t, StateClosed, chat.Manager().State())
	require.Zero(t, chat.Stream().Len(), "stream dropped")
	require.Zero(t, chat.Presence().Len(), "presence dropped")

	sc.emit(EventMessage, `{"text":"late"}`)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, rec.messageCount(), "no handling after unmount")

	require.Error(t, chat.Mount(), "a chat mounts once")
}
