package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// chatServer is a minimal Socket.IO v4 peer: it acks the namespace, answers
// presence requests and echoes message events to every live connection
type chatServer struct {
	srv *httptest.Server

	mu     sync.Mutex
	live   []*websocket.Conn
	frames []string
	conns  int

	// hold makes later handshakes wait for release and then fail
	hold        bool
	release     chan struct{}
	releaseOnce sync.Once
}

func newChatServer(t *testing.T) *chatServer {
	t.Helper()
	cs := &chatServer{release: make(chan struct{})}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/socket.io/", func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		hold := cs.hold
		cs.mu.Unlock()
		if hold {
			<-cs.release
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		var wmu sync.Mutex
		send := func(frame string) {
			wmu.Lock()
			defer wmu.Unlock()
			_ = ws.WriteMessage(websocket.TextMessage, []byte(frame))
		}

		send(`0{"sid":"eio-1","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`)
		if _, data, err := ws.ReadMessage(); err != nil || string(data) != "40" {
			return
		}
		send(`40{"sid":"sio-1"}`)

		cs.mu.Lock()
		cs.live = append(cs.live, ws)
		cs.conns++
		cs.mu.Unlock()

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			frame := string(data)
			if !strings.HasPrefix(frame, "42") {
				continue
			}
			cs.mu.Lock()
			cs.frames = append(cs.frames, frame)
			cs.mu.Unlock()

			switch {
			case strings.HasPrefix(frame, `42["get_connected_users"`):
				send(`42["connected_users_list",{"u1":"Ash","u2":"Misty"}]`)
			case strings.HasPrefix(frame, `42["message"`):
				send(frame)
			}
		}
	})
	cs.srv = httptest.NewServer(mux)
	t.Cleanup(func() {
		cs.releaseOnce.Do(func() { close(cs.release) })
		cs.srv.Close()
	})
	return cs
}

func (cs *chatServer) URL() string {
	return cs.srv.URL
}

func (cs *chatServer) connections() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.conns
}

// received returns every event frame the server got
func (cs *chatServer) received() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]string(nil), cs.frames...)
}

// dropAndHold closes live connections; reconnects wait until releaseAll
func (cs *chatServer) dropAndHold() {
	cs.mu.Lock()
	cs.hold = true
	live := cs.live
	cs.live = nil
	cs.mu.Unlock()
	for _, ws := range live {
		_ = ws.Close()
	}
}

func (cs *chatServer) releaseAll() {
	cs.releaseOnce.Do(func() { close(cs.release) })
}

// lockedBuffer is written by the socket reader and read by the test
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// waitFor polls cond until it holds or fails the test after a few seconds
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
