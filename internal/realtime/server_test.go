package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// fakeServer speaks just enough Engine.IO/Socket.IO v4 to drive the client
type fakeServer struct {
	srv *httptest.Server

	mu         sync.Mutex
	headers    []http.Header
	rejectWith string

	conns chan *serverConn
	// echo sends every received message event back to all connections
	echo bool
	live []*serverConn
}

type serverConn struct {
	ws       *websocket.Conn
	mu       sync.Mutex
	received chan string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{conns: make(chan *serverConn, 16)}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/socket.io/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("EIO") != "4" || r.URL.Query().Get("transport") != "websocket" {
			http.Error(w, "bad transport", http.StatusBadRequest)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		fs.mu.Lock()
		fs.headers = append(fs.headers, r.Header.Clone())
		reject := fs.rejectWith
		fs.mu.Unlock()

		sc := &serverConn{ws: ws, received: make(chan string, 64)}
		sc.send(`0{"sid":"eio-1","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`)

		_, data, err := ws.ReadMessage()
		if err != nil || string(data) != "40" {
			ws.Close()
			return
		}
		if reject != "" {
			sc.send(reject)
			return
		}
		sc.send(`40{"sid":"sio-1"}`)

		fs.mu.Lock()
		fs.live = append(fs.live, sc)
		fs.mu.Unlock()
		fs.conns <- sc

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				close(sc.received)
				return
			}
			msg := string(data)
			if fs.echoing() && len(msg) > 2 && msg[:2] == "42" {
				fs.broadcast(msg)
			}
			sc.received <- msg
		}
	})
	fs.srv = httptest.NewServer(mux)
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) URL() string {
	return fs.srv.URL
}

func (fs *fakeServer) setReject(msg string) {
	fs.setRejectFrame(fmt.Sprintf(`44{"message":%q}`, msg))
}

// setRejectFrame answers the namespace connect with frame verbatim
func (fs *fakeServer) setRejectFrame(frame string) {
	fs.mu.Lock()
	fs.rejectWith = frame
	fs.mu.Unlock()
}

func (fs *fakeServer) setEcho(on bool) {
	fs.mu.Lock()
	fs.echo = on
	fs.mu.Unlock()
}

func (fs *fakeServer) echoing() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.echo
}

func (fs *fakeServer) broadcast(frame string) {
	fs.mu.Lock()
	live := append([]*serverConn(nil), fs.live...)
	fs.mu.Unlock()
	for _, sc := range live {
		sc.send(frame)
	}
}

func (fs *fakeServer) header(t *testing.T, i int) http.Header {
	t.Helper()
	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.Greater(t, len(fs.headers), i, "no handshake #%d", i)
	return fs.headers[i]
}

// accept waits for the next acknowledged connection
func (fs *fakeServer) accept(t *testing.T) *serverConn {
	t.Helper()
	select {
	case sc := <-fs.conns:
		return sc
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a connection")
		return nil
	}
}

func (sc *serverConn) send(frame string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	_ = sc.ws.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (sc *serverConn) emit(event, payload string) {
	sc.send(fmt.Sprintf(`42[%q,%s]`, event, payload))
}

func (sc *serverConn) drop() {
	_ = sc.ws.Close()
}

// expect waits for the next frame from the client
func (sc *serverConn) expect(t *testing.T) string {
	t.Helper()
	select {
	case msg, ok := <-sc.received:
		require.True(t, ok, "connection closed")
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a client frame")
		return ""
	}
}

// countingDialer counts dials and can be made to fail
type countingDialer struct {
	inner Dialer
	dials int32
	fail  error
}

func (d *countingDialer) Dial(ctx context.Context, rawURL string, header http.Header) (Conn, error) {
	atomic.AddInt32(&d.dials, 1)
	if d.fail != nil {
		return nil, d.fail
	}
	return d.inner.Dial(ctx, rawURL, header)
}

func (d *countingDialer) count() int {
	return int(atomic.LoadInt32(&d.dials))
}

func newCountingDialer() *countingDialer {
	return &countingDialer{inner: WebsocketDialer{HandshakeTimeout: 2 * time.Second}}
}
