package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsServer is a test WebSocket server that records the frames and
// headers of every connection it accepts.
type wsServer struct {
	t   *testing.T
	srv *httptest.Server

	mu      sync.Mutex
	conns   []*wsConn
	headers []http.Header
}

type wsConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	frames  []map[string]any
}

func newWSServer(t *testing.T) *wsServer {
	s := &wsServer{t: t}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}

		c := &wsConn{ws: conn}
		s.mu.Lock()
		s.conns = append(s.conns, c)
		s.headers = append(s.headers, r.Header.Clone())
		s.mu.Unlock()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame map[string]any
			if err := json.Unmarshal(data, &frame); err != nil {
				t.Logf("non-JSON frame from client: %q", data)
				continue
			}
			s.mu.Lock()
			c.frames = append(c.frames, frame)
			s.mu.Unlock()
		}
	}))

	return s
}

func (s *wsServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *wsServer) connCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// waitConns blocks until the server has accepted n connections.
func (s *wsServer) waitConns(n int) {
	s.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.connCount() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.t.Fatalf("timeout waiting for %d connections, have %d", n, s.connCount())
}

// waitFrames blocks until connection conn has sent n frames, then
// returns a copy of them.
func (s *wsServer) waitFrames(conn, n int) []map[string]any {
	s.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := s.frames(conn); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.t.Fatalf("timeout waiting for %d frames on conn %d, have %d", n, conn, len(s.frames(conn)))
	return nil
}

// waitSubscribes blocks until connection conn has sent n subscribe
// frames (ping and auth traffic filtered out), then returns them.
func (s *wsServer) waitSubscribes(conn, n int) []map[string]any {
	s.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var subs []map[string]any
		for _, f := range s.frames(conn) {
			if frameMethod(f) == "subscribe" {
				subs = append(subs, f)
			}
		}
		if len(subs) >= n {
			return subs
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.t.Fatalf("timeout waiting for %d subscribe frames on conn %d", n, conn)
	return nil
}

func (s *wsServer) frames(conn int) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conn >= len(s.conns) {
		return nil
	}
	return append([]map[string]any(nil), s.conns[conn].frames...)
}

func (s *wsServer) header(conn int) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[conn]
}

// push writes a text frame to the client over connection conn.
func (s *wsServer) push(conn int, frame string) {
	s.t.Helper()
	s.mu.Lock()
	c := s.conns[conn]
	s.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		s.t.Logf("push failed: %v", err)
	}
}

// closeConn drops connection conn, simulating a transport failure.
func (s *wsServer) closeConn(conn int) {
	s.mu.Lock()
	c := s.conns[conn]
	s.mu.Unlock()
	c.ws.Close()
}

func (s *wsServer) close() {
	s.srv.Close()
}

// frameMethod extracts the method field of a recorded frame.
func frameMethod(frame map[string]any) string {
	m, _ := frame["method"].(string)
	return m
}

// frameChannel extracts params.channel of a recorded frame.
func frameChannel(frame map[string]any) string {
	params, _ := frame["params"].(map[string]any)
	ch, _ := params["channel"].(string)
	return ch
}

// testConfig returns a Config pointed at the server with timeouts
// suitable for tests.
func testConfig(s *wsServer) Config {
	cfg := DefaultConfig()
	cfg.URL = s.url()
	cfg.WriteTimeout = time.Second
	cfg.HandshakeTimeout = time.Second
	return cfg
}
