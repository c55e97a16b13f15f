package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// transport owns a single live WebSocket connection. Sends are
// serialized: the read loop and the keepalive sender may both call
// send concurrently.
type transport struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	writeMu sync.Mutex

	mu        sync.RWMutex
	connected bool
}

// dialTransport opens one WebSocket connection. If a token is present
// it is sent as a connection header so the server can authorize the
// socket before any subscribe traffic.
func dialTransport(ctx context.Context, url, token string, handshakeTimeout, writeTimeout time.Duration) (*transport, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	ws, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}

	return &transport{
		ws:           ws,
		writeTimeout: writeTimeout,
		connected:    true,
	}, nil
}

// send marshals v and writes it as a single text frame. Fails with
// ErrNotConnected once the transport has gone down.
func (t *transport) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	t.mu.RLock()
	connected := t.connected
	t.mu.RUnlock()
	if !connected {
		return ErrNotConnected
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.ws.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	if err := t.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		t.markDown()
		return err
	}
	return nil
}

// read blocks for the next frame. A read error marks the transport down.
func (t *transport) read() ([]byte, error) {
	_, data, err := t.ws.ReadMessage()
	if err != nil {
		t.markDown()
		return nil, err
	}
	return data, nil
}

func (t *transport) isConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

func (t *transport) markDown() {
	t.mu.Lock()
	t.connected = false
	t.mu.Unlock()
}

// close sends a close frame and tears down the connection.
func (t *transport) close() error {
	t.markDown()

	t.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return t.ws.Close()
}
