package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goastro/indigo/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to establish the WebSocket handshake
	handshakeTimeout = 10 * time.Second
)

// Transport is one established connection to an INDIGO server.
// Send and Receive carry complete wire messages; WebSocket framing and
// reassembly of fragmented messages happen below this interface.
type Transport interface {
	// Send transmits one complete wire message, blocking until the write
	// finishes or fails.
	Send(data []byte) error

	// Receive blocks until the next complete wire message arrives.
	// Returns an error when the connection closes or fails; after the first
	// error the transport is unusable.
	Receive() ([]byte, error)

	// Close tears down the connection and unblocks a pending Receive.
	// Idempotent and safe to call from any goroutine.
	Close() error
}

// Dialer establishes a Transport to the given WebSocket URL.
// The model layer takes a Dialer so tests can substitute an in-memory wire.
type Dialer func(ctx context.Context, url string) (Transport, error)

// URL builds the WebSocket URL for an INDIGO server endpoint
func URL(host string, port int) string {
	return fmt.Sprintf("ws://%s:%d", host, port)
}

// Dial connects to an INDIGO server over WebSocket.
// Accepts ws:// and wss:// URLs; a bare host:port is treated as ws://.
func Dial(ctx context.Context, url string) (Transport, error) {
	if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
		url = "ws://" + url
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	logging.LogConnection(url, "connected")

	return &wsTransport{conn: conn, url: url}, nil
}

// wsTransport adapts a gorilla WebSocket connection to the Transport interface
type wsTransport struct {
	conn *websocket.Conn
	url  string

	// gorilla permits one concurrent writer; Send serializes behind this
	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

func (t *wsTransport) Send(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	logging.LogMessage(t.url, "sent", data)
	return nil
}

func (t *wsTransport) Receive() ([]byte, error) {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		// INDIGO messages are JSON text; some servers mark frames binary.
		// Anything else (ping/pong handled by gorilla) is skipped.
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}

		logging.LogMessage(t.url, "received", data)
		return data, nil
	}
}

func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		// Best-effort close frame; the peer may already be gone
		deadline := time.Now().Add(writeWait)
		t.writeMu.Lock()
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		t.writeMu.Unlock()

		t.closeErr = t.conn.Close()
		logging.LogConnection(t.url, "closed")
	})
	return t.closeErr
}
