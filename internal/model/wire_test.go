package model

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goastro/indigo/internal/transport"
)

// fakeTransport is an in-memory wire: tests push inbound messages and inspect
// what the model sent.
type fakeTransport struct {
	mu   sync.Mutex
	sent [][]byte

	incoming  chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		incoming: make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

func (f *fakeTransport) Send(data []byte) error {
	select {
	case <-f.closed:
		return errors.New("transport closed")
	default:
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	f.sent = append(f.sent, buf)
	return nil
}

func (f *fakeTransport) Receive() ([]byte, error) {
	select {
	case data := <-f.incoming:
		return data, nil
	case <-f.closed:
		return nil, errors.New("transport closed")
	}
}

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

// push delivers one inbound wire message to the receive loop
func (f *fakeTransport) push(t *testing.T, wire string) {
	t.Helper()
	select {
	case f.incoming <- []byte(wire):
	case <-time.After(time.Second):
		t.Fatal("receive loop is not consuming messages")
	}
}

// Sent returns a snapshot of everything written to the wire
func (f *fakeTransport) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, data := range f.sent {
		out[i] = string(data)
	}
	return out
}

// newTestServer wires a client and server to a fake transport and connects
func newTestServer(t *testing.T) (*Client, *Server, *fakeTransport) {
	t.Helper()

	client := New()
	server := client.AddServer("test", "localhost", 7624)
	ft := newFakeTransport()
	server.dial = func(ctx context.Context, url string) (transport.Transport, error) {
		return ft, nil
	}

	if err := server.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(server.Disconnect)

	return client, server, ft
}

// waitFor polls a condition under the model lock until it holds or times out
func waitFor(t *testing.T, client *Client, desc string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ok := false
		client.View(func() { ok = cond() })
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

// Common wire fixtures

const defExposure = `{"defNumberVector":{"device":"CCD","name":"CCD_EXPOSURE",` +
	`"group":"Camera","label":"Start exposure","perm":"rw","state":"Idle",` +
	`"items":[{"name":"EXPOSURE","label":"Start exposure","value":0,"min":0,"max":3600,"step":1,"format":"%g"}]}}`

const defConnection = `{"defSwitchVector":{"device":"Mount","name":"CONNECTION",` +
	`"group":"Main","label":"Connection","perm":"rw","rule":"OneOfMany","state":"Ok",` +
	`"items":[{"name":"CONNECTED","label":"Connected","value":false},` +
	`{"name":"DISCONNECTED","label":"Disconnected","value":true}]}}`
