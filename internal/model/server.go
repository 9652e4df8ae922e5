package model

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goastro/indigo/internal/logging"
	"github.com/goastro/indigo/internal/protocol"
	"github.com/goastro/indigo/internal/transport"
)

// ConnectionState tracks where a server sits in its connection lifecycle
type ConnectionState int

const (
	// StateDisconnected means no connection exists; the previous one (if
	// any) ended with a transport failure or peer close
	StateDisconnected ConnectionState = iota
	// StateConnecting means a dial is in flight
	StateConnecting
	// StateConnected means the receive loop is running
	StateConnected
	// StateAborted means the previous connection was closed deliberately
	StateAborted
)

// String returns a human-readable name for the connection state
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateAborted:
		return "Aborted"
	default:
		return "Disconnected"
	}
}

// ErrNotConnected is returned when a change message has no live connection
// to travel over
var ErrNotConnected = errors.New("server is not connected")

// Server mirrors one INDIGO server endpoint: it owns the devices the server
// exposes, runs the receive loop, and dispatches inbound protocol verbs.
// The mirrored model is rebuilt from scratch on every (re)connect via the
// enumerate-properties handshake.
type Server struct {
	name string
	host string
	port int

	client *Client

	// Guarded by client.mu
	state       ConnectionState
	devices     []*Device
	lastMessage string
	tr          transport.Transport
	closing     bool

	// Closed when the receive loop exits; recreated on each connect
	done chan struct{}

	// Replaceable for tests
	dial transport.Dialer
}

func newServer(client *Client, name, host string, port int) *Server {
	return &Server{
		name:   name,
		host:   host,
		port:   port,
		client: client,
		state:  StateDisconnected,
		dial:   transport.Dial,
	}
}

// Name returns the server's service name
func (s *Server) Name() string { return s.name }

// Host returns the server's hostname or IP
func (s *Server) Host() string { return s.host }

// Port returns the server's TCP port
func (s *Server) Port() int { return s.port }

// URL returns the server's WebSocket URL
func (s *Server) URL() string { return transport.URL(s.host, s.port) }

// State returns the current connection state
func (s *Server) State() ConnectionState { return s.state }

// LastMessage returns the most recent free-form message from the server
func (s *Server) LastMessage() string { return s.lastMessage }

// Devices returns the mirrored devices in the order the server introduced them
func (s *Server) Devices() []*Device {
	devices := make([]*Device, len(s.devices))
	copy(devices, s.devices)
	return devices
}

// Device looks up a mirrored device by exact name. Returns nil if absent.
func (s *Server) Device(name string) *Device {
	return s.findDevice(name)
}

func (s *Server) findDevice(name string) *Device {
	for _, d := range s.devices {
		if d.name == name {
			return d
		}
	}
	return nil
}

// Connect dials the server, sends the enumerate-properties handshake, and
// starts the receive loop. Returns an error if a connection already exists or
// the dial fails. Safe to call again after a disconnect; the model then
// repopulates from scratch.
func (s *Server) Connect(ctx context.Context) error {
	s.client.mu.Lock()
	if s.state == StateConnecting || s.state == StateConnected {
		state := s.state
		s.client.mu.Unlock()
		return fmt.Errorf("server %s is already %s", s.name, state)
	}
	s.state = StateConnecting
	s.closing = false
	s.client.mu.Unlock()

	tr, err := s.dial(ctx, s.URL())

	s.client.mu.Lock()
	if err != nil {
		if s.closing {
			s.state = StateAborted
		} else {
			s.state = StateDisconnected
		}
		s.closing = false
		s.client.mu.Unlock()
		return fmt.Errorf("failed to connect to %s: %w", s.URL(), err)
	}
	if s.closing || ctx.Err() != nil {
		// Aborted while the dial was in flight; the fresh transport is
		// discarded before the receive loop ever starts
		s.state = StateAborted
		s.closing = false
		s.client.mu.Unlock()
		_ = tr.Close()
		return fmt.Errorf("connection to %s aborted", s.URL())
	}

	done := make(chan struct{})
	s.tr = tr
	s.done = done
	s.state = StateConnected
	s.client.notifyServer(func(l *Listener) func(*Server) { return l.ServerConnected }, s)
	s.client.mu.Unlock()

	// Ask for the full property dump; everything the model knows flows from
	// the definitions this triggers
	if err := s.send(protocol.EnumerateMessage("", "")); err != nil {
		logging.Error("Failed to send enumeration request",
			zap.String("server", s.name),
			zap.Error(err),
		)
	}

	go s.receiveLoop(tr, done)
	return nil
}

// Disconnect deliberately closes the connection, or aborts a dial still in
// flight. Idempotent: disconnecting a server with no connection does nothing.
// When connected, blocks until the receive loop has exited and the model is
// cleared.
func (s *Server) Disconnect() {
	s.client.mu.Lock()
	switch s.state {
	case StateConnecting:
		// The dial has no transport to close yet; Connect checks this flag
		// when the dial returns and discards the connection
		s.closing = true
		s.client.mu.Unlock()
		return
	case StateConnected:
	default:
		s.client.mu.Unlock()
		return
	}
	s.closing = true
	tr := s.tr
	done := s.done
	s.client.mu.Unlock()

	// Closing the transport is the only cancellation primitive: it unblocks
	// the receive loop, which performs the teardown
	_ = tr.Close()
	<-done
}

// receiveLoop consumes wire messages until the transport fails or closes,
// then tears down the mirrored model
func (s *Server) receiveLoop(tr transport.Transport, done chan struct{}) {
	defer close(done)

	for {
		data, err := tr.Receive()
		if err != nil {
			s.handleDisconnect(err)
			return
		}
		s.dispatch(data)
	}
}

// dispatch parses one wire message and applies its verb to the model.
// Every failure here is a protocol anomaly: logged, dropped, never fatal to
// the connection.
func (s *Server) dispatch(data []byte) {
	msg, err := protocol.Parse(data)
	if err != nil {
		logging.Warn("Dropping malformed message",
			zap.String("server", s.name),
			zap.Error(err),
		)
		return
	}

	s.client.mu.Lock()
	defer s.client.mu.Unlock()

	if def, kind, ok := msg.Def(); ok {
		device := s.ensureDevice(def.Device)
		device.defineProperty(newProperty(kind, def))
		return
	}

	if set, _, ok := msg.Set(); ok {
		// Updates may race defines after a reconnect; tolerate an unseen
		// device the same way an unseen property is tolerated
		device := s.ensureDevice(set.Device)
		device.updateProperty(set)
		return
	}

	if msg.DeleteProperty != nil {
		s.applyDelete(msg.DeleteProperty)
		return
	}

	if msg.Message != nil {
		s.lastMessage = msg.Message.Message
		s.client.notifyMessage(s, msg.Message.Device, msg.Message.Message)
		return
	}

	logging.Warn("Unprocessed message with no recognized verb",
		zap.String("server", s.name),
		zap.ByteString("message", data),
	)
}

// ensureDevice returns the named device, creating and announcing it on first
// sight. Callers hold the client lock.
func (s *Server) ensureDevice(name string) *Device {
	if device := s.findDevice(name); device != nil {
		return device
	}

	device := newDevice(s, name)
	s.devices = append(s.devices, device)
	s.client.notifyDevice(func(l *Listener) func(*Device) { return l.DeviceAdded }, device)
	return device
}

// applyDelete routes a deleteProperty verb and drops the device when it ends
// up empty. Callers hold the client lock.
func (s *Server) applyDelete(del *protocol.DeleteProperty) {
	device := s.findDevice(del.Device)
	if device == nil {
		logging.Warn("Delete for unknown device ignored",
			zap.String("server", s.name),
			zap.String("device", del.Device),
		)
		return
	}

	if device.deleteProperty(del) {
		s.removeDevice(device)
	}
}

// removeDevice drops a device from the mirror. Callers hold the client lock.
func (s *Server) removeDevice(device *Device) {
	for idx, existing := range s.devices {
		if existing == device {
			s.devices = append(s.devices[:idx], s.devices[idx+1:]...)
			break
		}
	}
	s.client.notifyDevice(func(l *Listener) func(*Device) { return l.DeviceRemoved }, device)
}

// handleDisconnect clears the mirrored model after the receive loop exits.
// A deliberate abort and an unexpected failure differ only in logging and the
// terminal state; the teardown is identical.
func (s *Server) handleDisconnect(cause error) {
	s.client.mu.Lock()
	defer s.client.mu.Unlock()

	if s.closing {
		logging.Info("Server connection closed",
			zap.String("server", s.name),
		)
		s.state = StateAborted
	} else {
		logging.Warn("Server connection lost",
			zap.String("server", s.name),
			zap.Error(cause),
		)
		s.state = StateDisconnected
	}

	s.tr = nil
	s.devices = nil
	s.client.notifyServer(func(l *Listener) func(*Server) { return l.ServerDisconnected }, s)
}

// sendChange transmits a property change message. Blocks the caller until the
// write completes or fails.
func (s *Server) sendChange(msg *protocol.Message) error {
	return s.send(msg)
}

// send serializes and transmits a message over the current transport.
// The write itself happens outside the model lock.
func (s *Server) send(msg *protocol.Message) error {
	s.client.mu.Lock()
	tr := s.tr
	s.client.mu.Unlock()

	if tr == nil {
		return ErrNotConnected
	}

	data, err := msg.Encode()
	if err != nil {
		return err
	}
	return tr.Send(data)
}
