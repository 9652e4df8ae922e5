package model

import "sync"

// Client is the top-level object surrounding code holds onto. It owns one
// Server mirror per endpoint and the single mutual-exclusion domain guarding
// the whole Server → Device → Property → Item tree.
type Client struct {
	mu        sync.Mutex
	servers   []*Server
	listeners []*Listener
}

// New creates an empty client
func New() *Client {
	return &Client{}
}

// AddServer registers a server endpoint. Identity is (name, host, port); a
// duplicate registration returns the existing server. The server is not
// connected; call Server.Connect to establish the mirror.
func (c *Client) AddServer(name, host string, port int) *Server {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.servers {
		if s.name == name && s.host == host && s.port == port {
			return s
		}
	}

	server := newServer(c, name, host, port)
	c.servers = append(c.servers, server)
	return server
}

// RemoveServer disconnects the server and forgets it. A server not owned by
// this client is ignored.
func (c *Client) RemoveServer(server *Server) {
	server.Disconnect()

	c.mu.Lock()
	defer c.mu.Unlock()
	for idx, existing := range c.servers {
		if existing == server {
			c.servers = append(c.servers[:idx], c.servers[idx+1:]...)
			return
		}
	}
}

// Servers returns the registered servers in registration order
func (c *Client) Servers() []*Server {
	c.mu.Lock()
	defer c.mu.Unlock()

	servers := make([]*Server, len(c.servers))
	copy(servers, c.servers)
	return servers
}

// Server looks up a registered server by service name.
// Returns nil if absent.
func (c *Client) Server(name string) *Server {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.servers {
		if s.name == name {
			return s
		}
	}
	return nil
}

// Device searches every server, in registration order, for a device by name
// and returns the first match. Device names are assumed unique across the
// whole client; a cross-server collision resolves to whichever server was
// registered first. Returns nil when no server knows the device.
func (c *Client) Device(name string) *Device {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.servers {
		if device := s.findDevice(name); device != nil {
			return device
		}
	}
	return nil
}

// AddListener registers a notification listener
func (c *Client) AddListener(l *Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// RemoveListener unregisters a previously added listener (by identity)
func (c *Client) RemoveListener(l *Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for idx, existing := range c.listeners {
		if existing == l {
			c.listeners = append(c.listeners[:idx], c.listeners[idx+1:]...)
			return
		}
	}
}

// View runs fn inside the model's exclusive region, so a compound read sees a
// consistent snapshot while receive loops are live. fn must use the entity
// accessors (Server.Devices, Device.Properties, ...), not Client-level
// queries, and must not mutate the model.
func (c *Client) View(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// notifyServer dispatches a server-level notification. Callers hold mu.
func (c *Client) notifyServer(pick func(*Listener) func(*Server), s *Server) {
	for _, l := range c.listeners {
		if fn := pick(l); fn != nil {
			fn(s)
		}
	}
}

// notifyDevice dispatches a device-level notification. Callers hold mu.
func (c *Client) notifyDevice(pick func(*Listener) func(*Device), d *Device) {
	for _, l := range c.listeners {
		if fn := pick(l); fn != nil {
			fn(d)
		}
	}
}

// notifyMessage dispatches a free-form server message. Callers hold mu.
func (c *Client) notifyMessage(s *Server, device, text string) {
	for _, l := range c.listeners {
		if l.ServerMessage != nil {
			l.ServerMessage(s, device, text)
		}
	}
}
