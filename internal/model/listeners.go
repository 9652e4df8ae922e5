package model

// Listener receives model change notifications. Every callback is optional;
// nil callbacks are skipped.
//
// Callbacks are invoked synchronously, on the goroutine performing the
// mutation, while the client's model lock is held. They must return quickly
// and must not re-enter the model (no Client-level queries, no property
// writes); entity accessors on the values passed in are safe. Re-entering the
// model from a callback is undefined behavior.
type Listener struct {
	// ServerConnected fires after the connection is established, before the
	// enumeration request goes out
	ServerConnected func(s *Server)

	// ServerDisconnected fires after the server's devices are cleared,
	// whether the disconnect was deliberate or a transport failure
	ServerDisconnected func(s *Server)

	// ServerMessage fires for the free-form message verb.
	// device may be empty for server-level messages.
	ServerMessage func(s *Server, device, text string)

	// DeviceAdded fires when a define or update names a device for the
	// first time
	DeviceAdded func(d *Device)

	// DeviceRemoved fires when a device loses its last property or is
	// reset wholesale
	DeviceRemoved func(d *Device)

	// GroupAdded fires when the first property naming a new group arrives
	GroupAdded func(g *Group)

	// GroupRemoved fires when a group's last property is removed
	GroupRemoved func(g *Group)

	// PropertyAdded fires on define
	PropertyAdded func(p *Property)

	// PropertyUpdated fires after an inbound update merges
	PropertyUpdated func(p *Property)

	// PropertyRemoved fires on delete (but not on device-wide resets or
	// disconnects, which collapse into one device/server notification)
	PropertyRemoved func(p *Property)
}
