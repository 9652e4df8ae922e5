package model

import (
	"go.uber.org/zap"

	"github.com/goastro/indigo/internal/logging"
	"github.com/goastro/indigo/internal/protocol"
)

// Device is a named endpoint (camera, mount, focuser...) exposing properties.
// Devices come into existence implicitly: the first define naming one creates
// it, and removing its last property removes it from the server.
type Device struct {
	name   string
	server *Server

	// Insertion order, matching the order the server defined them
	props  []*Property
	groups []*Group
}

// Group is a purely organizational, label-based bucket of a device's
// properties. Membership is derived from each property's group name; the
// group itself stores nothing else.
type Group struct {
	name   string
	device *Device
}

func newDevice(server *Server, name string) *Device {
	return &Device{name: name, server: server}
}

// Name returns the device name, unique within its server
func (d *Device) Name() string { return d.name }

// Server returns the owning server
func (d *Device) Server() *Server { return d.server }

// Properties returns the device's properties in definition order
func (d *Device) Properties() []*Property {
	props := make([]*Property, len(d.props))
	copy(props, d.props)
	return props
}

// Property looks up a property by exact name. Returns nil if absent.
func (d *Device) Property(name string) *Property {
	return d.findProperty(name)
}

// Groups returns the device's groups in creation order
func (d *Device) Groups() []*Group {
	groups := make([]*Group, len(d.groups))
	copy(groups, d.groups)
	return groups
}

// Group looks up a group by exact name. Returns nil if absent.
func (d *Device) Group(name string) *Group {
	return d.findGroup(name)
}

func (d *Device) findProperty(name string) *Property {
	for _, p := range d.props {
		if p.name == name {
			return p
		}
	}
	return nil
}

func (d *Device) findGroup(name string) *Group {
	for _, g := range d.groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

// defineProperty inserts a newly defined property. A duplicate define for an
// existing name is tolerated as a no-op, the protocol allows servers to
// re-send definitions. Creates the property's group on first use.
// Callers hold the client lock.
func (d *Device) defineProperty(p *Property) {
	if d.findProperty(p.name) != nil {
		logging.Debug("Duplicate define ignored",
			zap.String("device", d.name),
			zap.String("property", p.name),
		)
		return
	}

	p.device = d
	d.props = append(d.props, p)

	if d.findGroup(p.groupName) == nil {
		group := &Group{name: p.groupName, device: d}
		d.groups = append(d.groups, group)
		d.notify(func(l *Listener) func(*Group) { return l.GroupAdded }, group)
	}

	d.notifyProperty(func(l *Listener) func(*Property) { return l.PropertyAdded }, p)
}

// updateProperty merges an inbound update into the named property.
// An update for an unknown property is a recoverable protocol anomaly:
// logged, nothing mutated. Callers hold the client lock.
func (d *Device) updateProperty(set *protocol.SetVector) {
	p := d.findProperty(set.Name)
	if p == nil {
		logging.Warn("Update for unknown property ignored",
			zap.String("device", d.name),
			zap.String("property", set.Name),
		)
		return
	}

	p.mergeUpdate(set)
	d.notifyProperty(func(l *Listener) func(*Property) { return l.PropertyUpdated }, p)
}

// deleteProperty removes the named property, or every property when the name
// is empty (device-wide reset). Reports whether the device is now empty so the
// server can drop it. Callers hold the client lock.
func (d *Device) deleteProperty(del *protocol.DeleteProperty) (empty bool) {
	if del.Name == "" {
		// Whole-device reset: clear silently, the server fires one
		// device-removed notification for the lot
		d.props = nil
		d.groups = nil
		return true
	}

	p := d.findProperty(del.Name)
	if p == nil {
		logging.Warn("Delete for unknown property ignored",
			zap.String("device", d.name),
			zap.String("property", del.Name),
		)
		// Nothing was removed, so the device is not reported empty even if
		// it holds no properties (possible when an update created it)
		return false
	}

	for idx, existing := range d.props {
		if existing == p {
			d.props = append(d.props[:idx], d.props[idx+1:]...)
			break
		}
	}
	d.notifyProperty(func(l *Listener) func(*Property) { return l.PropertyRemoved }, p)

	// Drop the group when its last property goes
	group := d.findGroup(p.groupName)
	if group != nil && len(group.Properties()) == 0 {
		for idx, existing := range d.groups {
			if existing == group {
				d.groups = append(d.groups[:idx], d.groups[idx+1:]...)
				break
			}
		}
		d.notify(func(l *Listener) func(*Group) { return l.GroupRemoved }, group)
	}

	return len(d.props) == 0
}

// notifyProperty dispatches a property notification through the owning client
func (d *Device) notifyProperty(pick func(*Listener) func(*Property), p *Property) {
	if d.server == nil || d.server.client == nil {
		return
	}
	for _, l := range d.server.client.listeners {
		if fn := pick(l); fn != nil {
			fn(p)
		}
	}
}

// notify dispatches a group notification through the owning client
func (d *Device) notify(pick func(*Listener) func(*Group), g *Group) {
	if d.server == nil || d.server.client == nil {
		return
	}
	for _, l := range d.server.client.listeners {
		if fn := pick(l); fn != nil {
			fn(g)
		}
	}
}

// Name returns the group label
func (g *Group) Name() string { return g.name }

// Device returns the device the group belongs to
func (g *Group) Device() *Device { return g.device }

// Properties returns the subset of the device's properties whose group name
// matches, in definition order. The group stores no membership of its own.
func (g *Group) Properties() []*Property {
	var props []*Property
	for _, p := range g.device.props {
		if p.groupName == g.name {
			props = append(props, p)
		}
	}
	return props
}
