package model

import (
	"sync"

	"go.uber.org/zap"

	"github.com/goastro/indigo/internal/logging"
	"github.com/goastro/indigo/internal/protocol"
)

// Property is an ordered, typed collection of items sharing one state and
// permission, identified by (device, name). Identity fields (name, label,
// permission, group, rule) are fixed at definition time; only state, message,
// and item values change on update.
type Property struct {
	name       string
	deviceName string
	label      string
	groupName  string
	kind       protocol.Kind
	perm       protocol.Permission
	rule       protocol.SwitchRule
	state      protocol.PropertyState
	message    string

	// Wire order, never reordered
	items []*Item

	// Owning device; assigned when the define verb inserts the property
	device *Device
}

// newProperty builds a property and its items from a wire definition
func newProperty(kind protocol.Kind, def *protocol.DefVector) *Property {
	p := &Property{
		name:       def.Name,
		deviceName: def.Device,
		label:      def.Label,
		groupName:  def.Group,
		kind:       kind,
		perm:       protocol.ParsePermission(def.Perm),
		rule:       protocol.ParseSwitchRule(def.Rule),
		state:      protocol.ParseState(def.State),
		message:    def.Message,
	}

	for _, itemDef := range def.Items {
		item := newItem(kind, itemDef)
		item.attach(p)
		p.items = append(p.items, item)
	}

	return p
}

// Name returns the property name, unique within its device
func (p *Property) Name() string { return p.name }

// DeviceName returns the owning device's name
func (p *Property) DeviceName() string { return p.deviceName }

// Label returns the display label
func (p *Property) Label() string { return p.label }

// GroupName returns the organizational group label
func (p *Property) GroupName() string { return p.groupName }

// Kind returns the property's value type
func (p *Property) Kind() protocol.Kind { return p.kind }

// Permission reports which side may change the property
func (p *Property) Permission() protocol.Permission { return p.perm }

// Rule returns the switch selection rule; meaningful for switch properties only
func (p *Property) Rule() protocol.SwitchRule { return p.rule }

// State returns the property's current protocol state
func (p *Property) State() protocol.PropertyState { return p.state }

// Message returns the server's last diagnostic message for this property
func (p *Property) Message() string { return p.message }

// Device returns the owning device, or nil before the property is defined
func (p *Property) Device() *Device { return p.device }

// Items returns the property's items in wire order
func (p *Property) Items() []*Item {
	items := make([]*Item, len(p.items))
	copy(items, p.items)
	return items
}

// Item looks up an item by exact, case-sensitive name.
// Returns nil if no item matches.
func (p *Property) Item(name string) *Item {
	return p.findItem(name)
}

func (p *Property) findItem(name string) *Item {
	for _, item := range p.items {
		if item.name == name {
			return item
		}
	}
	return nil
}

// SetSingleValue stages a value on one item and immediately requests the
// change. Silently does nothing when the item does not exist: optional items
// vary across device families and callers wanting strict validation check
// existence themselves.
func (p *Property) SetSingleValue(name string, value any) {
	msg, server := p.stageAndBuild(func() {
		item := p.findItem(name)
		if item == nil {
			logging.Debug("Set on unknown item ignored",
				zap.String("device", p.deviceName),
				zap.String("property", p.name),
				zap.String("item", name),
			)
			return
		}
		item.setPending(value)
	})
	sendChange(server, msg)
}

// SetExclusiveValue stages a switch selection. For OneOfMany and AtMostOne
// rules every sibling is staged off first, so the emitted change carries the
// whole selection state. The rule is a call-site convenience, not a
// property-level constraint check. No-op on non-switch properties.
func (p *Property) SetExclusiveValue(name string, on bool) {
	if p.kind != protocol.KindSwitch {
		return
	}

	msg, server := p.stageAndBuild(func() {
		if p.rule != protocol.RuleAnyOfMany {
			for _, item := range p.items {
				item.setPending(false)
			}
		}
		if item := p.findItem(name); item != nil {
			item.setPending(on)
		}
	})
	sendChange(server, msg)
}

// RequestChange collects every staged item value into one change message and
// hands it to the owning server for transmission. When nothing is staged, no
// message is built and nothing is sent.
func (p *Property) RequestChange() {
	msg, server := p.stageAndBuild(nil)
	sendChange(server, msg)
}

// stageAndBuild runs the staging mutation and builds the resulting change
// message under the client lock. The transport write happens at the call site,
// outside the lock.
func (p *Property) stageAndBuild(stage func()) (*protocol.Message, *Server) {
	if mu := p.clientMu(); mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}

	if stage != nil {
		stage()
	}
	return p.buildChange()
}

// buildChange consumes dirty items into a change message.
// Callers hold the client lock. Returns nil when no item is dirty or the
// property kind has no client-write verb.
func (p *Property) buildChange() (*protocol.Message, *Server) {
	var changes []protocol.NewItem
	for _, item := range p.items {
		if change := item.takePending(); change != nil {
			changes = append(changes, *change)
		}
	}

	if len(changes) == 0 {
		return nil, nil
	}

	msg := protocol.ChangeMessage(p.kind, &protocol.NewVector{
		Device: p.deviceName,
		Name:   p.name,
		Items:  changes,
	})
	if msg == nil {
		// Light/BLOB properties have no change path
		return nil, nil
	}

	if p.device == nil {
		return msg, nil
	}
	return msg, p.device.server
}

// sendChange transmits a built change message, if there is one and somewhere
// to send it.
func sendChange(server *Server, msg *protocol.Message) {
	if msg == nil || server == nil {
		return
	}
	if err := server.sendChange(msg); err != nil {
		logging.Error("Failed to send change message", zap.Error(err))
	}
}

// mergeUpdate applies an inbound update: state, message, and the values of
// every matching item. Items missing from the update keep their values
// (updates are partial), items unknown locally are ignored (only define
// introduces items). Callers hold the client lock.
func (p *Property) mergeUpdate(set *protocol.SetVector) {
	p.state = protocol.ParseState(set.State)
	p.message = set.Message

	for _, incoming := range set.Items {
		item := p.findItem(incoming.Name)
		if item == nil {
			logging.Debug("Update for unknown item ignored",
				zap.String("device", p.deviceName),
				zap.String("property", p.name),
				zap.String("item", incoming.Name),
			)
			continue
		}
		item.applyUpdate(incoming)
	}
}

// clientMu walks the ownership chain to the client's model lock
func (p *Property) clientMu() *sync.Mutex {
	if p.device == nil || p.device.server == nil || p.device.server.client == nil {
		return nil
	}
	return &p.device.server.client.mu
}
