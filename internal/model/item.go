package model

import (
	"sync"

	"github.com/goastro/indigo/internal/protocol"
)

// Item is a single named value slot within a Property. The confirmed value is
// only ever written by inbound updates from the server; local edits are staged
// in a pending slot until the owning property emits a change message.
type Item struct {
	name  string
	label string
	kind  protocol.Kind

	switchValue bool
	textValue   string
	lightValue  string
	blobValue   string
	number      NumberValue

	pending any
	dirty   bool

	// Owning property; assigned once on first association
	prop *Property
}

// NumberValue carries the value and presentation metadata of a number item
type NumberValue struct {
	Value  float64
	Target float64
	Min    float64
	Max    float64
	Step   float64
	Format string
}

// newItem builds an item from a wire definition. The definition's value
// becomes the initial confirmed value.
func newItem(kind protocol.Kind, def protocol.DefItem) *Item {
	item := &Item{
		name:  def.Name,
		label: def.Label,
		kind:  kind,
	}

	switch kind {
	case protocol.KindSwitch:
		item.switchValue = protocol.AsBool(def.Value)
	case protocol.KindText:
		item.textValue = protocol.AsString(def.Value)
	case protocol.KindNumber:
		item.number = NumberValue{
			Value:  protocol.AsFloat(def.Value),
			Target: def.Target,
			Min:    def.Min,
			Max:    def.Max,
			Step:   def.Step,
			Format: def.Format,
		}
	case protocol.KindLight:
		item.lightValue = protocol.AsString(def.Value)
	case protocol.KindBlob:
		item.blobValue = protocol.AsString(def.Value)
	}

	return item
}

// attach associates the item with its owning property.
// The association is set-once: later calls are no-ops.
func (i *Item) attach(p *Property) {
	if i.prop == nil {
		i.prop = p
	}
}

// Name returns the item's identity within its property (case-sensitive)
func (i *Item) Name() string { return i.name }

// Label returns the item's display label
func (i *Item) Label() string { return i.label }

// Kind returns the item's value type
func (i *Item) Kind() protocol.Kind { return i.kind }

// Property returns the owning property, or nil if the item is unattached
func (i *Item) Property() *Property { return i.prop }

// Value returns the last confirmed value: bool for switches, float64 for
// numbers, string for text, light, and BLOB items.
func (i *Item) Value() any {
	switch i.kind {
	case protocol.KindSwitch:
		return i.switchValue
	case protocol.KindText:
		return i.textValue
	case protocol.KindNumber:
		return i.number.Value
	case protocol.KindLight:
		return i.lightValue
	case protocol.KindBlob:
		return i.blobValue
	}
	return nil
}

// Number returns the number value and metadata.
// Meaningful only for number items; zero value otherwise.
func (i *Item) Number() NumberValue { return i.number }

// IsDirty reports whether a locally staged value is awaiting emission
func (i *Item) IsDirty() bool { return i.dirty }

// PendingValue returns the locally staged value, or nil when clean
func (i *Item) PendingValue() any {
	if !i.dirty {
		return nil
	}
	return i.pending
}

// SetValue stages a new local value for the item and marks it dirty.
// The confirmed value is untouched and nothing is sent; emission happens when
// the owning property builds its next change message. No-op for kinds that are
// never client-writable.
func (i *Item) SetValue(v any) {
	if mu := i.clientMu(); mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	i.setPending(v)
}

// TakePendingChange consumes the staged value. Returns nil when the item is
// clean, so calling twice in a row yields one real change then nothing.
func (i *Item) TakePendingChange() *protocol.NewItem {
	if mu := i.clientMu(); mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	return i.takePending()
}

// setPending is the lock-free staging path; callers hold the client lock
func (i *Item) setPending(v any) {
	if !i.kind.Writable() {
		return
	}

	switch i.kind {
	case protocol.KindSwitch:
		i.pending = protocol.AsBool(v)
	case protocol.KindText:
		i.pending = protocol.AsString(v)
	case protocol.KindNumber:
		i.pending = protocol.AsFloat(v)
	}
	i.dirty = true
}

// takePending is the lock-free consuming path; callers hold the client lock
func (i *Item) takePending() *protocol.NewItem {
	if !i.dirty {
		return nil
	}
	i.dirty = false
	return &protocol.NewItem{Name: i.name, Value: i.pending}
}

// applyUpdate overwrites the confirmed value from an inbound update.
// The pending slot is deliberately left alone: a confirmed update does not
// cancel an in-flight local edit, reconciliation is the UI layer's problem.
func (i *Item) applyUpdate(incoming protocol.SetItem) {
	switch i.kind {
	case protocol.KindSwitch:
		i.switchValue = protocol.AsBool(incoming.Value)
	case protocol.KindText:
		i.textValue = protocol.AsString(incoming.Value)
	case protocol.KindNumber:
		i.number.Value = protocol.AsFloat(incoming.Value)
		if incoming.Target != nil {
			i.number.Target = *incoming.Target
		}
	case protocol.KindLight:
		i.lightValue = protocol.AsString(incoming.Value)
	case protocol.KindBlob:
		i.blobValue = protocol.AsString(incoming.Value)
	}
}

// clientMu walks the ownership chain to the client's model lock.
// Unattached entities (mostly in tests) operate lock-free.
func (i *Item) clientMu() *sync.Mutex {
	if i.prop == nil {
		return nil
	}
	return i.prop.clientMu()
}
