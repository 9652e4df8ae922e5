package protocol

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the version token sent in getProperties requests
const ProtocolVersion = "2.0"

// Message is the one-verb-per-message JSON envelope exchanged with an INDIGO
// server. Exactly one field is expected to be non-nil per message; a message
// with no recognized verb is treated as a protocol anomaly by the dispatcher.
type Message struct {
	GetProperties *GetProperties `json:"getProperties,omitempty"`

	DefTextVector   *DefVector `json:"defTextVector,omitempty"`
	DefNumberVector *DefVector `json:"defNumberVector,omitempty"`
	DefSwitchVector *DefVector `json:"defSwitchVector,omitempty"`
	DefLightVector  *DefVector `json:"defLightVector,omitempty"`
	DefBLOBVector   *DefVector `json:"defBLOBVector,omitempty"`

	SetTextVector   *SetVector `json:"setTextVector,omitempty"`
	SetNumberVector *SetVector `json:"setNumberVector,omitempty"`
	SetSwitchVector *SetVector `json:"setSwitchVector,omitempty"`
	SetLightVector  *SetVector `json:"setLightVector,omitempty"`
	SetBLOBVector   *SetVector `json:"setBLOBVector,omitempty"`

	NewTextVector   *NewVector `json:"newTextVector,omitempty"`
	NewNumberVector *NewVector `json:"newNumberVector,omitempty"`
	NewSwitchVector *NewVector `json:"newSwitchVector,omitempty"`

	DeleteProperty *DeleteProperty `json:"deleteProperty,omitempty"`
	Message        *ServerMessage  `json:"message,omitempty"`
}

// GetProperties asks the server to (re)enumerate its properties.
// Device and Name narrow the enumeration; both empty requests everything.
type GetProperties struct {
	Version string `json:"version"`
	Device  string `json:"device,omitempty"`
	Name    string `json:"name,omitempty"`
}

// DefItem is one item of a property definition. Min/Max/Step/Target/Format
// are only populated for number vectors.
type DefItem struct {
	Name   string  `json:"name"`
	Label  string  `json:"label,omitempty"`
	Value  any     `json:"value"`
	Target float64 `json:"target,omitempty"`
	Min    float64 `json:"min,omitempty"`
	Max    float64 `json:"max,omitempty"`
	Step   float64 `json:"step,omitempty"`
	Format string  `json:"format,omitempty"`
}

// DefVector is the payload of a defXxxVector verb: the full identity and
// initial values of one property.
type DefVector struct {
	Device  string    `json:"device"`
	Name    string    `json:"name"`
	Group   string    `json:"group,omitempty"`
	Label   string    `json:"label,omitempty"`
	Perm    string    `json:"perm,omitempty"`
	Rule    string    `json:"rule,omitempty"`
	State   string    `json:"state,omitempty"`
	Message string    `json:"message,omitempty"`
	Items   []DefItem `json:"items"`
}

// SetItem is one item of a property update. Target is a pointer so an update
// that omits it can be told apart from an explicit zero.
type SetItem struct {
	Name   string   `json:"name"`
	Value  any      `json:"value"`
	Target *float64 `json:"target,omitempty"`
}

// SetVector is the payload of a setXxxVector verb. Updates are partial: only
// the fields and items present are authoritative.
type SetVector struct {
	Device  string    `json:"device"`
	Name    string    `json:"name"`
	State   string    `json:"state,omitempty"`
	Message string    `json:"message,omitempty"`
	Items   []SetItem `json:"items"`
}

// NewItem is one item of an outbound change request
type NewItem struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// NewVector is the payload of a newXxxVector verb: a client request to apply
// new values to specific items of a writable property.
type NewVector struct {
	Device string    `json:"device"`
	Name   string    `json:"name"`
	Items  []NewItem `json:"items"`
}

// DeleteProperty is the payload of the deleteProperty verb. An empty Name
// means every property of the device is gone.
type DeleteProperty struct {
	Device  string `json:"device"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// ServerMessage is the payload of the message verb: free-form diagnostic text,
// optionally attributed to a device.
type ServerMessage struct {
	Device  string `json:"device,omitempty"`
	Message string `json:"message,omitempty"`
}

// Parse decodes a complete wire message into a Message envelope
func Parse(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse protocol message: %w", err)
	}
	return &msg, nil
}

// Encode serializes the envelope to its wire form
func (m *Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode protocol message: %w", err)
	}
	return data, nil
}

// Def returns the definition payload and its kind if the message carries a
// defXxxVector verb.
func (m *Message) Def() (*DefVector, Kind, bool) {
	switch {
	case m.DefTextVector != nil:
		return m.DefTextVector, KindText, true
	case m.DefNumberVector != nil:
		return m.DefNumberVector, KindNumber, true
	case m.DefSwitchVector != nil:
		return m.DefSwitchVector, KindSwitch, true
	case m.DefLightVector != nil:
		return m.DefLightVector, KindLight, true
	case m.DefBLOBVector != nil:
		return m.DefBLOBVector, KindBlob, true
	}
	return nil, 0, false
}

// Set returns the update payload and its kind if the message carries a
// setXxxVector verb.
func (m *Message) Set() (*SetVector, Kind, bool) {
	switch {
	case m.SetTextVector != nil:
		return m.SetTextVector, KindText, true
	case m.SetNumberVector != nil:
		return m.SetNumberVector, KindNumber, true
	case m.SetSwitchVector != nil:
		return m.SetSwitchVector, KindSwitch, true
	case m.SetLightVector != nil:
		return m.SetLightVector, KindLight, true
	case m.SetBLOBVector != nil:
		return m.SetBLOBVector, KindBlob, true
	}
	return nil, 0, false
}

// New returns the change payload and its kind if the message carries a
// newXxxVector verb.
func (m *Message) New() (*NewVector, Kind, bool) {
	switch {
	case m.NewTextVector != nil:
		return m.NewTextVector, KindText, true
	case m.NewNumberVector != nil:
		return m.NewNumberVector, KindNumber, true
	case m.NewSwitchVector != nil:
		return m.NewSwitchVector, KindSwitch, true
	}
	return nil, 0, false
}

// EnumerateMessage builds a getProperties request. Device and name narrow the
// request; both empty asks for a full property dump.
func EnumerateMessage(device, name string) *Message {
	return &Message{
		GetProperties: &GetProperties{
			Version: ProtocolVersion,
			Device:  device,
			Name:    name,
		},
	}
}

// ChangeMessage wraps a change vector in the envelope slot matching the
// property kind. Returns nil for kinds that are never client-writable
// (Light and BLOB have no newXxxVector verb).
func ChangeMessage(kind Kind, v *NewVector) *Message {
	switch kind {
	case KindText:
		return &Message{NewTextVector: v}
	case KindNumber:
		return &Message{NewNumberVector: v}
	case KindSwitch:
		return &Message{NewSwitchVector: v}
	}
	return nil
}
