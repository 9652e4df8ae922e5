package protocol

import "fmt"

// Kind identifies the value type of a property vector and its items.
type Kind int

const (
	// KindText holds free-form string values
	KindText Kind = iota
	// KindNumber holds floating point values with min/max/step/format metadata
	KindNumber
	// KindSwitch holds boolean values governed by a selection rule
	KindSwitch
	// KindLight holds read-only state indicator values
	KindLight
	// KindBlob holds binary payload references (URLs)
	KindBlob
)

// String returns the human-readable name of the kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindNumber:
		return "Number"
	case KindSwitch:
		return "Switch"
	case KindLight:
		return "Light"
	case KindBlob:
		return "BLOB"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Writable reports whether a vector of this kind accepts client changes.
// Light and BLOB vectors are server-driven only.
func (k Kind) Writable() bool {
	return k == KindText || k == KindNumber || k == KindSwitch
}

// PropertyState signals the progress/health of the operation behind a property.
type PropertyState int

const (
	// StateIdle means the property is inactive
	StateIdle PropertyState = iota
	// StateBusy means the underlying operation is in progress
	StateBusy
	// StateAlert means the underlying operation failed or needs attention
	StateAlert
	// StateOk means the underlying operation completed successfully
	StateOk
)

// ParseState maps a wire state string to a PropertyState.
// Matching is case-sensitive; anything unrecognized maps to StateIdle.
func ParseState(s string) PropertyState {
	switch s {
	case "Busy":
		return StateBusy
	case "Alert":
		return StateAlert
	case "Ok":
		return StateOk
	default:
		return StateIdle
	}
}

// String returns the wire representation of the state
func (s PropertyState) String() string {
	switch s {
	case StateBusy:
		return "Busy"
	case StateAlert:
		return "Alert"
	case StateOk:
		return "Ok"
	default:
		return "Idle"
	}
}

// Permission describes which side may change a property's item values.
type Permission int

const (
	// PermReadOnly properties are only changed by the server
	PermReadOnly Permission = iota
	// PermWriteOnly properties accept client changes but report no values
	PermWriteOnly
	// PermReadWrite properties accept client changes and report values
	PermReadWrite
)

// ParsePermission maps a wire permission string to a Permission.
// Matching is case-sensitive; anything unrecognized maps to PermReadOnly.
func ParsePermission(s string) Permission {
	switch s {
	case "wo":
		return PermWriteOnly
	case "rw":
		return PermReadWrite
	default:
		return PermReadOnly
	}
}

// String returns the wire representation of the permission
func (p Permission) String() string {
	switch p {
	case PermWriteOnly:
		return "wo"
	case PermReadWrite:
		return "rw"
	default:
		return "ro"
	}
}

// SwitchRule governs mutual exclusivity of switch items within one property.
// The rule is advisory on the client side: it drives the exclusive-set helper
// but is never enforced as a constraint check.
type SwitchRule int

const (
	// RuleAnyOfMany allows any combination of items to be on
	RuleAnyOfMany SwitchRule = iota
	// RuleOneOfMany requires exactly one item to be on
	RuleOneOfMany
	// RuleAtMostOne allows zero or one item to be on
	RuleAtMostOne
)

// ParseSwitchRule maps a wire rule string to a SwitchRule.
// Matching is case-sensitive; anything unrecognized maps to RuleAnyOfMany.
func ParseSwitchRule(s string) SwitchRule {
	switch s {
	case "OneOfMany":
		return RuleOneOfMany
	case "AtMostOne":
		return RuleAtMostOne
	default:
		return RuleAnyOfMany
	}
}

// String returns the wire representation of the rule
func (r SwitchRule) String() string {
	switch r {
	case RuleOneOfMany:
		return "OneOfMany"
	case RuleAtMostOne:
		return "AtMostOne"
	default:
		return "AnyOfMany"
	}
}
