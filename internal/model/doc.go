// Package model maintains a client-side, in-memory mirror of the state of one
// or more INDIGO servers.
//
// # Hierarchy
//
// A Client owns Servers (one per endpoint). Each connected Server owns the
// Devices the remote side exposes; a Device owns Properties (ordered, typed
// vectors of Items) and derives Groups from the properties' group labels:
//
//	Client → Server → Device → Group (derived)
//	                         → Property → Item
//
// # Protocol State Machine
//
// Inbound verbs drive the mirror:
//   - defXxxVector creates a property (and implicitly its device and group);
//     duplicate defines are tolerated as no-ops
//   - setXxxVector merges into an existing property: state, message, and item
//     values only, never identity fields (name, label, permission, group,
//     rule); updates for unknown properties are logged and dropped
//   - deleteProperty removes one property, or with an empty name resets the
//     whole device; a device losing its last property is removed
//   - message records free-form diagnostic text on the server
//
// Outbound, local edits are staged per item (SetValue marks the item dirty)
// and diffed into minimal newXxxVector messages: only dirty items are
// serialized, and a change request with nothing staged sends nothing.
//
// # Concurrency
//
// Each connected server runs one receive goroutine. All model state is
// guarded by a single mutex per Client: inbound dispatch and local mutation
// acquire it, transport writes happen outside it. Notification callbacks run
// synchronously under that lock; see Listener for the re-entrancy contract.
//
// Entity accessors (Server.Devices, Property.Item, Item.Value, ...) do not
// take the lock themselves. While receive loops are live, external readers
// get a consistent snapshot by reading inside Client.View or inside a
// notification callback. Client-level queries (Client.Device, Client.Servers)
// lock internally and must not be called from either.
//
// # Error Posture
//
// Protocol anomalies - unknown verbs, updates to unknown targets, duplicate
// defines, malformed JSON - are logged and dropped; they never abort the
// connection. Transport failures tear down the affected server's mirror
// (devices cleared, observers notified) and leave every other server alone.
// Caller-misuse paths (writing a nonexistent item) are silent no-ops.
package model
