// Package protocol implements the JSON wire format of the INDIGO protocol.
//
// INDIGO servers and clients exchange JSON objects over a WebSocket, one verb
// per message. The verb is the single top-level key of the object:
//
//	{"defSwitchVector": {"device": "Mount", "name": "CONNECTION", ...}}
//	{"setNumberVector": {"device": "CCD", "name": "CCD_EXPOSURE", ...}}
//	{"deleteProperty": {"device": "CCD"}}
//	{"newSwitchVector": {"device": "Mount", "name": "CONNECTION", ...}}
//	{"getProperties": {"version": "2.0"}}
//
// # Message Directions
//
// Inbound (server to client):
//   - defTextVector / defNumberVector / defSwitchVector / defLightVector /
//     defBLOBVector: property definitions
//   - setTextVector / setNumberVector / setSwitchVector / setLightVector /
//     setBLOBVector: partial property updates
//   - deleteProperty: property (or whole-device) removal
//   - message: free-form diagnostic text from the server
//
// Outbound (client to server):
//   - getProperties: request a full property enumeration
//   - newTextVector / newNumberVector / newSwitchVector: value change requests
//
// Light and BLOB properties are never client-writable, so no newLightVector or
// newBLOBVector exists.
//
// # Lenient Enum Parsing
//
// Property state, permission, and switch rule arrive as wire strings. Parsing
// is deliberately lenient: an unrecognized string maps to the weakest value
// (Idle, ReadOnly, AnyOfMany) instead of producing an error. Servers from
// different vendors disagree on casing and extensions often enough that strict
// parsing would make the client brittle for no benefit.
//
// # Item Values
//
// Item values are decoded into `any`: JSON booleans for switches, numbers for
// number items, strings for text, light, and BLOB items. The AsBool, AsFloat,
// and AsString helpers coerce across these representations leniently.
package protocol
