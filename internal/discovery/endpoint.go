package discovery

import (
	"fmt"
	"time"

	"github.com/goastro/indigo/internal/transport"
)

// Endpoint represents a discovered INDIGO server on the network
type Endpoint struct {
	// Name is the advertised service instance name (e.g., "indigosky")
	Name string

	// Hostname is the mDNS hostname (e.g., "indigosky.local.")
	Hostname string

	// Host is the resolved address, IPv4 preferred
	Host string

	// Port is the server port (typically 7624)
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the endpoint was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the endpoint
func (e *Endpoint) String() string {
	return fmt.Sprintf("INDIGO server %s (%s) at %s:%d", e.Name, e.Hostname, e.Host, e.Port)
}

// URL returns the WebSocket URL for the endpoint
func (e *Endpoint) URL() string {
	return transport.URL(e.Host, e.Port)
}

// GetMetadata retrieves a TXT record value by key, or returns empty string if not found
func (e *Endpoint) GetMetadata(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}
