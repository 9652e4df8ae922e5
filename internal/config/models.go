package config

import (
	"sort"
	"time"
)

// Registry represents the entire user configuration file.
// This stores saved server endpoints and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Servers     map[string]*Server `yaml:"servers,omitempty"` // Keyed by server name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Server represents a saved INDIGO server endpoint.
// This is keyed by the server's name in the Registry.
type Server struct {
	Host        string    `yaml:"host"`                   // Hostname or IP address
	Port        int       `yaml:"port"`                   // Server port (typically 7624)
	AutoConnect bool      `yaml:"auto_connect,omitempty"` // Connect on startup
	LastSeen    time.Time `yaml:"last_seen,omitempty"`    // Last discovery/connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool `yaml:"auto_discover"`    // Enable mDNS discovery on startup
	DiscoverTimeout int  `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Servers: make(map[string]*Server),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 10,
		},
	}
}

// GetServer retrieves a saved server by name.
// Returns nil if the server doesn't exist in the registry.
func (r *Registry) GetServer(name string) *Server {
	return r.Servers[name]
}

// EnsureServer ensures a server entry exists in the registry.
// If the server doesn't exist, creates a new entry with default values.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureServer(name string) *Server {
	if r.Servers == nil {
		r.Servers = make(map[string]*Server)
	}

	if server, exists := r.Servers[name]; exists {
		return server
	}

	server := &Server{Port: 7624}
	r.Servers[name] = server
	return server
}

// SetServer saves or updates a server endpoint.
func (r *Registry) SetServer(name, host string, port int) *Server {
	server := r.EnsureServer(name)
	server.Host = host
	server.Port = port
	return server
}

// RemoveServer forgets a saved server. Removing an unknown name is a no-op.
func (r *Registry) RemoveServer(name string) {
	delete(r.Servers, name)
}

// UpdateServerLastSeen updates the last seen timestamp and address for a server.
func (r *Registry) UpdateServerLastSeen(name, host string) {
	server := r.EnsureServer(name)
	server.LastSeen = time.Now()
	server.Host = host
}

// SetAutoConnect marks whether a saved server is connected on startup.
func (r *Registry) SetAutoConnect(name string, autoConnect bool) {
	r.EnsureServer(name).AutoConnect = autoConnect
}

// ServerNames returns the saved server names in sorted order.
// Map iteration order is not stable, so listings go through this.
func (r *Registry) ServerNames() []string {
	names := make([]string, 0, len(r.Servers))
	for name := range r.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AutoConnectServers returns the names of servers marked for startup
// connection, in sorted order.
func (r *Registry) AutoConnectServers() []string {
	var names []string
	for _, name := range r.ServerNames() {
		if r.Servers[name].AutoConnect {
			names = append(names, name)
		}
	}
	return names
}
