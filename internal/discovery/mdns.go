package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type INDIGO servers advertise under
	ServiceType = "_indigo._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for server discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the well-known INDIGO server port
	DefaultPort = 7624
)

// Scanner handles mDNS server discovery
type Scanner struct {
	// Timeout is the maximum time to wait for discovery responses
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers all INDIGO servers on the local network.
// Returns the endpoints heard within the timeout window.
func (s *Scanner) Scan() ([]*Endpoint, error) {
	return s.ScanWithContext(context.Background())
}

// ScanWithContext discovers servers with a custom context
func (s *Scanner) ScanWithContext(ctx context.Context) ([]*Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	endpoints := make([]*Endpoint, 0)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Collect entries as they arrive; zeroconf closes the channel when the
	// context ends
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for entry := range entries {
			endpoint := s.parseServiceEntry(entry)
			if endpoint != nil {
				endpoints = append(endpoints, endpoint)
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-collected

	return endpoints, nil
}

// WaitForServer waits for a specific server by service name.
// Returns the endpoint or an error if not heard within the timeout.
func (s *Scanner) WaitForServer(name string) (*Endpoint, error) {
	return s.WaitForServerWithContext(context.Background(), name)
}

// WaitForServerWithContext waits for a specific server with a custom context
func (s *Scanner) WaitForServerWithContext(ctx context.Context, name string) (*Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	endpointChan := make(chan *Endpoint, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			endpoint := s.parseServiceEntry(entry)
			if endpoint != nil && endpoint.Name == name {
				endpointChan <- endpoint
				cancel()
				return
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case endpoint := <-endpointChan:
		return endpoint, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("server %s not found within timeout", name)
	}
}

// parseServiceEntry converts a zeroconf service entry to an Endpoint.
// Returns nil when the entry carries no usable address.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Endpoint {
	if entry.Instance == "" {
		return nil
	}

	// Prefer IPv4
	var host string
	for _, addr := range entry.AddrIPv4 {
		host = addr.String()
		break
	}
	if host == "" && len(entry.AddrIPv6) > 0 {
		host = entry.AddrIPv6[0].String()
	}
	if host == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Endpoint{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		Host:         host,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan is a convenience function to scan for servers with a custom timeout
func Scan(timeout time.Duration) ([]*Endpoint, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan()
}

// FindServer searches for a specific server by name with the default timeout
func FindServer(name string) (*Endpoint, error) {
	scanner := NewScanner()
	return scanner.WaitForServer(name)
}
