package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantName string
		wantHost string
		wantPort int
	}{
		{
			name: "server with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "indigosky"},
				HostName:      "indigosky.local.",
				Port:          7624,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"version=2.0"},
			},
			wantName: "indigosky",
			wantHost: "192.168.4.16",
			wantPort: 7624,
		},
		{
			name: "server on a custom port",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "observatory"},
				HostName:      "obs-pi.local.",
				Port:          7625,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantName: "observatory",
			wantHost: "10.0.0.5",
			wantPort: 7625,
		},
		{
			name: "no port in the announcement defaults to 7624",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "indigosky"},
				HostName:      "indigosky.local.",
				Port:          0,
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantName: "indigosky",
			wantHost: "172.16.0.1",
			wantPort: DefaultPort,
		},
		{
			name: "no instance name",
			entry: &zeroconf.ServiceEntry{
				HostName: "indigosky.local.",
				Port:     7624,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "indigosky"},
				HostName:      "indigosky.local.",
				Port:          7624,
			},
			wantNil: true,
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "indigosky"},
				HostName:      "indigosky.local.",
				Port:          7624,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantName: "indigosky",
			wantHost: "fe80::1",
			wantPort: 7624,
		},
		{
			name: "both families prefers IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "indigosky"},
				HostName:      "indigosky.local.",
				Port:          7624,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantName: "indigosky",
			wantHost: "192.168.1.50",
			wantPort: 7624,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if endpoint != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", endpoint)
				}
				return
			}

			if endpoint == nil {
				t.Fatal("parseServiceEntry() = nil, want endpoint")
			}
			if endpoint.Name != tt.wantName {
				t.Errorf("endpoint.Name = %v, want %v", endpoint.Name, tt.wantName)
			}
			if endpoint.Host != tt.wantHost {
				t.Errorf("endpoint.Host = %v, want %v", endpoint.Host, tt.wantHost)
			}
			if endpoint.Port != tt.wantPort {
				t.Errorf("endpoint.Port = %v, want %v", endpoint.Port, tt.wantPort)
			}
			if endpoint.Hostname != tt.entry.HostName {
				t.Errorf("endpoint.Hostname = %v, want %v", endpoint.Hostname, tt.entry.HostName)
			}
			if time.Since(endpoint.DiscoveredAt) > time.Second {
				t.Errorf("endpoint.DiscoveredAt is not recent: %v", endpoint.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "indigosky"},
		HostName:      "indigosky.local.",
		Port:          7624,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
		Text:          []string{"version=2.0", "build=2.0-226", "flag"},
	}

	endpoint := scanner.parseServiceEntry(entry)
	if endpoint == nil {
		t.Fatal("parseServiceEntry() = nil, want endpoint")
	}

	expectedMetadata := map[string]string{
		"version": "2.0",
		"build":   "2.0-226",
		"flag":    "", // Key without value
	}

	if len(endpoint.Metadata) != len(expectedMetadata) {
		t.Errorf("endpoint.Metadata has %d entries, want %d", len(endpoint.Metadata), len(expectedMetadata))
	}
	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := endpoint.Metadata[key]; !ok {
			t.Errorf("endpoint.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("endpoint.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}

	if got := endpoint.GetMetadata("version"); got != "2.0" {
		t.Errorf("GetMetadata(version) = %q, want 2.0", got)
	}
	if got := endpoint.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}
}

func TestEndpoint_URL(t *testing.T) {
	endpoint := &Endpoint{Name: "indigosky", Host: "192.168.4.16", Port: 7624}

	if got := endpoint.URL(); got != "ws://192.168.4.16:7624" {
		t.Errorf("URL() = %v, want ws://192.168.4.16:7624", got)
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

// Note: Integration tests with live mDNS discovery require network access and
// should be run manually.
