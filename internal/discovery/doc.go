// Package discovery provides mDNS-based discovery of INDIGO servers.
//
// INDIGO servers announce themselves over multicast DNS using the
// "_indigo._tcp" service type, with the service instance name doubling as the
// server's display name. This package browses for those announcements and
// turns them into connectable endpoints.
//
// # Usage Example
//
//	// Discover servers with a 10-second timeout
//	endpoints, err := discovery.Scan(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, endpoint := range endpoints {
//	    fmt.Printf("Found: %s at %s:%d\n",
//	        endpoint.Name, endpoint.Host, endpoint.Port)
//	}
//
// # Endpoint Information
//
// Each discovered endpoint includes:
//   - Name: the advertised service instance name
//   - Hostname: the server's mDNS hostname
//   - Host: resolved address, IPv4 preferred
//   - Port: server port (7624 unless the announcement says otherwise)
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
