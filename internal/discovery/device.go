package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Console is a running console found through its bridge advertisement
type Console struct {
	// Instance is the mDNS instance name (e.g., "powerpack-prod-7419")
	Instance string

	// Hostname is the advertising host (e.g., "laptop.local.")
	Hostname string

	// IP is the bridge address, IPv4 preferred
	IP string

	// Port is the bridge port
	Port int

	// Metadata contains the TXT record data.
	// Fields: "instance", "base_url", "version", "path"
	Metadata map[string]string

	// DiscoveredAt is when the console was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the console
func (c *Console) String() string {
	return fmt.Sprintf("Power Pack console %s (%s) at %s", c.Instance, c.Hostname, c.Addr())
}

// Addr returns host:port of the bridge
func (c *Console) Addr() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(c.Port))
}

// ShellURL returns the WebSocket URL a host shell connects to
func (c *Console) ShellURL() string {
	path := c.GetMetadata("path")
	if path == "" {
		path = "/shell"
	}
	return "ws://" + c.Addr() + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (c *Console) GetMetadata(key string) string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[key]
}
