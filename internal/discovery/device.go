package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Device represents a painter endpoint found on the network
type Device struct {
	// Instance is the mDNS instance name (e.g., "wave-sim studio")
	Instance string

	// ID is the instance id from the TXT record, stable for the process lifetime
	ID string

	// Hostname is the mDNS hostname (e.g., "studio.local.")
	Hostname string

	// IP is the address, IPv4 preferred
	IP string

	// Port is the HTTP port
	Port int

	// Path is the params path from the TXT record (default "/api")
	Path string

	// Metadata contains all TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s (%s) at %s", d.Instance, d.Hostname, net.JoinHostPort(d.IP, strconv.Itoa(d.Port)))
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return "http://" + net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// ParamsURL returns the URL of the params resource
func (d *Device) ParamsURL() string {
	path := d.Path
	if path == "" {
		path = DefaultPath
	}
	return d.BaseURL() + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
