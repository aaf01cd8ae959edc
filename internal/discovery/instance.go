package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Instance is a Moonraker server found on the local network
type Instance struct {
	// Name is the advertised service instance name (e.g. "Moonraker-neptune")
	Name string

	// Hostname is the mDNS hostname (e.g. "neptune.local.")
	Hostname string

	// IP is the address to connect to, IPv4 when one is advertised
	IP string

	// Port is the Moonraker API port
	Port int

	// Metadata holds the TXT record key/value pairs
	Metadata map[string]string

	// DiscoveredAt is when the instance was seen
	DiscoveredAt time.Time
}

// String returns a human-readable representation of the instance
func (i *Instance) String() string {
	return fmt.Sprintf("%s (%s) at %s", i.Name, i.Hostname, i.Address())
}

// Address returns host:port suitable for dialing
func (i *Instance) Address() string {
	return net.JoinHostPort(i.IP, strconv.Itoa(i.Port))
}

// GetMetadata retrieves a TXT value by key, or "" if not present
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}
