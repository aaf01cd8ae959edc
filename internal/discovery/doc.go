// Package discovery locates Moonraker servers on the local network over mDNS.
//
// Moonraker advertises itself as a "_moonraker._tcp" service when its zeroconf
// component is enabled. The scanner browses for that service type and turns
// each answer into an Instance carrying the address and TXT metadata.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	inst, err := scanner.FindFirst(ctx)
//	if err != nil {
//	    return err
//	}
//	cfg := moonraker.Config{Host: inst.IP, Port: inst.Port}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - The printer must be on the same network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
