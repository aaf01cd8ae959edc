package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/neptune-screen/internal/logging"
)

const (
	// ServiceType is the mDNS service type Moonraker advertises
	ServiceType = "_moonraker._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultScanTimeout bounds a discovery run
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is used when an entry carries no port
	DefaultPort = 7125
)

// ErrNotFound is returned by FindFirst when nothing answered before the timeout.
var ErrNotFound = errors.New("no moonraker instance found")

// Scanner browses for Moonraker instances
type Scanner struct {
	// Timeout is the maximum time a scan runs
	Timeout time.Duration
}

// NewScanner creates a scanner with the default timeout
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan collects every instance that answers before the timeout or ctx ends.
func (s *Scanner) Scan(ctx context.Context) ([]*Instance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	collected := make(chan []*Instance, 1)

	go func() {
		var found []*Instance
		seen := make(map[string]bool)
		for entry := range entries {
			inst := parseServiceEntry(entry)
			if inst == nil || seen[inst.Address()] {
				continue
			}
			seen[inst.Address()] = true
			logging.Debug("Found moonraker instance", zap.String("instance", inst.String()))
			found = append(found, inst)
		}
		collected <- found
	}()

	if err := browse(ctx, entries); err != nil {
		return nil, err
	}

	<-ctx.Done()
	return <-collected, nil
}

// FindFirst returns the first instance that answers.
func (s *Scanner) FindFirst(ctx context.Context) (*Instance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	first := make(chan *Instance, 1)

	go func() {
		for entry := range entries {
			if inst := parseServiceEntry(entry); inst != nil {
				select {
				case first <- inst:
				default:
				}
				cancel()
			}
		}
	}()

	if err := browse(ctx, entries); err != nil {
		return nil, err
	}

	select {
	case inst := <-first:
		return inst, nil
	case <-ctx.Done():
		// The entry may have landed just before cancel.
		select {
		case inst := <-first:
			return inst, nil
		default:
		}
		return nil, fmt.Errorf("%w within %v", ErrNotFound, s.Timeout)
	}
}

// browse starts the resolver. zeroconf closes entries once ctx is done.
func browse(ctx context.Context, entries chan *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		close(entries)
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}
	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// parseServiceEntry converts a zeroconf entry into an Instance.
// Returns nil when the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Instance {
	if entry == nil {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		if key != "" {
			metadata[key] = value
		}
	}

	return &Instance{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
