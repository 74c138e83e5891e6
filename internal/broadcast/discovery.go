package broadcast

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
)

const serviceType = "_lessondeck._tcp"

// Advertise announces a host session on the LAN so viewers can find it
// without typing an address. The returned server must be shut down when
// the session ends.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(
		host,
		serviceType,
		"", // domain, ".local" by default
		"", // OS hostname
		port,
		nil, // auto-detect IPs
		[]string{"lessondeck"},
	)
	if err != nil {
		return nil, fmt.Errorf("create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mDNS server: %w", err)
	}
	return server, nil
}

// Browse looks for advertised host sessions and calls found with each
// discovered host:port. It returns once the lookup window closes; the
// entries channel is closed then so the drain goroutine exits with it.
func Browse(found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		drainEntries(entries, found)
	}()
	err := mdns.Lookup(serviceType, entries)
	close(entries)
	<-done
	return err
}

func drainEntries(entries <-chan *mdns.ServiceEntry, found func(addr string)) {
	for e := range entries {
		if e.AddrV4 == nil || e.Port == 0 {
			continue
		}
		found(fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port))
	}
}
