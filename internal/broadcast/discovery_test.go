package broadcast

import (
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestDrainEntriesExitsWhenChannelCloses(t *testing.T) {
	entries := make(chan *mdns.ServiceEntry, 8)
	entries <- &mdns.ServiceEntry{AddrV4: net.IPv4(192, 168, 1, 20), Port: 8787}
	entries <- &mdns.ServiceEntry{Port: 8787}                          // no address, skipped
	entries <- &mdns.ServiceEntry{AddrV4: net.IPv4(192, 168, 1, 21)}   // no port, skipped
	entries <- &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 5), Port: 9000}
	close(entries)

	var addrs []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		drainEntries(entries, func(addr string) { addrs = append(addrs, addr) })
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drain must return once the entries channel closes")
	}
	if len(addrs) != 2 {
		t.Fatalf("got %d addresses, want 2: %v", len(addrs), addrs)
	}
	if addrs[0] != "192.168.1.20:8787" || addrs[1] != "10.0.0.5:9000" {
		t.Fatalf("unexpected addresses: %v", addrs)
	}
}
