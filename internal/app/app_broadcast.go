package app

import (
	"log"
	"sync"
	"time"

	"github.com/hashicorp/mdns"

	"lessondeck/internal/broadcast"
	"lessondeck/internal/service"
)

// ============================================================
// Broadcast session
// ============================================================

// session holds the mutually-exclusive host/viewer side of a running
// broadcast, plus the mdns advertisement when hosting.
type session struct {
	mu     sync.Mutex
	host   *broadcast.Host
	viewer *broadcast.Viewer
	mdns   *mdns.Server
}

func newSession() *session { return &session{} }

// StartHosting opens the websocket listener, advertises it on the LAN,
// and switches the deck to the host role. Late joiners immediately get
// the current state and, if present, the imported document.
func (a *App) StartHosting() (string, error) {
	a.session.mu.Lock()
	defer a.session.mu.Unlock()
	if a.session.host != nil || a.session.viewer != nil {
		return "", errAlreadyInSession
	}

	host := broadcast.NewHost()
	host.OnPeerCount = func(n int) {
		a.Emit(a.ctx, service.EventPeerCount, n)
	}
	host.OnPeerJoined = func(send func(data []byte)) {
		snap := a.deck.Snapshot()
		if data, err := broadcast.StateTo(snap); err == nil {
			send(data)
		}
		id := a.deck.CollectionID()
		if id == "" {
			return
		}
		blob, err := a.colls.LoadDocument(id)
		if err != nil || blob == nil {
			return
		}
		if data, err := broadcast.DocumentTo(id, blob); err == nil {
			send(data)
		}
	}

	if err := host.Start(a.cfg.Sync.ListenAddr); err != nil {
		return "", err
	}
	a.session.host = host

	if a.cfg.Sync.Advertise {
		server, err := broadcast.Advertise(host.Port())
		if err != nil {
			log.Printf("[app] mdns advertise failed: %v", err)
		} else {
			a.session.mdns = server
		}
	}

	a.deck.SetBroadcaster(host)
	a.deck.SetRole(a.ctx, broadcast.RoleHost)
	return host.Addr(), nil
}

// JoinSession connects to a host as a read-only viewer. A dropped
// connection reverts the session to solo mode.
func (a *App) JoinSession(hostAddr string) error {
	a.session.mu.Lock()
	defer a.session.mu.Unlock()
	if a.session.host != nil || a.session.viewer != nil {
		return errAlreadyInSession
	}

	viewer := broadcast.NewViewer()
	viewer.OnState = func(p broadcast.StatePayload) {
		a.deck.HandlePeerState(a.ctx, p)
	}
	viewer.OnDocument = func(collectionID string, blob []byte) {
		if err := a.colls.CacheDocument(a.ctx, collectionID, blob); err != nil {
			log.Printf("[app] cache received document: %v", err)
		}
	}
	viewer.OnClose = func() {
		a.Disconnect()
	}

	if err := viewer.Join(hostAddr); err != nil {
		return err
	}
	a.session.viewer = viewer
	a.deck.SetRole(a.ctx, broadcast.RoleViewer)
	return nil
}

// Disconnect tears down whichever session side is active and returns
// the deck to solo mode. Pending persistence writes are unaffected.
func (a *App) Disconnect() {
	a.session.mu.Lock()
	host := a.session.host
	viewer := a.session.viewer
	server := a.session.mdns
	a.session.host = nil
	a.session.viewer = nil
	a.session.mdns = nil
	a.session.mu.Unlock()

	if server != nil {
		server.Shutdown()
	}
	if host != nil {
		a.deck.SetBroadcaster(nil)
		if err := host.Close(); err != nil {
			log.Printf("[app] close host: %v", err)
		}
	}
	if viewer != nil {
		viewer.Disconnect()
	}
	if (host != nil || viewer != nil) && a.deck != nil {
		a.deck.SetRole(a.ctx, broadcast.RoleNone)
	}
}

// DiscoverHosts browses the LAN for advertised host sessions for up to
// the given duration and returns the addresses found.
func (a *App) DiscoverHosts(wait time.Duration) []string {
	var mu sync.Mutex
	var addrs []string
	err := broadcast.Browse(func(addr string) {
		mu.Lock()
		addrs = append(addrs, addr)
		mu.Unlock()
	})
	if err != nil {
		log.Printf("[app] mdns browse: %v", err)
	}
	time.Sleep(wait)
	mu.Lock()
	defer mu.Unlock()
	return append([]string(nil), addrs...)
}

// Role returns the session's broadcast role.
func (a *App) Role() string {
	return string(a.deck.Role())
}

// PeerCount returns the number of connected viewers, 0 when not hosting.
func (a *App) PeerCount() int {
	a.session.mu.Lock()
	host := a.session.host
	a.session.mu.Unlock()
	if host == nil {
		return 0
	}
	return host.PeerCount()
}
