package broadcast

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// peer is one viewer connection. The websocket allows a single writer at
// a time, and sends race here (deck fan-out, document push after import,
// the hello reply from the read loop), so every write goes through mu.
type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) write(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// Host accepts viewer connections and fans state and document messages
// out to every open one. A dropped viewer only shrinks the set; the
// host session is never torn down by a peer failure.
type Host struct {
	upgrader websocket.Upgrader
	server   *http.Server
	listener net.Listener

	mu    sync.RWMutex
	peers map[*peer]bool

	// OnPeerJoined is called after a viewer's hello, so the orchestrator
	// can push the current state and document to the late joiner.
	OnPeerJoined func(send func(data []byte))
	// OnPeerCount is called whenever the fan-out set changes size.
	OnPeerCount func(n int)
}

// NewHost returns a Host that is not yet listening.
func NewHost() *Host {
	return &Host{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers: make(map[*peer]bool),
	}
}

// Start listens on addr and serves the websocket endpoint until Close.
// It returns once the listener is bound; Addr is valid after that.
func (h *Host) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	h.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	h.server = &http.Server{Handler: mux}

	go func() {
		if err := h.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("[sync] host server stopped: %v", err)
		}
	}()
	log.Printf("[sync] hosting on %s", listener.Addr())
	return nil
}

// Addr returns the bound listen address.
func (h *Host) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// Port returns the bound TCP port, 0 before Start.
func (h *Host) Port() int {
	if h.listener == nil {
		return 0
	}
	if tcp, ok := h.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

func (h *Host) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[sync] upgrade failed: %v", err)
		return
	}
	p := &peer{conn: conn}
	h.add(p)
	go h.readLoop(p)
}

func (h *Host) add(p *peer) {
	h.mu.Lock()
	h.peers[p] = true
	n := len(h.peers)
	h.mu.Unlock()
	log.Printf("[sync] viewer connected from %s (%d open)", p.conn.RemoteAddr(), n)
	if h.OnPeerCount != nil {
		h.OnPeerCount(n)
	}
}

func (h *Host) remove(p *peer) {
	h.mu.Lock()
	delete(h.peers, p)
	n := len(h.peers)
	h.mu.Unlock()
	p.conn.Close()
	log.Printf("[sync] viewer %s disconnected (%d open)", p.conn.RemoteAddr(), n)
	if h.OnPeerCount != nil {
		h.OnPeerCount(n)
	}
}

func (h *Host) readLoop(p *peer) {
	defer h.remove(p)
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[sync] bad message from %s: %v", p.conn.RemoteAddr(), err)
			continue
		}
		switch msg.Type {
		case TypeHello:
			log.Printf("[sync] hello from peer %s", msg.PeerID)
			if h.OnPeerJoined != nil {
				h.OnPeerJoined(func(data []byte) {
					if err := p.write(data); err != nil {
						log.Printf("[sync] send to %s failed: %v", p.conn.RemoteAddr(), err)
					}
				})
			}
		default:
			// Viewers are read-only; anything else is ignored.
		}
	}
}

func (h *Host) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		if err := p.write(data); err != nil {
			log.Printf("[sync] broadcast to %s failed: %v", p.conn.RemoteAddr(), err)
		}
	}
}

// SendState fans a state payload out to every open viewer.
func (h *Host) SendState(p StatePayload) {
	data, err := stateMessage(p)
	if err != nil {
		log.Printf("[sync] encode state: %v", err)
		return
	}
	h.broadcast(data)
}

// SendDocument fans an imported document blob out to every open viewer.
func (h *Host) SendDocument(collectionID string, blob []byte) {
	data, err := documentMessage(collectionID, blob)
	if err != nil {
		log.Printf("[sync] encode document: %v", err)
		return
	}
	h.broadcast(data)
}

// StateTo encodes a state payload for a single peer's send func.
func StateTo(p StatePayload) ([]byte, error) {
	return stateMessage(p)
}

// DocumentTo encodes a document payload for a single peer's send func.
func DocumentTo(collectionID string, blob []byte) ([]byte, error) {
	return documentMessage(collectionID, blob)
}

// PeerCount returns the number of open viewer connections.
func (h *Host) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close releases every peer connection and stops the listener.
func (h *Host) Close() error {
	h.mu.Lock()
	for p := range h.peers {
		p.conn.Close()
	}
	h.peers = make(map[*peer]bool)
	h.mu.Unlock()
	if h.server != nil {
		return h.server.Close()
	}
	return nil
}
