package broadcast

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Viewer holds the single outbound connection to a host. Receiving is
// push-only: a viewer never originates navigation or history changes.
type Viewer struct {
	peerID string

	mu   sync.Mutex
	conn *websocket.Conn

	// OnState receives each inbound state payload.
	OnState func(p StatePayload)
	// OnDocument receives an inbound document blob for a collection.
	OnDocument func(collectionID string, blob []byte)
	// OnClose fires when the sole connection drops; the session must
	// revert to solo mode.
	OnClose func()
}

// NewViewer returns a viewer with a fresh peer id.
func NewViewer() *Viewer {
	return &Viewer{peerID: uuid.New().String()}
}

// PeerID returns this viewer's session id, sent in the hello message.
func (v *Viewer) PeerID() string { return v.peerID }

// Join dials the host at hostAddr (host:port) and starts the read loop.
func (v *Viewer) Join(hostAddr string) error {
	u := url.URL{Scheme: "ws", Host: hostAddr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial host %s: %w", hostAddr, err)
	}

	hello, err := helloMessage(v.peerID)
	if err != nil {
		conn.Close()
		return fmt.Errorf("encode hello: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		conn.Close()
		return fmt.Errorf("send hello: %w", err)
	}

	v.mu.Lock()
	v.conn = conn
	v.mu.Unlock()

	log.Printf("[sync] joined host %s as %s", hostAddr, v.peerID)
	go v.readLoop(conn)
	return nil
}

func (v *Viewer) readLoop(conn *websocket.Conn) {
	defer func() {
		v.mu.Lock()
		if v.conn == conn {
			v.conn = nil
		}
		v.mu.Unlock()
		conn.Close()
		if v.OnClose != nil {
			v.OnClose()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[sync] disconnected from host: %v", err)
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[sync] bad message from host: %v", err)
			continue
		}
		switch msg.Type {
		case TypeState:
			p, err := decodeState(msg)
			if err != nil {
				log.Printf("[sync] bad state payload: %v", err)
				continue
			}
			if v.OnState != nil {
				v.OnState(p)
			}
		case TypeDocument:
			blob, err := decodeDocument(msg)
			if err != nil {
				log.Printf("[sync] bad document payload: %v", err)
				continue
			}
			if v.OnDocument != nil {
				v.OnDocument(msg.CollectionID, blob)
			}
		default:
			// Unknown message types are ignored, never fatal.
			log.Printf("[sync] ignoring message type %q", msg.Type)
		}
	}
}

// Connected reports whether the connection to the host is open.
func (v *Viewer) Connected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conn != nil
}

// Disconnect drops the connection to the host, if any.
func (v *Viewer) Disconnect() {
	v.mu.Lock()
	conn := v.conn
	v.conn = nil
	v.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}
