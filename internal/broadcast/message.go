package broadcast

import (
	"encoding/json"

	"lessondeck/internal/domain"
)

// Role is the session's broadcast role. Exactly one per running session.
type Role string

const (
	RoleNone   Role = "none"
	RoleHost   Role = "host"
	RoleViewer Role = "viewer"
)

// MessageType tags a peer envelope. Consumers must ignore unknown types
// rather than fail: the wire format carries no version field.
type MessageType string

const (
	TypeHello    MessageType = "hello"
	TypeState    MessageType = "state"
	TypeDocument MessageType = "document"
)

// StatePayload is what a host pushes on navigation or edit: the current
// slide index, plus the drawing of one slide when an edit caused the
// push (nil on pure navigation).
type StatePayload struct {
	CurrentSlide int                  `json:"currentSlide"`
	Slide        int                  `json:"slide"`
	Drawing      *domain.DrawingModel `json:"drawing,omitempty"`
}

// Message is the JSON envelope exchanged between host and viewers.
// Payload is raw so each side decodes only the types it understands.
type Message struct {
	Type         MessageType     `json:"type"`
	PeerID       string          `json:"peerId,omitempty"`
	CollectionID string          `json:"collectionId,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

func helloMessage(peerID string) ([]byte, error) {
	return json.Marshal(Message{Type: TypeHello, PeerID: peerID})
}

func stateMessage(p StatePayload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: TypeState, Payload: raw})
}

func documentMessage(collectionID string, blob []byte) ([]byte, error) {
	raw, err := json.Marshal(blob) // base64 in JSON
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: TypeDocument, CollectionID: collectionID, Payload: raw})
}

func decodeState(m Message) (StatePayload, error) {
	var p StatePayload
	err := json.Unmarshal(m.Payload, &p)
	return p, err
}

func decodeDocument(m Message) ([]byte, error) {
	var blob []byte
	err := json.Unmarshal(m.Payload, &blob)
	return blob, err
}
