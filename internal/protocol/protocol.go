package protocol

import (
	"encoding/json"
	"fmt"
)

// Events sent by clients
const (
	EventCreateRoom     = "createRoom"
	EventJoinRoom       = "joinRoom"
	EventDocumentUpdate = "documentUpdate"
)

// Events sent by the server
const (
	EventRoomCreated       = "roomCreated"
	EventRoomJoined        = "roomJoined"
	EventParticipantUpdate = "participantUpdate"
	EventError             = "error"
)

// Error strings surfaced to clients
const (
	ErrMsgRoomExists   = "Room already exists"
	ErrMsgRoomNotFound = "Room does not exist"
)

// A single inbound frame from a client
type ClientMessage struct {
	Event    string `json:"event"`
	RoomID   string `json:"roomId"`
	Mode     string `json:"mode,omitempty"`
	Document string `json:"document,omitempty"`
}

// ParseClientMessage decodes and validates one inbound frame. The room ID is
// treated as an opaque token; only emptiness is rejected.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}

	switch msg.Event {
	case EventCreateRoom, EventJoinRoom, EventDocumentUpdate:
	default:
		return nil, fmt.Errorf("unknown event %q", msg.Event)
	}

	if msg.RoomID == "" {
		return nil, fmt.Errorf("%s: missing roomId", msg.Event)
	}

	return &msg, nil
}

// A single outbound frame to a client
type ServerMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type RoomCreatedData struct {
	RoomID     string `json:"roomId"`
	IsEditable bool   `json:"isEditable"`
}

type RoomJoinedData struct {
	RoomID       string `json:"roomId"`
	Document     string `json:"document"`
	Participants int    `json:"participants"`
	IsEditable   bool   `json:"isEditable"`
}

func RoomCreated(roomID string) ServerMessage {
	// The creator may always edit, regardless of mode.
	return ServerMessage{Event: EventRoomCreated, Data: RoomCreatedData{RoomID: roomID, IsEditable: true}}
}

func RoomJoined(roomID, document string, participants int, isEditable bool) ServerMessage {
	return ServerMessage{Event: EventRoomJoined, Data: RoomJoinedData{
		RoomID:       roomID,
		Document:     document,
		Participants: participants,
		IsEditable:   isEditable,
	}}
}

func ParticipantUpdate(count int) ServerMessage {
	return ServerMessage{Event: EventParticipantUpdate, Data: count}
}

func DocumentUpdate(document string) ServerMessage {
	return ServerMessage{Event: EventDocumentUpdate, Data: document}
}

func Error(message string) ServerMessage {
	return ServerMessage{Event: EventError, Data: message}
}

// Encode marshals an outbound frame for the wire.
func (m ServerMessage) Encode() []byte {
	data, err := json.Marshal(m)
	if err != nil {
		// All payload types above are marshalable; this is unreachable in practice.
		return []byte(`{"event":"error","data":"internal encoding error"}`)
	}
	return data
}
