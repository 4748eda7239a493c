package protocol

import (
	"encoding/json"
	"testing"
)

func TestParseClientMessage(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"event":"createRoom","roomId":"abc12","mode":"readonly"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if msg.Event != EventCreateRoom || msg.RoomID != "abc12" || msg.Mode != "readonly" {
		t.Errorf("Unexpected message: %+v", msg)
	}

	msg, err = ParseClientMessage([]byte(`{"event":"documentUpdate","roomId":"r","document":"hello\nworld"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if msg.Document != "hello\nworld" {
		t.Errorf("Document mangled: %q", msg.Document)
	}
}

func TestParseClientMessageRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"event":`},
		{"unknown event", `{"event":"selfDestruct","roomId":"r"}`},
		{"missing roomId", `{"event":"joinRoom"}`},
		{"empty roomId", `{"event":"joinRoom","roomId":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseClientMessage([]byte(tt.data)); err == nil {
				t.Errorf("Expected error for %s", tt.data)
			}
		})
	}
}

func TestServerMessageShapes(t *testing.T) {
	tests := []struct {
		name string
		msg  ServerMessage
		want string
	}{
		{
			"roomCreated",
			RoomCreated("abc12"),
			`{"event":"roomCreated","data":{"roomId":"abc12","isEditable":true}}`,
		},
		{
			"roomJoined",
			RoomJoined("abc12", "", 2, true),
			`{"event":"roomJoined","data":{"roomId":"abc12","document":"","participants":2,"isEditable":true}}`,
		},
		{
			"participantUpdate",
			ParticipantUpdate(3),
			`{"event":"participantUpdate","data":3}`,
		},
		{
			"documentUpdate",
			DocumentUpdate("hello"),
			`{"event":"documentUpdate","data":"hello"}`,
		},
		{
			"error",
			Error(ErrMsgRoomNotFound),
			`{"event":"error","data":"Room does not exist"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(tt.msg.Encode())
			if got != tt.want {
				t.Errorf("Encode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncodeIsValidJSON(t *testing.T) {
	var decoded map[string]any
	if err := json.Unmarshal(RoomJoined("r", "doc", 1, false).Encode(), &decoded); err != nil {
		t.Fatalf("Encode produced invalid JSON: %v", err)
	}
	if decoded["event"] != EventRoomJoined {
		t.Errorf("Unexpected event: %v", decoded["event"])
	}
}
