package room

import (
	"fmt"
	"time"
)

// Mode is the access policy class of a room, fixed at creation.
type Mode string

const (
	ModeCollaborative Mode = "collaborative"
	ModeReadOnly      Mode = "readonly"
)

// ParseMode validates a client-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCollaborative, ModeReadOnly:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid room mode %q", s)
	}
}

// A shared-document collaboration session. The ID is an opaque token chosen
// by the creating client; the server assumes nothing about its alphabet or
// length beyond non-emptiness. Document holds the authoritative full text,
// replaced wholesale on every applied update (last writer wins).
type Room struct {
	ID        string
	Document  string
	CreatorID string
	Mode      Mode
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates an empty room owned by the given connection.
func New(id, creatorID string, mode Mode) *Room {
	now := time.Now().UTC()
	return &Room{
		ID:        id,
		CreatorID: creatorID,
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
