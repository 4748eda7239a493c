package store

import (
	"context"
	"errors"

	"github.com/padsync/backend/internal/room"
)

var (
	// ErrRoomExists is returned by Create when the ID is already live.
	ErrRoomExists = errors.New("room already exists")

	// ErrRoomNotFound is returned when no room with the given ID is live.
	ErrRoomNotFound = errors.New("room does not exist")
)

// Store is the mapping from room ID to room state. All mutation goes through
// the coordinator; deletion on emptiness is the only garbage collection.
// Backends other than the in-memory default exist so the coordinator's
// contract survives a move to a shared store across processes.
type Store interface {
	// Create inserts a new room, failing with ErrRoomExists if the ID is
	// taken. The existing room is left untouched on failure.
	Create(ctx context.Context, r *room.Room) error

	// Get returns a snapshot of the room, or ErrRoomNotFound.
	Get(ctx context.Context, id string) (*room.Room, error)

	// SetDocument replaces the room's document verbatim.
	SetDocument(ctx context.Context, id, document string) error

	// Delete removes the room. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns snapshots of all live rooms.
	List(ctx context.Context) ([]*room.Room, error)

	// Count returns the number of live rooms.
	Count(ctx context.Context) (int, error)

	Close() error
}
