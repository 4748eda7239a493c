package store

import (
	"context"
	"sync"
	"time"

	"github.com/padsync/backend/internal/room"
)

// Memory is the default process-local room store.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string]*room.Room)}
}

func (m *Memory) Create(_ context.Context, r *room.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[r.ID]; ok {
		return ErrRoomExists
	}
	clone := *r
	m.rooms[r.ID] = &clone
	return nil
}

// Get returns a copy so callers never observe later mutations.
func (m *Memory) Get(_ context.Context, id string) (*room.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *Memory) SetDocument(_ context.Context, id, document string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	r.Document = document
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rooms, id)
	return nil
}

func (m *Memory) List(_ context.Context) ([]*room.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]*room.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		clone := *r
		rooms = append(rooms, &clone)
	}
	return rooms, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms), nil
}

func (m *Memory) Close() error { return nil }
