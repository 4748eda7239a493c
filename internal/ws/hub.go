package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/padsync/backend/internal/coordinator"
	"github.com/padsync/backend/internal/metrics"
	"github.com/padsync/backend/internal/protocol"
)

// Hub owns the transport-level membership view (broadcast groups keyed by
// room ID) and runs the single event loop that serializes all coordinator
// work. Every inbound frame, connect and disconnect is handled to completion
// before the next one, which is what makes last-writer-wins well-defined.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame

	// Membership is kept both ways: byRoom answers broadcasts and counts,
	// byMember answers "which rooms did this connection occupy" on
	// disconnect without scanning every room.
	mu       sync.RWMutex
	byRoom   map[string]map[coordinator.Member]struct{}
	byMember map[coordinator.Member]map[string]struct{}

	clientCount int

	// Closed when Run exits so read pumps can abandon their unregister
	// handoff during shutdown.
	done chan struct{}

	log *logrus.Entry
}

type inboundFrame struct {
	client *Client
	data   []byte
}

var _ coordinator.Roster = (*Hub)(nil)

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame, 64),
		byRoom:     make(map[string]map[coordinator.Member]struct{}),
		byMember:   make(map[coordinator.Member]map[string]struct{}),
		done:       make(chan struct{}),
		log:        log.WithField("component", "hub"),
	}
}

// Run processes connection and frame events until ctx is cancelled. The
// coordinator is only ever invoked from this goroutine.
func (h *Hub) Run(ctx context.Context, coord *coordinator.Coordinator) {
	// Live connections, owned exclusively by this goroutine. Frames can sit
	// in the inbound buffer after their connection's unregister has been
	// handled; the set is what tells those stale frames apart.
	clients := make(map[*Client]struct{})

	for {
		select {
		case client := <-h.register:
			clients[client] = struct{}{}
			h.mu.Lock()
			h.clientCount++
			h.mu.Unlock()
			metrics.ActiveClients.Inc()
			h.log.WithField("conn", client.ID()).Debug("client connected")

		case client := <-h.unregister:
			if _, ok := clients[client]; !ok {
				continue
			}
			delete(clients, client)
			coord.Disconnect(ctx, client)
			h.mu.Lock()
			h.clientCount--
			h.mu.Unlock()
			client.close()
			metrics.ActiveClients.Dec()
			metrics.ActiveRooms.Set(float64(h.RoomCount()))
			h.log.WithField("conn", client.ID()).Debug("client disconnected")

		case frame := <-h.inbound:
			// A frame from an already-disconnected client must not reach
			// the coordinator: its membership was torn down and can never
			// be torn down again, so letting it join would leak the room.
			if _, ok := clients[frame.client]; !ok {
				h.log.WithField("conn", frame.client.ID()).Debug("dropping frame from disconnected client")
				continue
			}
			coord.HandleMessage(ctx, frame.client, frame.data)
			metrics.ActiveRooms.Set(float64(h.RoomCount()))

		case <-ctx.Done():
			for client := range clients {
				client.closeConn()
			}
			close(h.done)
			return
		}
	}
}

// Join subscribes a member to a room's broadcast group.
func (h *Hub) Join(roomID string, m coordinator.Member) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.byRoom[roomID]; !ok {
		h.byRoom[roomID] = make(map[coordinator.Member]struct{})
	}
	h.byRoom[roomID][m] = struct{}{}

	if _, ok := h.byMember[m]; !ok {
		h.byMember[m] = make(map[string]struct{})
	}
	h.byMember[m][roomID] = struct{}{}
}

// Leave removes a member from a room's broadcast group. The room's
// membership record disappears with its last member.
func (h *Hub) Leave(roomID string, m coordinator.Member) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.byRoom[roomID]; ok {
		delete(members, m)
		if len(members) == 0 {
			delete(h.byRoom, roomID)
		}
	}
	if rooms, ok := h.byMember[m]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(h.byMember, m)
		}
	}
}

// Count returns the live participant count for a room; a room with no
// membership record counts as zero.
func (h *Hub) Count(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byRoom[roomID])
}

// Rooms returns the rooms a member is currently subscribed to.
func (h *Hub) Rooms(m coordinator.Member) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]string, 0, len(h.byMember[m]))
	for roomID := range h.byMember[m] {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// Broadcast fans a message out to every member of a room, including the
// originator. Delivery is fire-and-forget: members enqueue without blocking
// and slow consumers are skipped.
func (h *Hub) Broadcast(roomID string, msg protocol.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("broadcast encode failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for m := range h.byRoom[roomID] {
		if c, ok := m.(*Client); ok {
			c.enqueue(data)
		} else {
			m.Send(msg)
		}
	}
}

// RoomCount returns the number of rooms with at least one participant.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byRoom)
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clientCount
}

// ActiveRooms maps each occupied room ID to its participant count.
func (h *Hub) ActiveRooms() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	counts := make(map[string]int, len(h.byRoom))
	for roomID, members := range h.byRoom {
		counts[roomID] = len(members)
	}
	return counts
}
