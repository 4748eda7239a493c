package coordinator

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/padsync/backend/internal/metrics"
	"github.com/padsync/backend/internal/protocol"
	"github.com/padsync/backend/internal/room"
	"github.com/padsync/backend/internal/store"
)

// Member is one connected participant. Send must never block: transports
// enqueue and drop on backpressure so a slow client cannot stall event
// handling.
type Member interface {
	ID() string
	Send(msg protocol.ServerMessage)
}

// Roster is the transport layer's live membership view: broadcast groups
// keyed by room ID. The coordinator derives participant counts from it
// instead of keeping its own participant lists. Count must return 0 for a
// room with no membership record.
type Roster interface {
	Join(roomID string, m Member)
	Leave(roomID string, m Member)
	Count(roomID string) int
	Rooms(m Member) []string
	Broadcast(roomID string, msg protocol.ServerMessage)
}

// Coordinator owns room lifecycle: creation, joining, document mutation and
// disconnect-driven teardown. It is the only writer of the room store. All
// methods are invoked from the hub's single event loop, so each operation
// runs to completion before the next begins and last-writer-wins ordering is
// simply arrival order.
type Coordinator struct {
	store  store.Store
	roster Roster
	log    *logrus.Entry
}

func New(st store.Store, roster Roster, log *logrus.Logger) *Coordinator {
	return &Coordinator{
		store:  st,
		roster: roster,
		log:    log.WithField("component", "coordinator"),
	}
}

// HandleMessage parses one inbound frame and dispatches it. Malformed frames
// fail only that request: they are logged and dropped with no state change.
func (c *Coordinator) HandleMessage(ctx context.Context, m Member, raw []byte) {
	msg, err := protocol.ParseClientMessage(raw)
	if err != nil {
		c.log.WithField("conn", m.ID()).WithError(err).Warn("dropping malformed frame")
		return
	}

	switch msg.Event {
	case protocol.EventCreateRoom:
		mode := room.ModeCollaborative
		if msg.Mode != "" {
			mode, err = room.ParseMode(msg.Mode)
			if err != nil {
				c.log.WithField("conn", m.ID()).WithError(err).Warn("dropping createRoom")
				return
			}
		}
		c.CreateRoom(ctx, msg.RoomID, mode, m)

	case protocol.EventJoinRoom:
		c.JoinRoom(ctx, msg.RoomID, m)

	case protocol.EventDocumentUpdate:
		c.UpdateDocument(ctx, msg.RoomID, msg.Document, m)
	}
}

// CreateRoom inserts a new empty room owned by the requester and subscribes
// the requester to its broadcast group.
func (c *Coordinator) CreateRoom(ctx context.Context, roomID string, mode room.Mode, req Member) {
	r := room.New(roomID, req.ID(), mode)

	if err := c.store.Create(ctx, r); err != nil {
		if errors.Is(err, store.ErrRoomExists) {
			req.Send(protocol.Error(protocol.ErrMsgRoomExists))
			return
		}
		c.log.WithField("room", roomID).WithError(err).Error("create failed")
		return
	}

	c.roster.Join(roomID, req)
	req.Send(protocol.RoomCreated(roomID))
	c.roster.Broadcast(roomID, protocol.ParticipantUpdate(c.roster.Count(roomID)))

	metrics.RoomsCreated.Inc()
	c.log.WithFields(logrus.Fields{"room": roomID, "mode": mode}).Info("room created")
}

// JoinRoom subscribes the requester to an existing room and hands it the
// current document.
func (c *Coordinator) JoinRoom(ctx context.Context, roomID string, req Member) {
	r, err := c.store.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			req.Send(protocol.Error(protocol.ErrMsgRoomNotFound))
			return
		}
		c.log.WithField("room", roomID).WithError(err).Error("join failed")
		return
	}

	c.roster.Join(roomID, req)
	count := c.roster.Count(roomID)
	req.Send(protocol.RoomJoined(roomID, r.Document, count, room.CanEdit(r, req.ID())))
	c.roster.Broadcast(roomID, protocol.ParticipantUpdate(count))

	c.log.WithFields(logrus.Fields{"room": roomID, "conn": req.ID(), "participants": count}).Info("participant joined")
}

// UpdateDocument replaces the room's document and broadcasts it to every
// participant, including the sender. Updates denied by the access policy are
// dropped silently: the room owner stays the source of truth in readonly
// rooms and the rejected editor is not told apart from a lost frame.
func (c *Coordinator) UpdateDocument(ctx context.Context, roomID, document string, req Member) {
	r, err := c.store.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			req.Send(protocol.Error(protocol.ErrMsgRoomNotFound))
			return
		}
		c.log.WithField("room", roomID).WithError(err).Error("update lookup failed")
		return
	}

	if !room.CanEdit(r, req.ID()) {
		metrics.RejectedUpdates.Inc()
		c.log.WithFields(logrus.Fields{"room": roomID, "conn": req.ID()}).Debug("update rejected by policy")
		return
	}

	if err := c.store.SetDocument(ctx, roomID, document); err != nil {
		c.log.WithField("room", roomID).WithError(err).Error("update failed")
		return
	}

	c.roster.Broadcast(roomID, protocol.DocumentUpdate(document))
	metrics.DocumentUpdates.Inc()
}

// Disconnect removes the connection from every room it was subscribed to.
// A room observed empty afterwards is deleted; this is the sole
// garbage-collection path for rooms.
func (c *Coordinator) Disconnect(ctx context.Context, m Member) {
	for _, roomID := range c.roster.Rooms(m) {
		c.roster.Leave(roomID, m)

		count := c.roster.Count(roomID)
		if count == 0 {
			if err := c.store.Delete(ctx, roomID); err != nil {
				c.log.WithField("room", roomID).WithError(err).Error("delete failed")
				continue
			}
			metrics.RoomsDeleted.Inc()
			c.log.WithField("room", roomID).Info("room deleted, no participants remaining")
			continue
		}

		c.roster.Broadcast(roomID, protocol.ParticipantUpdate(count))
	}
}
