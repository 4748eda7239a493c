package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/padsync/backend/internal/coordinator"
	"github.com/padsync/backend/internal/protocol"
	"github.com/padsync/backend/internal/ratelimit"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 1024 * 1024
	messagesPerSecond = 100
	messageBurst      = 200
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. Its identity token is what rooms
// record as creatorId, stable for the connection's lifetime.
type Client struct {
	id          string
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	rateLimiter *ratelimit.Limiter
	log         *logrus.Entry

	mu     sync.Mutex
	closed bool
}

var _ coordinator.Member = (*Client)(nil)

// ServeWs upgrades an HTTP request and starts the connection's pumps. Rooms
// are created and joined through protocol frames, not the URL.
func ServeWs(hub *Hub, log *logrus.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		id:          uuid.NewString(),
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 512),
		rateLimiter: ratelimit.NewLimiter(messagesPerSecond, messageBurst),
	}
	client.log = log.WithField("conn", client.id)

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) ID() string { return c.id }

// Send enqueues one outbound frame without blocking; frames to a backed-up
// client are dropped rather than stalling the event loop.
func (c *Client) Send(msg protocol.ServerMessage) {
	c.enqueue(msg.Encode())
}

func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("send buffer full, dropping frame")
	}
}

// close releases the send buffer exactly once. Called by the event loop
// after the connection's membership has been torn down.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) closeConn() {
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) readPump() {
	defer func() {
		// The event loop may already be gone during shutdown.
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	rateLimitWarnings := 0

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("websocket read error")
			}
			break
		}

		if !c.rateLimiter.Allow() {
			rateLimitWarnings++
			if rateLimitWarnings%100 == 1 {
				c.log.WithField("warnings", rateLimitWarnings).Warn("rate limit exceeded")
			}
			if rateLimitWarnings > 1000 {
				c.log.Warn("disconnecting for sustained rate limit violations")
				return
			}
			continue
		}

		c.hub.inbound <- inboundFrame{client: c, data: message}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
