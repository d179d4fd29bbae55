package collab

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// Client is one websocket connection on the collaboration channel.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// enqueue hands a payload to the write pump without blocking the sender's
// event loop. Slow consumers lose events rather than stalling the room.
// A broadcaster may hold a stale room snapshot for a client that has
// since disconnected, so delivery after close is a silent drop, never a
// send on a closed channel.
func (c *Client) enqueue(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		log.Printf("collab: dropping event for slow client %s", c.ID)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump consumes events from the socket until it disconnects, then
// removes the client from all of its rooms.
func (c *Client) readPump() {
	defer func() {
		c.hub.Drop(c)
		c.close()
		c.conn.Close()
		log.Printf("collab: client disconnected %s", c.ID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handle(raw)
	}
}

// handle dispatches a single client event. Malformed payloads are logged
// and dropped; they never disconnect the socket.
func (c *Client) handle(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("collab: malformed event from %s: %v", c.ID, err)
		return
	}

	switch env.Event {
	case EventJoinRoom:
		room, ok := c.roomName(env.Data)
		if !ok {
			return
		}
		c.hub.Join(c, room)

	case EventLeaveRoom:
		room, ok := c.roomName(env.Data)
		if !ok {
			return
		}
		c.hub.Leave(c, room)

	case EventCodeChange:
		// Relayed to everyone else in the room; the editor that produced
		// the change must not receive its own echo.
		room, payload, ok := c.relay(EventReceiveCodeChange, env.Data)
		if !ok {
			return
		}
		c.hub.BroadcastExcept(room, c, payload)

	case EventSendMessage:
		// Chat echoes back to the sender's own connections as delivery
		// confirmation.
		room, payload, ok := c.relay(EventReceiveMessage, env.Data)
		if !ok {
			return
		}
		c.hub.Broadcast(room, payload)

	default:
		log.Printf("collab: unknown event %q from %s", env.Event, c.ID)
	}
}

func (c *Client) roomName(data json.RawMessage) (string, bool) {
	var room string
	if err := json.Unmarshal(data, &room); err != nil || room == "" {
		log.Printf("collab: invalid room name from %s", c.ID)
		return "", false
	}
	return room, true
}

// relay rewraps an incoming payload under the server->client event name,
// leaving the payload itself untouched.
func (c *Client) relay(event string, data json.RawMessage) (string, []byte, bool) {
	var target roomTarget
	if err := json.Unmarshal(data, &target); err != nil || target.Room == "" {
		log.Printf("collab: %s payload without room from %s", event, c.ID)
		return "", nil, false
	}

	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("collab: marshal %s relay: %v", event, err)
		return "", nil, false
	}
	return target.Room, payload, true
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
