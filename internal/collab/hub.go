package collab

import (
	"log"
	"sync"
)

// Hub tracks which live connections are in which rooms and relays events
// between them. Rooms are not persisted objects: membership is derived
// entirely from active connections, so a room exists exactly as long as it
// has members.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	members map[*Client]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		members: make(map[*Client]map[string]struct{}),
	}
}

// Join adds a client to a room, creating the room on first join. No
// authorization is performed: any client naming a room joins it.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}

	if h.members[c] == nil {
		h.members[c] = make(map[string]struct{})
	}
	h.members[c][room] = struct{}{}

	log.Printf("collab: client %s joined room %s", c.ID, room)
}

// Leave removes a client from one room. The room disappears with its last
// member.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
	log.Printf("collab: client %s left room %s", c.ID, room)
}

func (h *Hub) leaveLocked(c *Client, room string) {
	if clients, ok := h.rooms[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	if rooms, ok := h.members[c]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(h.members, c)
		}
	}
}

// Drop removes a disconnected client from every room it had joined.
func (h *Hub) Drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.members[c] {
		h.leaveLocked(c, room)
	}
	delete(h.members, c)
}

// Broadcast delivers payload to every client in the room, sender included.
func (h *Hub) Broadcast(room string, payload []byte) {
	for _, c := range h.snapshot(room) {
		c.enqueue(payload)
	}
}

// BroadcastExcept delivers payload to every client in the room except the
// sender.
func (h *Hub) BroadcastExcept(room string, sender *Client, payload []byte) {
	for _, c := range h.snapshot(room) {
		if c == sender {
			continue
		}
		c.enqueue(payload)
	}
}

// snapshot copies the member set so delivery happens outside the lock.
func (h *Hub) snapshot(room string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		clients = append(clients, c)
	}
	return clients
}

// RoomSize reports the live member count of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
