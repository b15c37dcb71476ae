package hub

import (
	"encoding/json"
	"sync"

	"github.com/lumendocs/collab-service/pkg/log"
)

// Hub is the per-instance session registry plus the arena of document
// rooms. It only knows about connections on this instance; the distributed
// view of a room is reconstructed from the presence store by the engine.
type Hub struct {
	clientsMu sync.RWMutex
	clients   map[string]*Client // connection id -> client

	roomsMu sync.RWMutex
	rooms   map[string]*room // document id -> room
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]*room),
	}
}

// Register stores the connection binding for its lifetime. Each connection
// registers exactly once, after handshake authentication.
func (h *Hub) Register(c *Client) {
	h.clientsMu.Lock()
	h.clients[c.ID] = c
	h.clientsMu.Unlock()

	log.L().Debug().
		Str(log.FieldConnectionID, c.ID).
		Str(log.FieldUserID, c.Session.Identity.UserID).
		Msg("connection registered")
}

// Unregister removes the connection from the registry and every room.
// Safe to call for a connection that never joined a document.
func (h *Hub) Unregister(c *Client) {
	h.clientsMu.Lock()
	_, known := h.clients[c.ID]
	if known {
		delete(h.clients, c.ID)
	}
	h.clientsMu.Unlock()
	if !known {
		return
	}

	if docID := c.Session.CurrentDocument(); docID != "" {
		h.LeaveDocument(c, docID)
	}
	c.shutdown()

	log.L().Debug().Str(log.FieldConnectionID, c.ID).Msg("connection unregistered")
}

// JoinDocument adds the connection to the local membership of docID.
// The add happens under the arena lock: a concurrent leave that empties
// the room deletes it under the same lock, so a joiner can never land in
// a room that is no longer in the arena.
func (h *Hub) JoinDocument(c *Client, docID string) {
	h.roomsMu.Lock()
	r, ok := h.rooms[docID]
	if !ok {
		r = newRoom()
		h.rooms[docID] = r
	}
	r.add(c)
	h.roomsMu.Unlock()
}

// LeaveDocument removes the connection from the local membership of docID,
// dropping the room once it is empty.
func (h *Hub) LeaveDocument(c *Client, docID string) {
	h.roomsMu.Lock()
	r, ok := h.rooms[docID]
	h.roomsMu.Unlock()
	if !ok {
		return
	}

	if r.remove(c.ID) {
		h.roomsMu.Lock()
		// Re-check under the lock: a concurrent join may have refilled it.
		if r.size() == 0 {
			delete(h.rooms, docID)
		}
		h.roomsMu.Unlock()
	}
}

// LocalMemberCount returns how many local connections are in the document.
func (h *Hub) LocalMemberCount(docID string) int {
	h.roomsMu.RLock()
	r, ok := h.rooms[docID]
	h.roomsMu.RUnlock()
	if !ok {
		return 0
	}
	return r.size()
}

// Broadcast sends the message to every local connection in the document,
// excluding excludeConnID (pass "" to exclude nobody). Slow consumers are
// unregistered rather than blocking the fan-out.
func (h *Hub) Broadcast(docID string, message interface{}, excludeConnID string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	h.BroadcastRaw(docID, data, excludeConnID)
	return nil
}

// BroadcastRaw sends pre-marshalled bytes to local members of the
// document; relayed envelopes carry their payload already encoded.
func (h *Hub) BroadcastRaw(docID string, data []byte, excludeConnID string) {
	h.roomsMu.RLock()
	r, ok := h.rooms[docID]
	h.roomsMu.RUnlock()
	if !ok {
		return
	}

	r.forEach(func(c *Client) {
		if c.ID == excludeConnID {
			return
		}
		if !c.trySend(data) {
			go h.Unregister(c)
		}
	})
}
