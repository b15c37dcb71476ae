package hub

import "sync"

// room holds the local members of one document. Each room owns its own
// lock, so membership churn on one document never contends with another.
type room struct {
	mu      sync.RWMutex
	members map[string]*Client // connection id -> client
}

func newRoom() *room {
	return &room{members: make(map[string]*Client)}
}

func (r *room) add(c *Client) {
	r.mu.Lock()
	r.members[c.ID] = c
	r.mu.Unlock()
}

// remove deletes the connection and reports whether the room is now empty.
func (r *room) remove(connID string) bool {
	r.mu.Lock()
	delete(r.members, connID)
	empty := len(r.members) == 0
	r.mu.Unlock()
	return empty
}

func (r *room) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// forEach snapshots the member list and invokes fn outside the lock.
func (r *room) forEach(fn func(*Client)) {
	r.mu.RLock()
	snapshot := make([]*Client, 0, len(r.members))
	for _, c := range r.members {
		snapshot = append(snapshot, c)
	}
	r.mu.RUnlock()

	for _, c := range snapshot {
		fn(c)
	}
}
