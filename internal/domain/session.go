package domain

import (
	"sync"
	"time"
)

// Identity is the authenticated user bound to a connection.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Session tracks the per-connection state: the identity bound at handshake
// (immutable for the connection lifetime) and the currently joined document.
// A connection holds at most one joined document at a time.
type Session struct {
	ConnectionID string
	Identity     Identity

	currentDocID string
	createdAt    time.Time
	lastActiveAt time.Time
	mu           sync.RWMutex
}

func NewSession(connectionID string, identity Identity) *Session {
	now := time.Now()
	return &Session{
		ConnectionID: connectionID,
		Identity:     identity,
		createdAt:    now,
		lastActiveAt: now,
	}
}

func (s *Session) JoinDocument(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDocID = docID
	s.lastActiveAt = time.Now()
}

func (s *Session) LeaveDocument() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDocID = ""
	s.lastActiveAt = time.Now()
}

// CurrentDocument returns the joined document id, or "" when unjoined.
func (s *Session) CurrentDocument() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDocID
}

// IsJoined reports whether the connection is joined to docID.
func (s *Session) IsJoined(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDocID != "" && s.currentDocID == docID
}

func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActiveAt = time.Now()
}
