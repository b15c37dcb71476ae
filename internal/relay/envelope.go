package relay

import (
	"context"
	"encoding/json"
	"time"
)

// Relay channel names. All instances publish and subscribe on the same
// three channels; delivery is at-most-once with no ordering across
// channels.
const (
	ChannelUpdates  = "document:updates"
	ChannelCursor   = "document:cursor"
	ChannelPresence = "document:presence"
)

// Message kinds carried in envelopes.
const (
	KindContentUpdate  = "content_update"
	KindCursorMove     = "cursor_move"
	KindTyping         = "typing"
	KindPresenceChange = "presence_change"
)

// Envelope is the wire format for cross-instance fan-out. Ephemeral,
// never persisted. The origin instance id lets a subscriber drop traffic
// its own instance already delivered locally; origin connection ids are
// never comparable across instances and are used for local exclusion only.
type Envelope struct {
	DocumentID         string          `json:"document_id"`
	Kind               string          `json:"kind"`
	Payload            json.RawMessage `json:"payload"`
	OriginConnectionID string          `json:"origin_connection_id"`
	OriginInstanceID   string          `json:"origin_instance_id"`
	Timestamp          time.Time       `json:"timestamp"`
}

// NewEnvelope wraps payload for publication.
func NewEnvelope(kind, docID, originConnID, originInstanceID string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		DocumentID:         docID,
		Kind:               kind,
		Payload:            data,
		OriginConnectionID: originConnID,
		OriginInstanceID:   originInstanceID,
		Timestamp:          time.Now().UTC(),
	}, nil
}

// UnmarshalPayload unmarshals the envelope payload into v.
func (e *Envelope) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Publisher publishes envelopes to a relay channel. Publishing is
// best-effort: the durable part of an operation has already happened by
// the time an envelope goes out.
type Publisher interface {
	Publish(ctx context.Context, channel string, env *Envelope) error
}
