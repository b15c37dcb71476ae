package notify

import (
	"context"
	"time"
)

// Event actions emitted to the notification pipeline.
const (
	ActionUserJoined     = "document.user_joined"
	ActionUserLeft       = "document.user_left"
	ActionDocumentEdited = "document.edited"
)

// Event is a notification pipeline record. Fire-and-forget: nothing in the
// realtime path waits on it or depends on its delivery.
type Event struct {
	Action     string    `json:"action"`
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Version    int64     `json:"version,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sink delivers events to the notification/audit pipeline.
type Sink interface {
	Emit(ctx context.Context, ev *Event) error
	Close() error
}

// NopSink discards events; used when the pipeline is not configured.
type NopSink struct{}

func (NopSink) Emit(ctx context.Context, ev *Event) error { return nil }
func (NopSink) Close() error                              { return nil }
