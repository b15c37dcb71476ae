package service

import (
	"context"

	"github.com/lumendocs/collab-service/internal/domain"
	"github.com/lumendocs/collab-service/internal/hub"
	"github.com/lumendocs/collab-service/internal/relay"
)

// CollabService orchestrates membership, presence, the relay and the
// document store for one instance.
type CollabService interface {
	// HandleJoin runs the join protocol. A connection joined elsewhere
	// implicitly leaves its previous document first.
	HandleJoin(ctx context.Context, c *hub.Client, docID string) error
	// HandleLeave removes the connection from the document.
	HandleLeave(ctx context.Context, c *hub.Client, docID string) error
	// HandleEdit persists full replacement content and fans the update out
	// to everyone except the sender.
	HandleEdit(ctx context.Context, c *hub.Client, docID, content string) error
	// HandleCursor and HandleTyping fan out ephemeral signals; no
	// persistence, no acknowledgment, no redelivery.
	HandleCursor(ctx context.Context, c *hub.Client, docID string, position int) error
	HandleTyping(ctx context.Context, c *hub.Client, docID string, isTyping bool) error
	// HandleDisconnect runs the leave path for a closing connection and
	// unregisters it. Safe when the connection never joined.
	HandleDisconnect(ctx context.Context, c *hub.Client)
	// HandleRelayed applies an envelope received from a peer instance to
	// local connections.
	HandleRelayed(env *relay.Envelope)
	// ActiveUsers returns the current presence set for a document.
	ActiveUsers(ctx context.Context, docID string) ([]domain.Identity, error)
}
