package presence

import (
	"context"

	"github.com/lumendocs/collab-service/internal/domain"
)

// Member is one presence entry: an identity plus the connection it came
// from. Whether the connection id becomes part of the stored entry is a
// store policy (see per-connection mode).
type Member struct {
	Identity     domain.Identity
	ConnectionID string
}

// Store records which identities are active per document across all
// instances. Backed by shared set storage; local state never substitutes
// for it.
type Store interface {
	// Add records the member as active in the document.
	Add(ctx context.Context, docID string, m Member) error
	// Remove withdraws the member. Removal failures leave a stale entry
	// that the next full read reconciles; callers may treat them as
	// non-fatal.
	Remove(ctx context.Context, docID string, m Member) error
	// Members returns the complete active-identity list for the document,
	// deduplicated by user id. This is the cross-instance source of truth.
	Members(ctx context.Context, docID string) ([]domain.Identity, error)
	Close() error
}
