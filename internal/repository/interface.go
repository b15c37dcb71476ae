package repository

import (
	"context"

	"github.com/lumendocs/collab-service/internal/domain"
)

// DocumentRepository is the collaboration core's view of the document
// store. The store serializes persistence per document: SetContent must
// return a version strictly greater than any previously returned for the
// same document.
type DocumentRepository interface {
	// GetByID returns the document snapshot, or domain.ErrDocumentNotFound.
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	// SetContent replaces content (last-writer-wins), atomically bumps the
	// version, records the editor and timestamp, and returns the new
	// version.
	SetContent(ctx context.Context, id, content, editorID string) (int64, error)
	// Create inserts a new document, generating its id.
	Create(ctx context.Context, doc *domain.Document) error
}
