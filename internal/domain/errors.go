package domain

import "errors"

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrNoWriteAccess       = errors.New("no write access")
	ErrNotJoined           = errors.New("not joined to document")
	ErrPresenceUnavailable = errors.New("presence store unavailable")
	ErrPersistFailed       = errors.New("failed to persist content")
)

// ErrorCode maps a domain error to its wire-level error code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return ErrCodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return ErrCodeAccessDenied
	case errors.Is(err, ErrNoWriteAccess):
		return ErrCodeNoWriteAccess
	case errors.Is(err, ErrNotJoined):
		return ErrCodeNotJoined
	case errors.Is(err, ErrPresenceUnavailable):
		return ErrCodePresenceUnavailable
	case errors.Is(err, ErrPersistFailed):
		return ErrCodePersistFailed
	default:
		return ErrCodeInternalError
	}
}
