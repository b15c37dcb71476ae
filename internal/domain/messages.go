package domain

// WebSocket event names from client.
const (
	EventJoin   = "document:join"
	EventLeave  = "document:leave"
	EventEdit   = "document:edit"
	EventCursor = "cursor:position"
	EventTyping = "user:typing"
)

// WebSocket event names to client.
const (
	EventContent     = "document:content"
	EventUpdate      = "document:update"
	EventCursorMove  = "cursor:move"
	EventPresence    = "user:presence"
	EventTypingState = "user:typing"
	EventError       = "error"
)

// Error codes carried on error events.
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAccessDenied        = "ACCESS_DENIED"
	ErrCodeNoWriteAccess       = "NO_WRITE_ACCESS"
	ErrCodeNotJoined           = "NOT_JOINED"
	ErrCodePresenceUnavailable = "PRESENCE_UNAVAILABLE"
	ErrCodePersistFailed       = "PERSIST_FAILED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type JoinMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
}

type LeaveMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
}

// EditMessage carries full replacement content, not a diff.
type EditMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
	Content    string `json:"content"`
}

type CursorPositionMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
	Position   int    `json:"position"`
}

type TypingIndicatorMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
	IsTyping   bool   `json:"is_typing"`
}

// Server -> Client messages

// ContentMessage is sent once to a connection that just joined, so a new
// client always starts from server truth.
type ContentMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Version    int64  `json:"version"`
}

type UpdateMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
	Content    string `json:"content"`
	Version    int64  `json:"version"`
	EditorID   string `json:"editor_id"`
	EditorName string `json:"editor_name"`
}

type CursorMoveMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Position   int    `json:"position"`
}

type TypingStateMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	IsTyping   bool   `json:"is_typing"`
}

// PresenceMessage carries the complete current active-identity list for a
// document, never a delta, so a lost message cannot cause lasting drift.
type PresenceMessage struct {
	Type        string     `json:"type"`
	DocumentID  string     `json:"document_id"`
	ActiveUsers []Identity `json:"active_users"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    EventError,
		Code:    code,
		Message: message,
	}
}
