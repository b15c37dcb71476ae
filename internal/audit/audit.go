package audit

import (
	"context"

	"github.com/lumendocs/collab-service/pkg/log"
)

// Audit actions for the collaboration core.
const (
	ActionAuth       = "collab.auth"
	ActionAuthFailed = "collab.auth_failed"
	ActionJoin       = "collab.join"
	ActionLeave      = "collab.leave"
	ActionEdit       = "collab.edit"
	ActionDisconnect = "collab.disconnect"
)

const fieldAction = "action"

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, userID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(fieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDocument emits an audit log scoped to a document.
func LogWithDocument(ctx context.Context, action, userID, docID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(fieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldDocumentID, docID).
		Msg(msg)
}
