package service

import (
	"context"
	"errors"
	"time"

	"github.com/lumendocs/collab-service/internal/audit"
	"github.com/lumendocs/collab-service/internal/domain"
	"github.com/lumendocs/collab-service/internal/hub"
	"github.com/lumendocs/collab-service/internal/notify"
	"github.com/lumendocs/collab-service/internal/presence"
	"github.com/lumendocs/collab-service/internal/relay"
	"github.com/lumendocs/collab-service/internal/repository"
	"github.com/lumendocs/collab-service/pkg/log"
)

type collabService struct {
	hub        *hub.Hub
	repo       repository.DocumentRepository
	presence   presence.Store
	relay      relay.Publisher
	sink       notify.Sink
	instanceID string
}

func NewCollabService(
	h *hub.Hub,
	repo repository.DocumentRepository,
	pres presence.Store,
	pub relay.Publisher,
	sink notify.Sink,
	instanceID string,
) CollabService {
	return &collabService{
		hub:        h,
		repo:       repo,
		presence:   pres,
		relay:      pub,
		sink:       sink,
		instanceID: instanceID,
	}
}

func (s *collabService) HandleJoin(ctx context.Context, c *hub.Client, docID string) error {
	// Join implicitly leaves the previous document; membership is never
	// silently duplicated.
	if prev := c.Session.CurrentDocument(); prev != "" {
		s.leaveInternal(ctx, c, prev)
	}

	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return reject(c, err, "document not found")
		}
		return reject(c, err, "failed to load document")
	}

	identity := c.Session.Identity
	if !doc.CanView(identity.UserID) {
		return reject(c, domain.ErrAccessDenied, "no access to document")
	}

	member := presence.Member{Identity: identity, ConnectionID: c.ID}

	// Local membership and the presence-store add succeed together or not
	// at all: a failed store write rolls the local add back so no partial
	// join is ever visible.
	s.hub.JoinDocument(c, docID)
	if err := s.presence.Add(ctx, docID, member); err != nil {
		s.hub.LeaveDocument(c, docID)
		log.Ctx(ctx).Error().Err(err).Str(log.FieldDocumentID, docID).Msg("presence add failed, join rolled back")
		return reject(c, domain.ErrPresenceUnavailable, "presence store unavailable")
	}

	// The store is the cross-instance source of truth; the broadcast
	// carries the complete list it returns, not a delta.
	active, err := s.presence.Members(ctx, docID)
	if err != nil {
		s.presence.Remove(ctx, docID, member)
		s.hub.LeaveDocument(c, docID)
		log.Ctx(ctx).Error().Err(err).Str(log.FieldDocumentID, docID).Msg("presence read failed, join rolled back")
		return reject(c, domain.ErrPresenceUnavailable, "presence store unavailable")
	}

	c.Session.JoinDocument(docID)

	s.broadcastPresence(ctx, docID, active)

	// One-time server truth for the joiner, so a new client never waits
	// for the next edit broadcast to see content.
	c.SendMessage(&domain.ContentMessage{
		Type:       domain.EventContent,
		DocumentID: docID,
		Title:      doc.Title,
		Content:    doc.Content,
		Version:    doc.Version,
	})

	audit.LogWithDocument(ctx, audit.ActionJoin, identity.UserID, docID, "user joined document")
	s.emit(ctx, &notify.Event{
		Action:     notify.ActionUserJoined,
		DocumentID: docID,
		UserID:     identity.UserID,
		Username:   identity.Username,
		Timestamp:  time.Now().UTC(),
	})

	return nil
}

func (s *collabService) HandleLeave(ctx context.Context, c *hub.Client, docID string) error {
	if !c.Session.IsJoined(docID) {
		return reject(c, domain.ErrNotJoined, "not joined to document")
	}
	s.leaveInternal(ctx, c, docID)
	return nil
}

// leaveInternal completes locally even when the presence-store delete
// fails; a stale entry reconciles on the next full read.
func (s *collabService) leaveInternal(ctx context.Context, c *hub.Client, docID string) {
	identity := c.Session.Identity

	s.hub.LeaveDocument(c, docID)
	c.Session.LeaveDocument()

	member := presence.Member{Identity: identity, ConnectionID: c.ID}
	if err := s.presence.Remove(ctx, docID, member); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldDocumentID, docID).Msg("presence remove failed, entry may go stale")
	}

	active, err := s.presence.Members(ctx, docID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldDocumentID, docID).Msg("presence read failed after leave, skipping broadcast")
	} else {
		s.broadcastPresence(ctx, docID, active)
	}

	audit.LogWithDocument(ctx, audit.ActionLeave, identity.UserID, docID, "user left document")
	s.emit(ctx, &notify.Event{
		Action:     notify.ActionUserLeft,
		DocumentID: docID,
		UserID:     identity.UserID,
		Username:   identity.Username,
		Timestamp:  time.Now().UTC(),
	})
}

func (s *collabService) HandleEdit(ctx context.Context, c *hub.Client, docID, content string) error {
	if !c.Session.IsJoined(docID) {
		return reject(c, domain.ErrNotJoined, "not joined to document")
	}

	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return reject(c, err, "document not found")
		}
		return reject(c, domain.ErrPersistFailed, "failed to persist content")
	}

	identity := c.Session.Identity
	if !doc.CanEdit(identity.UserID) {
		return reject(c, domain.ErrNoWriteAccess, "no write access to document")
	}

	// Persistence is the durable half; the client owns retry/backoff so
	// writes are never reordered by this core.
	newVersion, err := s.repo.SetContent(ctx, docID, content, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return reject(c, err, "document not found")
		}
		return reject(c, domain.ErrPersistFailed, "failed to persist content")
	}

	msg := &domain.UpdateMessage{
		Type:       domain.EventUpdate,
		DocumentID: docID,
		Content:    content,
		Version:    newVersion,
		EditorID:   identity.UserID,
		EditorName: identity.Username,
	}

	// Local fan-out is synchronous and sender-excluded; cross-instance
	// delivery is asynchronous best-effort.
	s.hub.Broadcast(docID, msg, c.ID)
	s.publish(ctx, relay.ChannelUpdates, relay.KindContentUpdate, docID, c.ID, msg)

	audit.LogWithDocument(ctx, audit.ActionEdit, identity.UserID, docID, "document edited")
	s.emit(ctx, &notify.Event{
		Action:     notify.ActionDocumentEdited,
		DocumentID: docID,
		UserID:     identity.UserID,
		Username:   identity.Username,
		Version:    newVersion,
		Timestamp:  time.Now().UTC(),
	})

	return nil
}

func (s *collabService) HandleCursor(ctx context.Context, c *hub.Client, docID string, position int) error {
	if !c.Session.IsJoined(docID) {
		return reject(c, domain.ErrNotJoined, "not joined to document")
	}

	msg := &domain.CursorMoveMessage{
		Type:       domain.EventCursorMove,
		DocumentID: docID,
		UserID:     c.Session.Identity.UserID,
		Username:   c.Session.Identity.Username,
		Position:   position,
	}

	s.hub.Broadcast(docID, msg, c.ID)
	s.publish(ctx, relay.ChannelCursor, relay.KindCursorMove, docID, c.ID, msg)
	return nil
}

func (s *collabService) HandleTyping(ctx context.Context, c *hub.Client, docID string, isTyping bool) error {
	if !c.Session.IsJoined(docID) {
		return reject(c, domain.ErrNotJoined, "not joined to document")
	}

	msg := &domain.TypingStateMessage{
		Type:       domain.EventTypingState,
		DocumentID: docID,
		UserID:     c.Session.Identity.UserID,
		Username:   c.Session.Identity.Username,
		IsTyping:   isTyping,
	}

	s.hub.Broadcast(docID, msg, c.ID)
	s.publish(ctx, relay.ChannelCursor, relay.KindTyping, docID, c.ID, msg)
	return nil
}

func (s *collabService) HandleDisconnect(ctx context.Context, c *hub.Client) {
	if docID := c.Session.CurrentDocument(); docID != "" {
		s.leaveInternal(ctx, c, docID)
	}
	s.hub.Unregister(c)

	audit.Log(ctx, audit.ActionDisconnect, c.Session.Identity.UserID, "connection closed")
}

// HandleRelayed applies a peer instance's envelope locally. Envelopes from
// this instance were already filtered out by the subscriber, so the origin
// sender has no local connection to exclude.
func (s *collabService) HandleRelayed(env *relay.Envelope) {
	switch env.Kind {
	case relay.KindContentUpdate, relay.KindCursorMove, relay.KindTyping, relay.KindPresenceChange:
		s.hub.BroadcastRaw(env.DocumentID, env.Payload, "")
	default:
		log.L().Debug().Str("kind", env.Kind).Msg("relay: ignoring unknown envelope kind")
	}
}

func (s *collabService) ActiveUsers(ctx context.Context, docID string) ([]domain.Identity, error) {
	return s.presence.Members(ctx, docID)
}

func (s *collabService) broadcastPresence(ctx context.Context, docID string, active []domain.Identity) {
	msg := &domain.PresenceMessage{
		Type:        domain.EventPresence,
		DocumentID:  docID,
		ActiveUsers: active,
	}
	s.hub.Broadcast(docID, msg, "")
	s.publish(ctx, relay.ChannelPresence, relay.KindPresenceChange, docID, "", msg)
}

// publish sends an envelope to peer instances. Failures are logged and
// never surfaced: the authoritative action already happened.
func (s *collabService) publish(ctx context.Context, channel, kind, docID, originConnID string, payload interface{}) {
	env, err := relay.NewEnvelope(kind, docID, originConnID, s.instanceID, payload)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChannel, channel).Msg("relay envelope marshal failed")
		return
	}
	if err := s.relay.Publish(ctx, channel, env); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str(log.FieldChannel, channel).
			Str(log.FieldDocumentID, docID).
			Msg("relay publish failed")
	}
}

// reject reports a refused operation to the sender as a structured error
// event, mapping the domain error to its wire code, and returns the error.
func reject(c *hub.Client, err error, message string) error {
	c.SendError(domain.ErrorCode(err), message)
	return err
}

func (s *collabService) emit(ctx context.Context, ev *notify.Event) {
	if err := s.sink.Emit(ctx, ev); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("action", ev.Action).Msg("notification emit failed")
	}
}
