package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lumendocs/collab-service/internal/audit"
	"github.com/lumendocs/collab-service/internal/auth"
	"github.com/lumendocs/collab-service/internal/config"
	"github.com/lumendocs/collab-service/internal/domain"
	"github.com/lumendocs/collab-service/internal/hub"
	"github.com/lumendocs/collab-service/internal/service"
	"github.com/lumendocs/collab-service/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades websocket connections and dispatches client events to
// the collaboration engine.
type WSHandler struct {
	hub      *hub.Hub
	service  service.CollabService
	verifier *auth.Verifier
	wsCfg    config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.CollabService, verifier *auth.Verifier, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:      h,
		service:  svc,
		verifier: verifier,
		wsCfg:    wsCfg,
	}
}

// HandleWebSocket authenticates the handshake and upgrades the connection.
// Authentication happens before the upgrade: an unauthenticated attempt is
// rejected with 401 and no socket event is ever processed.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(bearerToken(r))
	if err != nil {
		audit.Log(r.Context(), audit.ActionAuthFailed, "", "websocket handshake rejected")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.L().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, identity, h.wsCfg)
	h.hub.Register(client)

	audit.Log(r.Context(), audit.ActionAuth, identity.UserID, "websocket connection authenticated")

	go client.WritePump()
	go client.ReadPump(h.handleMessage, h.handleClose)
}

// bearerToken extracts the opaque token from the Authorization header or,
// for browser clients that cannot set headers on websocket upgrades, the
// token query parameter.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (h *WSHandler) handleClose(c *hub.Client) {
	h.service.HandleDisconnect(context.Background(), c)
}

func (h *WSHandler) handleMessage(c *hub.Client, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		c.SendError(domain.ErrCodeBadRequest, "invalid message format")
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.EventJoin:
		var msg domain.JoinMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.DocumentID == "" {
			c.SendError(domain.ErrCodeBadRequest, "invalid document:join message")
			return
		}
		if err := h.service.HandleJoin(ctx, c, msg.DocumentID); err != nil {
			log.L().Debug().Err(err).Str(log.FieldConnectionID, c.ID).Msg("join rejected")
		}

	case domain.EventLeave:
		var msg domain.LeaveMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.DocumentID == "" {
			c.SendError(domain.ErrCodeBadRequest, "invalid document:leave message")
			return
		}
		if err := h.service.HandleLeave(ctx, c, msg.DocumentID); err != nil {
			log.L().Debug().Err(err).Str(log.FieldConnectionID, c.ID).Msg("leave rejected")
		}

	case domain.EventEdit:
		var msg domain.EditMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.DocumentID == "" {
			c.SendError(domain.ErrCodeBadRequest, "invalid document:edit message")
			return
		}
		if err := h.service.HandleEdit(ctx, c, msg.DocumentID, msg.Content); err != nil {
			log.L().Debug().Err(err).Str(log.FieldConnectionID, c.ID).Msg("edit rejected")
		}

	case domain.EventCursor:
		var msg domain.CursorPositionMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.DocumentID == "" {
			c.SendError(domain.ErrCodeBadRequest, "invalid cursor:position message")
			return
		}
		h.service.HandleCursor(ctx, c, msg.DocumentID, msg.Position)

	case domain.EventTyping:
		var msg domain.TypingIndicatorMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.DocumentID == "" {
			c.SendError(domain.ErrCodeBadRequest, "invalid user:typing message")
			return
		}
		h.service.HandleTyping(ctx, c, msg.DocumentID, msg.IsTyping)

	default:
		c.SendError(domain.ErrCodeBadRequest, "unknown message type")
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/collab/ws", gin.WrapF(h.HandleWebSocket))
}
