package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lumendocs/collab-service/internal/service"
	"github.com/lumendocs/collab-service/pkg/log"
	"github.com/lumendocs/collab-service/pkg/response"
)

// HTTPHandler serves the operational HTTP API: health and read-only
// presence queries. It never touches the realtime path.
type HTTPHandler struct {
	service service.CollabService
}

func NewHTTPHandler(svc service.CollabService) *HTTPHandler {
	return &HTTPHandler{service: svc}
}

// RegisterRoutes registers all routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		api.GET("/documents/:id/presence", h.GetPresence)
	}
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// GetPresence handles GET /api/v1/documents/:id/presence.
func (h *HTTPHandler) GetPresence(c *gin.Context) {
	ctx := c.Request.Context()
	docID := c.Param("id")
	if docID == "" {
		response.BadRequest(c, "document id is required")
		return
	}

	active, err := h.service.ActiveUsers(ctx, docID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldDocumentID, docID).Msg("presence query failed")
		response.InternalError(c, "failed to read presence")
		return
	}

	response.Success(c, gin.H{
		"document_id":  docID,
		"active_users": active,
		"count":        len(active),
	})
}
