package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/audit"
)

// auditEntityTypes are the entity types exposed through the history endpoint.
var auditEntityTypes = map[string]bool{
	"warehouse":      true,
	"product":        true,
	"counterparty":   true,
	"stock_movement": true,
}

// AuditHandler serves the change history of audited entities.
type AuditHandler struct {
	*BaseHandler
	recorder audit.Recorder
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, recorder audit.Recorder) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		recorder:    recorder,
	}
}

// History handles GET /audit/:entityType/:id. Stored entries hold full
// snapshots; the response carries per-field diffs between adjacent entries.
func (h *AuditHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	entityType := c.Param("entityType")
	if !auditEntityTypes[entityType] {
		h.Error(c, apperror.NewValidation("unknown entity type").
			WithDetail("entityType", entityType))
		return
	}

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)

	entries, err := h.recorder.History(ctx, entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": audit.DiffEntries(entries),
	})
}

// RegisterRoutes registers audit routes.
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:entityType/:id", h.History)
}
