package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voces/voces/internal/auth/http/dto"
	authUseCase "github.com/voces/voces/internal/auth/usecase"
	"github.com/voces/voces/internal/httputil"
)

// AuditLogHandler handles HTTP requests for browsing the audit ledger.
type AuditLogHandler struct {
	ledger authUseCase.AuditLedger
	logger *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(
	ledger authUseCase.AuditLedger,
	logger *slog.Logger,
) *AuditLogHandler {
	return &AuditLogHandler{
		ledger: ledger,
		logger: logger,
	}
}

// ListHandler retrieves audit events with pagination support.
// GET /v1/audit-logs?offset=0&limit=50
// Requires the Admin or Moderator role. Returns 200 OK ordered by created_at descending.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.ledger.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEventsToListResponse(events))
}

// GetHandler retrieves a single audit event.
// GET /v1/audit-logs/:id
func (h *AuditLogHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid id format: must be a valid UUID"),
			h.logger)
		return
	}

	event, err := h.ledger.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEventToResponse(event))
}
