package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/voces/voces/internal/auth/domain"
	"github.com/voces/voces/internal/auth/http/dto"
	authUseCase "github.com/voces/voces/internal/auth/usecase"
	apperrors "github.com/voces/voces/internal/errors"
	"github.com/voces/voces/internal/httputil"
)

// MeHandler serves the resolved user's own data. Routes must be behind RequireUser.
type MeHandler struct {
	ledger authUseCase.AuditLedger
	logger *slog.Logger
}

// NewMeHandler creates a new handler for the current user.
func NewMeHandler(ledger authUseCase.AuditLedger, logger *slog.Logger) *MeHandler {
	return &MeHandler{
		ledger: ledger,
		logger: logger,
	}
}

// GetHandler returns the current user.
// GET /v1/me
func (h *MeHandler) GetHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// ActivityHandler returns the current user's audit trail, newest first.
// GET /v1/me/activity?kind=Login&limit=50
func (h *MeHandler) ActivityHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	limit, err := httputil.ParseLimit(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var kind *authDomain.EventKind
	if raw := c.Query("kind"); raw != "" {
		parsed, err := authDomain.ParseEventKind(raw)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		kind = &parsed
	}

	events, err := h.ledger.QueryByActor(c.Request.Context(), user.ID, kind, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEventsToListResponse(events))
}
