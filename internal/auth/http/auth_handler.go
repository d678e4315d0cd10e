package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/voces/voces/internal/auth/domain"
	"github.com/voces/voces/internal/auth/http/dto"
	authUseCase "github.com/voces/voces/internal/auth/usecase"
	"github.com/voces/voces/internal/httputil"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	authUseCase authUseCase.AuthUseCase
	cookie      CookieConfig
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	authUseCase authUseCase.AuthUseCase,
	cookie CookieConfig,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		cookie:      cookie,
		logger:      logger,
	}
}

// RegisterHandler creates a new account.
// POST /v1/auth/register - JSON or form body. Returns 201 Created with the user,
// 409 Conflict naming the taken fields, or 422 for invalid input.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	user, err := h.authUseCase.Register(c.Request.Context(), req.ToInput(RequestMeta(c)))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// LoginHandler authenticates a user and sets the session cookie.
// POST /v1/auth/login - JSON or form body. Returns 200 OK with the user, or 401 with a
// message that does not reveal which credential was wrong.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	output, err := h.authUseCase.Login(c.Request.Context(), req.ToInput(RequestMeta(c)))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	setSessionCookie(c, h.cookie, output.Token, output.CookieMaxAge)
	c.JSON(http.StatusOK, dto.LoginResponse{
		User:      dto.MapUserToResponse(output.User),
		ExpiresAt: output.ExpiresAt,
	})
}

// LogoutHandler ends the session.
// POST /v1/auth/logout - Always deletes the cookie and returns 204 No Content. Tokens are
// not revoked server side; a failed audit write is logged but does not keep the cookie alive.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	input := &authDomain.LogoutInput{Identity: GetIdentity(c.Request.Context()), Meta: RequestMeta(c)}
	if err := h.authUseCase.Logout(c.Request.Context(), input); err != nil {
		h.logger.Error("logout audit failed",
			slog.String("request_id", input.Meta.RequestID),
			slog.Any("error", err))
	}

	clearSessionCookie(c, h.cookie)
	c.Status(http.StatusNoContent)
}
