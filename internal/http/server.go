// Package http provides the API server, its router and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	authHTTP "github.com/voces/voces/internal/auth/http"
	authUseCase "github.com/voces/voces/internal/auth/usecase"
	"github.com/voces/voces/internal/metrics"
	userDomain "github.com/voces/voces/internal/user/domain"
)

// Server represents the API server.
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine

	// ctx bounds background work started by middleware; cancelled on Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
}

// RouterDeps holds everything SetupRouter wires into routes.
type RouterDeps struct {
	AuthHandler      *authHTTP.AuthHandler
	MeHandler        *authHTTP.MeHandler
	AuditLogHandler  *authHTTP.AuditLogHandler
	IdentityResolver authUseCase.IdentityResolver
	AuditLedger      authUseCase.AuditLedger

	LoginRateLimitEnabled bool
	LoginRateLimitRPS     float64
	LoginRateLimitBurst   int

	CORSEnabled      bool
	CORSAllowOrigins string

	// MeterProvider is nil when metrics are disabled.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// NewServer creates a new API server. db may be nil, in which case /ready reports not ready.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		db:     db,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with global middleware and all routes.
func (s *Server) SetupRouter(deps RouterDeps) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if deps.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MeterProvider, deps.MetricsNamespace))
	}
	if corsMiddleware := createCORSMiddleware(deps.CORSEnabled, deps.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(authHTTP.IdentityMiddleware(deps.IdentityResolver, s.logger))

	requireUser := authHTTP.RequireUser(deps.AuditLedger, s.logger)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", deps.AuthHandler.RegisterHandler)

		loginChain := []gin.HandlerFunc{}
		if deps.LoginRateLimitEnabled {
			loginChain = append(loginChain, authHTTP.LoginRateLimitMiddleware(
				s.ctx,
				deps.LoginRateLimitRPS,
				deps.LoginRateLimitBurst,
				s.logger,
			))
		}
		loginChain = append(loginChain, deps.AuthHandler.LoginHandler)
		auth.POST("/login", loginChain...)

		auth.POST("/logout", deps.AuthHandler.LogoutHandler)
	}

	me := v1.Group("/me", requireUser)
	{
		me.GET("", deps.MeHandler.GetHandler)
		me.GET("/activity", deps.MeHandler.ActivityHandler)
	}

	auditLogs := v1.Group("/audit-logs",
		requireUser,
		authHTTP.RequireRole(deps.AuditLedger, s.logger, userDomain.RoleAdmin, userDomain.RoleModerator),
	)
	{
		auditLogs.GET("", deps.AuditLogHandler.ListHandler)
		auditLogs.GET("/:id", deps.AuditLogHandler.GetHandler)
	}

	s.router = router
}

// Start serves until Shutdown is called. SetupRouter must have run.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server and stops middleware background work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.cancel()
	return s.server.Shutdown(ctx)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
