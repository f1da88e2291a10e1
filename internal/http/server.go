// Package http provides HTTP server implementation and request handlers.
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

	authHTTP "github.com/NotSilaev/MrStone/internal/auth/http"
	authUseCase "github.com/NotSilaev/MrStone/internal/auth/usecase"
	"github.com/NotSilaev/MrStone/internal/cache"
	"github.com/NotSilaev/MrStone/internal/clock"
	"github.com/NotSilaev/MrStone/internal/config"
	"github.com/NotSilaev/MrStone/internal/metrics"
	rateLimitHTTP "github.com/NotSilaev/MrStone/internal/ratelimit/http"
	userHTTP "github.com/NotSilaev/MrStone/internal/user/http"
)

const readinessTimeout = 2 * time.Second

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	cache  cache.Cache
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a new HTTP server. db and c are only used by the readiness probe.
func NewServer(
	db *sql.DB,
	c cache.Cache,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		cache:  c,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Routes holds the handlers and guards mounted by SetupRouter.
type Routes struct {
	TokenHandler *authHTTP.TokenHandler
	UserHandler  *userHTTP.UserHandler
	TokenUseCase authUseCase.TokenUseCase
	// Throttler is nil when rate limiting is disabled.
	Throttler rateLimitHTTP.Throttler
	Clock     clock.Clock
	// MetricsProvider is nil when metrics are disabled.
	MetricsProvider *metrics.Provider
}

// SetupRouter builds the gin engine. Middleware order:
// request id, request logging, recovery, HTTP metrics, CORS, rate limit, then
// authentication on the /v1 group.
func (s *Server) SetupRouter(cfg *config.Config, routes Routes) error {
	router := gin.New()
	trustedProxies := cfg.TrustedProxyList()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}

	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))
	router.Use(RecoveryMiddleware(s.logger))

	if routes.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(routes.MetricsProvider.MeterProvider(), routes.MetricsProvider.Namespace()))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if routes.Throttler != nil {
		router.Use(rateLimitHTTP.RateLimitMiddleware(
			routes.Throttler,
			routes.Clock,
			rateLimitHTTP.IdentityFor(trustedProxies),
		))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(authHTTP.AuthenticationMiddleware(routes.TokenUseCase, s.logger))
	{
		auth := v1.Group("/auth")
		auth.GET("/verify", routes.TokenHandler.VerifyHandler)
		auth.POST("/tokens", routes.TokenHandler.IssueTokenHandler)
		auth.DELETE("/tokens/:id", routes.TokenHandler.RevokeTokenHandler)

		v1.POST("/users", routes.UserHandler.CreateHandler)
	}

	s.router = router
	return nil
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. SetupRouter must be called first.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports 503 unless both the database and the shared cache answer a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := map[string]string{
		"database": "ok",
		"cache":    "ok",
	}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	}
	if s.cache == nil || s.cache.Ping(ctx) != nil {
		components["cache"] = "error"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
