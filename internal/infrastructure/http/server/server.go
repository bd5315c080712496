// Package server provides the ops HTTP server: Prometheus metrics, health
// checks and a read-only snapshot of the client stores
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/alchemorsel/pantry/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
)

// Stores are the stores exposed by the state snapshot
type Stores struct {
	Selection inbound.SelectionStore
	Search    inbound.SearchStore
	Session   inbound.SessionStore
	Favorites inbound.FavoritesStore
}

// Server represents the ops HTTP server
type Server struct {
	logger  *zap.Logger
	router  *gin.Engine
	server  *http.Server
	metrics *monitoring.Metrics
	health  *healthcheck.HealthCheck
	stores  Stores
}

// NewServer creates a new ops server instance listening on addr
func NewServer(addr string, metrics *monitoring.Metrics, health *healthcheck.HealthCheck, stores Stores, logger *zap.Logger) *Server {
	s := &Server{
		logger:  logger.Named("ops-server"),
		metrics: metrics,
		health:  health,
		stores:  stores,
	}

	s.router = s.setupRouter()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	m := middleware.New(s.logger, "/metrics", "/health", "/health/live", "/health/ready")
	r.Use(m.RequestID())
	r.Use(m.Recovery())
	r.Use(m.Logger())
	r.Use(m.Security())

	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.health.RegisterRoutes(r)
	r.GET("/debug/state", s.handleState)

	return r
}

// handleState returns a snapshot of the stores. The session token is never
// included.
func (s *Server) handleState(c *gin.Context) {
	snapshot := gin.H{}

	if s.stores.Selection != nil {
		snapshot["selection"] = s.stores.Selection.Items()
	}
	if s.stores.Search != nil {
		state := s.stores.Search.State()
		snapshot["search"] = gin.H{
			"status":                    state.Status,
			"error":                     state.Error,
			"recipes":                   len(state.Recipes),
			"last_searched_ingredients": state.LastSearchedIngredients,
		}
	}
	if s.stores.Session != nil {
		state := s.stores.Session.State()
		session := gin.H{
			"authenticated":   state.IsAuthenticated,
			"premium":         s.stores.Session.IsPremium(),
			"max_ingredients": s.stores.Session.MaxIngredients(),
		}
		if state.User != nil {
			session["user_id"] = state.User.ID
		}
		snapshot["session"] = session
	}
	if s.stores.Favorites != nil {
		snapshot["favorites"] = len(s.stores.Favorites.List())
	}

	c.JSON(http.StatusOK, snapshot)
}

// Handler returns the HTTP handler, for httptest servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting ops server", zap.String("address", s.server.Addr))

	if err := http2.ConfigureServer(s.server, nil); err != nil {
		s.logger.Error("Failed to configure HTTP/2", zap.Error(err))
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down ops server")
	return s.server.Shutdown(ctx)
}
