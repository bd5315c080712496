// Package stubserver provides a local stand-in for the auth and recipe
// generation backend. It serves the same JSON envelope as the production
// API and is used for local development and end-to-end tests.
package stubserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/pantry/internal/infrastructure/security"
)

const contextUserID = "stub_user_id"

// Options configures the stub backend
type Options struct {
	Addr           string
	SigningKey     []byte
	TokenTTL       time.Duration
	RecipesPerCall int
	MinIngredients int
	Clock          func() time.Time
}

type account struct {
	user         user.User
	passwordHash []byte
}

// Server is the stub backend
type Server struct {
	engine    *gin.Engine
	server    *http.Server
	opts      Options
	validator *security.ValidationService
	logger    *zap.Logger

	mu       sync.RWMutex
	accounts map[string]*account // keyed by lowercased email
	byID     map[string]string   // user id to email
}

// New creates a stub backend
func New(opts Options, logger *zap.Logger) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.RecipesPerCall <= 0 {
		opts.RecipesPerCall = 2
	}
	if opts.MinIngredients <= 0 {
		opts.MinIngredients = 2
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Server{
		opts:      opts,
		validator: security.NewValidationService(logger),
		logger:    logger.Named("stub-server"),
		accounts:  make(map[string]*account),
		byID:      make(map[string]string),
	}

	s.engine = s.setupRoutes()
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.engine,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// setupRoutes configures the auth and recipe routes
func (s *Server) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	m := middleware.New(s.logger, "/health")
	r.Use(m.RequestID())
	r.Use(m.Recovery())
	r.Use(m.Logger())
	r.Use(m.Tracing())
	r.Use(CompressionMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "pantry-stub"})
	})

	auth := r.Group("/api/auth")
	auth.POST("/login", s.handleLogin)
	auth.POST("/signup", s.handleSignup)

	me := auth.Group("/me", s.authenticate())
	me.GET("", s.handleMe)
	me.PUT("", s.handleUpdateProfile)
	me.PUT("/favorites", s.handleUpdateList("favorites"))
	me.PUT("/allergies", s.handleUpdateList("allergies"))
	me.PUT("/dietary-restrictions", s.handleUpdateList("dietary_restrictions"))
	me.PUT("/banned-ingredients", s.handleUpdateList("banned_ingredients"))

	recipes := r.Group("/api/recipes", s.authenticate())
	recipes.POST("/generate", s.handleGenerate)

	return r
}

// Handler returns the HTTP handler, for httptest servers
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting stub backend", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down stub backend")
	return s.server.Shutdown(ctx)
}

// AddUser registers an account directly, bypassing signup
func (s *Server) AddUser(u user.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.SubscriptionStatus == "" {
		u.SubscriptionStatus = user.SubscriptionFree
	}
	if u.Status == "" {
		u.Status = user.AccountStatusActive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, exists := s.accounts[email]; exists {
		return errEmailTaken
	}
	s.accounts[email] = &account{user: u, passwordHash: hash}
	s.byID[u.ID] = email
	return nil
}

// authenticate verifies the bearer token
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			fail(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := security.ParseToken(s.opts.SigningKey, token, s.opts.Clock())
		if err != nil {
			fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.RLock()
		_, known := s.byID[claims.UserID]
		s.mu.RUnlock()
		if !known {
			fail(c, http.StatusUnauthorized, "Unknown user")
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Next()
	}
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
