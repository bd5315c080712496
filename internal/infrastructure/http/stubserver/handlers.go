package stubserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/infrastructure/security"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
)

var errEmailTaken = errors.New("email already registered")

// authResponse mirrors outbound.AuthResult on the wire
type authResponse struct {
	User      user.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	Premium   bool      `json:"premium"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req outbound.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := s.validator.Validate(req); err != nil {
		fail(c, http.StatusBadRequest, apperrors.UserMessage(err))
		return
	}

	s.mu.RLock()
	acc, exists := s.accounts[strings.ToLower(req.Email)]
	s.mu.RUnlock()

	if !exists || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.respondWithToken(c, acc.user)
}

func (s *Server) handleSignup(c *gin.Context) {
	var req outbound.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := s.validator.Validate(req); err != nil {
		fail(c, http.StatusBadRequest, apperrors.UserMessage(err))
		return
	}

	u := user.User{Name: req.Name, Email: req.Email}
	if err := s.AddUser(u, req.Password); err != nil {
		if errors.Is(err, errEmailTaken) {
			fail(c, http.StatusConflict, "An account with this email already exists")
			return
		}
		s.logger.Error("Failed to register user", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	s.mu.RLock()
	created := s.accounts[strings.ToLower(req.Email)].user
	s.mu.RUnlock()

	s.logger.Info("User registered", zap.String("user_id", created.ID))
	s.respondWithToken(c, created)
}

func (s *Server) respondWithToken(c *gin.Context, u user.User) {
	now := s.opts.Clock()
	premium := user.IsPremiumUser(&u, now)

	token, err := security.IssueToken(s.opts.SigningKey, u.ID, u.Email, premium, s.opts.TokenTTL, now)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Could not create session")
		return
	}

	ok(c, authResponse{
		User:      u,
		Token:     token,
		ExpiresIn: int64(s.opts.TokenTTL / time.Second),
		Premium:   premium,
	})
}

// currentAccount returns the account of the authenticated request. Callers
// hold s.mu.
func (s *Server) currentAccount(c *gin.Context) *account {
	return s.accounts[s.byID[c.GetString(contextUserID)]]
}

func (s *Server) handleMe(c *gin.Context) {
	s.mu.RLock()
	u := s.currentAccount(c).user.Clone()
	s.mu.RUnlock()

	ok(c, u)
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var update user.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := s.validator.Validate(update); err != nil {
		fail(c, http.StatusBadRequest, apperrors.UserMessage(err))
		return
	}

	s.mu.Lock()
	acc := s.currentAccount(c)
	if update.Name != "" {
		acc.user.Name = update.Name
	}
	if update.Avatar != "" {
		acc.user.Avatar = update.Avatar
	}
	if update.Email != "" && !strings.EqualFold(update.Email, acc.user.Email) {
		email := strings.ToLower(update.Email)
		if _, taken := s.accounts[email]; taken {
			s.mu.Unlock()
			fail(c, http.StatusConflict, "An account with this email already exists")
			return
		}
		delete(s.accounts, strings.ToLower(acc.user.Email))
		acc.user.Email = update.Email
		s.accounts[email] = acc
		s.byID[acc.user.ID] = email
	}
	u := acc.user.Clone()
	s.mu.Unlock()

	ok(c, u)
}

// handleUpdateList replaces one of the list sub-resources of the profile
func (s *Server) handleUpdateList(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string][]string
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, http.StatusBadRequest, "Invalid JSON")
			return
		}
		values, present := body[field]
		if !present {
			fail(c, http.StatusBadRequest, field+" is required")
			return
		}
		if values == nil {
			values = []string{}
		}

		s.mu.Lock()
		acc := s.currentAccount(c)
		switch field {
		case "favorites":
			acc.user.Favorites = values
		case "allergies":
			acc.user.Allergies = values
		case "banned_ingredients":
			acc.user.BannedIngredients = values
		case "dietary_restrictions":
			restrictions := make([]user.DietaryRestriction, 0, len(values))
			for _, v := range values {
				restrictions = append(restrictions, user.DietaryRestriction(v))
			}
			acc.user.DietaryRestrictions = restrictions
		}
		s.mu.Unlock()

		ok(c, gin.H{field: values})
	}
}
