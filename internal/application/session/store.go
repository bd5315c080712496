// Package session provides the auth/session store: the bearer token, the
// signed-in user's profile and the derived authenticated flag.
//
// Token expiry is read from the JWT payload without verifying the
// signature. It only drives the UI (logging out early, hiding premium
// features); authorization is enforced by the server on every request.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/application/persist"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/infrastructure/security"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
)

// Event names
const (
	EventSessionStarted = "session.started"
	EventSessionCleared = "session.cleared"
)

// Reasons a session is cleared
const (
	ReasonLogout       = "logout"
	ReasonExpired      = "expired"
	ReasonInvalid      = "invalid_token"
	ReasonUnauthorized = "unauthorized"
)

// SessionStartedEvent is published after a login, signup or restore
type SessionStartedEvent struct {
	shared.BaseEvent
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionClearedEvent is published when the session is cleared
type SessionClearedEvent struct {
	shared.BaseEvent
	Reason string `json:"reason"`
}

// Options holds the optional collaborators of a Store
type Options struct {
	Selection inbound.SelectionStore
	State     outbound.StateStore
	Events    shared.EventDispatcher
	Validator *security.ValidationService
	Clock     func() time.Time
}

// persistedSession is what the store writes under the session key
type persistedSession struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Store implements inbound.SessionStore and outbound.TokenSource
type Store struct {
	mu            sync.RWMutex
	token         string
	user          *user.User
	authenticated bool
	expiresAt     time.Time
	lastError     string

	auth      outbound.AuthAPI
	profile   outbound.ProfileAPI
	selection inbound.SelectionStore
	state     outbound.StateStore
	events    shared.EventDispatcher
	validator *security.ValidationService
	now       func() time.Time
	logger    *zap.Logger
}

// NewStore creates a session store
func NewStore(auth outbound.AuthAPI, profile outbound.ProfileAPI, opts Options, logger *zap.Logger) *Store {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	validator := opts.Validator
	if validator == nil {
		validator = security.NewValidationService(logger)
	}

	return &Store{
		auth:      auth,
		profile:   profile,
		selection: opts.Selection,
		state:     opts.State,
		events:    opts.Events,
		validator: validator,
		now:       now,
		logger:    logger.Named("session-store"),
	}
}

// Token returns the bearer token for the next request. It fails with an
// auth error when there is no session; an expired token also ends the
// session.
func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, authenticated, exp := s.token, s.authenticated, s.expiresAt
	s.mu.RUnlock()

	if !authenticated || token == "" {
		return "", apperrors.NewAuthError("")
	}

	if !exp.After(s.now()) {
		s.logger.Info("Token expired, clearing session", zap.Time("expired_at", exp))
		s.clearToken(ctx, token, ReasonExpired)
		return "", apperrors.NewAuthError(apperrors.MessageSessionExpired)
	}
	return token, nil
}

// Expire ends the session after the server rejected its token. It does
// nothing when no session is active.
func (s *Store) Expire(ctx context.Context) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if s.clearToken(ctx, token, ReasonUnauthorized) {
		s.mu.Lock()
		s.lastError = apperrors.MessageSessionExpired
		s.mu.Unlock()
	}
}

// VerifyToken checks the token expiry locally and logs out when the token
// cannot be decoded, carries no expiry or has expired
func (s *Store) VerifyToken(ctx context.Context) bool {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		s.clear(ctx, ReasonInvalid)
		return false
	}

	exp, err := security.ExpiresAt(token)
	if err != nil {
		s.logger.Info("Token could not be decoded, clearing session", zap.Error(err))
		s.clearToken(ctx, token, ReasonInvalid)
		return false
	}
	if !exp.After(s.now()) {
		s.logger.Info("Token expired, clearing session", zap.Time("expired_at", exp))
		s.clearToken(ctx, token, ReasonExpired)
		return false
	}

	s.mu.Lock()
	current := s.token == token
	if current {
		s.authenticated = true
		s.expiresAt = exp
	}
	s.mu.Unlock()
	return current
}

// Login authenticates with email and password
func (s *Store) Login(ctx context.Context, email, password string) error {
	req := outbound.LoginRequest{Email: email, Password: password}
	if err := s.validator.Validate(req); err != nil {
		return s.fail(err)
	}

	result, err := s.auth.Login(ctx, req)
	if err != nil {
		return s.fail(err)
	}
	return s.start(ctx, result)
}

// Signup registers a new account and signs it in
func (s *Store) Signup(ctx context.Context, req outbound.SignupRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return s.fail(err)
	}

	result, err := s.auth.Signup(ctx, req)
	if err != nil {
		return s.fail(err)
	}
	return s.start(ctx, result)
}

// Logout clears the session and the ingredient selection
func (s *Store) Logout(ctx context.Context) {
	s.clear(ctx, ReasonLogout)
}

// Restore rehydrates a persisted session and verifies it
func (s *Store) Restore(ctx context.Context) error {
	var stored persistedSession
	found, err := persist.Load(ctx, s.state, outbound.KeySession, &stored)
	if err != nil {
		s.logger.Warn("Failed to load session", zap.Error(err))
		return err
	}
	if !found || stored.Token == "" {
		return nil
	}

	s.mu.Lock()
	s.token = stored.Token
	s.user = stored.User
	s.authenticated = false
	s.mu.Unlock()

	if !s.VerifyToken(ctx) {
		return nil
	}

	s.logger.Info("Session restored")
	s.publishStarted(ctx)
	return nil
}

// RefreshProfile reloads the user's profile from the server
func (s *Store) RefreshProfile(ctx context.Context) error {
	return s.withToken(ctx, func(token string) error {
		u, err := s.profile.Me(ctx, token)
		if err != nil {
			return err
		}
		s.updateUser(ctx, func(current *user.User) *user.User { return u.Clone() })
		return nil
	})
}

// UpdateProfile updates the editable profile fields
func (s *Store) UpdateProfile(ctx context.Context, update user.ProfileUpdate) error {
	if err := s.validator.Validate(update); err != nil {
		return s.fail(err)
	}

	return s.withToken(ctx, func(token string) error {
		u, err := s.profile.UpdateProfile(ctx, token, update)
		if err != nil {
			return err
		}
		s.updateUser(ctx, func(current *user.User) *user.User { return u.Clone() })
		return nil
	})
}

// UpdateFavorites replaces the favorite recipe ids on the server
func (s *Store) UpdateFavorites(ctx context.Context, recipeIDs []string) error {
	return s.withToken(ctx, func(token string) error {
		favorites, err := s.profile.UpdateFavorites(ctx, token, recipeIDs)
		if err != nil {
			return err
		}
		s.updateUser(ctx, func(current *user.User) *user.User {
			current.Favorites = favorites
			return current
		})
		return nil
	})
}

// UpdateAllergies replaces the allergy list on the server
func (s *Store) UpdateAllergies(ctx context.Context, allergies []string) error {
	for _, allergy := range allergies {
		if err := s.validator.ValidateIngredient(allergy); err != nil {
			return s.fail(err)
		}
	}

	return s.withToken(ctx, func(token string) error {
		stored, err := s.profile.UpdateAllergies(ctx, token, allergies)
		if err != nil {
			return err
		}
		s.updateUser(ctx, func(current *user.User) *user.User {
			current.Allergies = stored
			return current
		})
		return nil
	})
}

// UpdateDietaryRestrictions replaces the dietary restrictions on the server
func (s *Store) UpdateDietaryRestrictions(ctx context.Context, restrictions []user.DietaryRestriction) error {
	return s.withToken(ctx, func(token string) error {
		stored, err := s.profile.UpdateDietaryRestrictions(ctx, token, restrictions)
		if err != nil {
			return err
		}
		s.updateUser(ctx, func(current *user.User) *user.User {
			current.DietaryRestrictions = stored
			return current
		})
		return nil
	})
}

// UpdateBannedIngredients replaces the banned ingredient list on the server
func (s *Store) UpdateBannedIngredients(ctx context.Context, ingredients []string) error {
	for _, ingredient := range ingredients {
		if err := s.validator.ValidateIngredient(ingredient); err != nil {
			return s.fail(err)
		}
	}

	return s.withToken(ctx, func(token string) error {
		stored, err := s.profile.UpdateBannedIngredients(ctx, token, ingredients)
		if err != nil {
			return err
		}
		s.updateUser(ctx, func(current *user.User) *user.User {
			current.BannedIngredients = stored
			return current
		})
		return nil
	})
}

// State returns a snapshot of the session
func (s *Store) State() inbound.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return inbound.SessionState{
		Token:           s.token,
		User:            s.user.Clone(),
		IsAuthenticated: s.liveLocked(),
		Error:           s.lastError,
	}
}

// IsPremium reports whether the signed-in user has premium features now
func (s *Store) IsPremium() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liveLocked() && user.IsPremiumUser(s.user, s.now())
}

// MaxIngredients returns how many ingredients the current user may select
func (s *Store) MaxIngredients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.liveLocked() {
		return user.MaxIngredientsFree
	}
	return user.MaxIngredients(s.user, s.now())
}

// Preferences derives recipe generation preferences from the profile
func (s *Store) Preferences() *outbound.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.liveLocked() || s.user == nil {
		return nil
	}

	prefs := &outbound.Preferences{
		Allergies:         append([]string(nil), s.user.Allergies...),
		BannedIngredients: append([]string(nil), s.user.BannedIngredients...),
	}
	for _, r := range s.user.DietaryRestrictions {
		prefs.DietaryRestrictions = append(prefs.DietaryRestrictions, string(r))
	}
	if len(prefs.Allergies) == 0 && len(prefs.BannedIngredients) == 0 && len(prefs.DietaryRestrictions) == 0 {
		return nil
	}
	return prefs
}

func (s *Store) start(ctx context.Context, result *outbound.AuthResult) error {
	s.mu.Lock()
	s.token = result.Token
	s.user = result.User.Clone()
	s.authenticated = false
	s.lastError = ""
	s.mu.Unlock()

	if !s.VerifyToken(ctx) {
		return s.fail(apperrors.NewAuthError(apperrors.MessageSessionExpired))
	}

	s.save(ctx)
	s.logger.Info("Session started")
	s.publishStarted(ctx)
	return nil
}

// withToken runs call with the current token. A 401 from the server ends
// the session.
func (s *Store) withToken(ctx context.Context, call func(token string) error) error {
	token, err := s.Token(ctx)
	if err != nil {
		return s.fail(err)
	}

	if err := call(token); err != nil {
		if apperrors.Is(err, apperrors.CodeUnauthorized) {
			s.clearToken(ctx, token, ReasonUnauthorized)
		}
		return s.fail(err)
	}

	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

func (s *Store) updateUser(ctx context.Context, mutate func(current *user.User) *user.User) {
	s.mu.Lock()
	current := s.user.Clone()
	if current == nil {
		current = &user.User{}
	}
	s.user = mutate(current)
	s.mu.Unlock()

	s.save(ctx)
}

func (s *Store) save(ctx context.Context) {
	s.mu.RLock()
	stored := persistedSession{Token: s.token, User: s.user.Clone()}
	s.mu.RUnlock()

	persist.Save(ctx, s.state, outbound.KeySession, stored, s.logger)
}

// fail records the display message of err and returns it as an *AppError
func (s *Store) fail(err error) error {
	appErr := apperrors.Wrap(err, "Something went wrong. Please try again.")

	s.mu.Lock()
	s.lastError = appErr.Message
	s.mu.Unlock()

	return appErr
}

// liveLocked reports whether a verified, unexpired token is held. Callers
// hold s.mu.
func (s *Store) liveLocked() bool {
	return s.authenticated && s.token != "" && s.expiresAt.After(s.now())
}

// clear resets the session. The ingredient selection is cleared too so a
// new session starts from scratch.
func (s *Store) clear(ctx context.Context, reason string) {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.cleared(ctx, reason)
}

// clearToken clears the session only while token is still the current one,
// so a late failure cannot end a newer session
func (s *Store) clearToken(ctx context.Context, token, reason string) bool {
	s.mu.Lock()
	if token == "" || s.token != token {
		s.mu.Unlock()
		return false
	}
	s.resetLocked()
	s.mu.Unlock()

	s.cleared(ctx, reason)
	return true
}

func (s *Store) resetLocked() {
	s.token = ""
	s.user = nil
	s.authenticated = false
	s.expiresAt = time.Time{}
}

func (s *Store) cleared(ctx context.Context, reason string) {
	if s.selection != nil {
		s.selection.Clear(ctx)
	}
	persist.Delete(ctx, s.state, outbound.KeySession, s.logger)

	s.logger.Info("Session cleared", zap.String("reason", reason))
	shared.Publish(ctx, s.events, SessionClearedEvent{
		BaseEvent: shared.NewBaseEvent(EventSessionCleared),
		Reason:    reason,
	})
}

func (s *Store) publishStarted(ctx context.Context) {
	s.mu.RLock()
	token := s.token
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	s.mu.RUnlock()

	exp, _ := security.ExpiresAt(token)
	shared.Publish(ctx, s.events, SessionStartedEvent{
		BaseEvent: shared.NewBaseEvent(EventSessionStarted),
		UserID:    userID,
		ExpiresAt: exp,
	})
}

var (
	_ inbound.SessionStore = (*Store)(nil)
	_ outbound.TokenSource = (*Store)(nil)
)
