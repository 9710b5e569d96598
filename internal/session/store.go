// Package session owns the client's authentication state: the bearer
// credential and the user it belongs to. It is the only writer of the
// credential in durable storage.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/xpost-dev/xpost/internal/api"
	xlog "github.com/xpost-dev/xpost/internal/log"
	"github.com/xpost-dev/xpost/internal/storage"
)

// AuthAPI is the subset of the backend the store calls.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*api.Token, error)
	Register(ctx context.Context, username, twitterUsername string) (*api.User, error)
}

// Store holds the current credential and user.
// user is non-nil only while token is non-empty.
type Store struct {
	mu    sync.RWMutex
	token string
	user  *api.User

	auth    AuthAPI
	storage storage.Storage
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates an unauthenticated Store. Call Init to restore a saved credential.
func New(auth AuthAPI, st storage.Storage, logger zerolog.Logger) *Store {
	return &Store{
		auth:    auth,
		storage: st,
		logger:  logger,
		now:     time.Now,
	}
}

// Init restores the credential saved by a previous login. The session is
// provisionally authenticated until a call is rejected. A credential whose
// expiry has already passed is discarded.
func (s *Store) Init(ctx context.Context) error {
	token, ok, err := s.storage.Get(storage.TokenKey)
	if err != nil {
		return fmt.Errorf("read credential: %w", err)
	}
	if !ok || token == "" {
		return nil
	}

	claims, claimsErr := parseClaims(token)
	if claimsErr == nil && claims.ExpiresAt != nil && !claims.ExpiresAt.After(s.now()) {
		if err := s.storage.Delete(storage.TokenKey); err != nil {
			return fmt.Errorf("remove expired credential: %w", err)
		}
		s.logger.Info().Ctx(ctx).
			Str("event", xlog.EventSessionExpired).
			Str("username", claims.Subject).
			Msg("discarded expired credential")
		return nil
	}

	var user *api.User
	if claimsErr == nil && claims.Subject != "" {
		user = &api.User{Username: claims.Subject}
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	s.logger.Info().Ctx(ctx).
		Str("event", xlog.EventSessionRestored).
		Str("username", user.DisplayName()).
		Msg("restored credential")
	return nil
}

// Login exchanges credentials for a token and persists it.
// Failures are logged and reported as false.
func (s *Store) Login(ctx context.Context, username, password string) bool {
	tok, err := s.auth.Login(ctx, username, password)
	if err != nil {
		s.logger.Error().Ctx(ctx).
			Str("event", xlog.EventLoginFailed).
			Str("username", username).
			Err(err).
			Msg("login failed")
		return false
	}

	if err := s.storage.Set(storage.TokenKey, tok.AccessToken); err != nil {
		s.logger.Error().Ctx(ctx).
			Str("event", xlog.EventLoginFailed).
			Str("username", username).
			Err(err).
			Msg("persist credential")
		return false
	}

	user := tok.User
	if user == nil {
		user = &api.User{Username: username}
		if claims, err := parseClaims(tok.AccessToken); err == nil && claims.Subject != "" {
			user.Username = claims.Subject
		}
	}

	s.mu.Lock()
	s.token = tok.AccessToken
	s.user = user
	s.mu.Unlock()

	s.logger.Info().Ctx(ctx).
		Str("event", xlog.EventLoginSucceeded).
		Str("username", user.Username).
		Msg("logged in")
	return true
}

// Register creates an account. It does not log in.
func (s *Store) Register(ctx context.Context, username, twitterUsername string) bool {
	if _, err := s.auth.Register(ctx, username, twitterUsername); err != nil {
		s.logger.Error().Ctx(ctx).
			Str("event", xlog.EventRegisterFailed).
			Str("username", username).
			Err(err).
			Msg("registration failed")
		return false
	}
	s.logger.Info().Ctx(ctx).
		Str("event", xlog.EventRegistered).
		Str("username", username).
		Msg("registered")
	return true
}

// Logout clears the credential from memory and storage. Safe to repeat.
func (s *Store) Logout() {
	if username, was := s.clear(); was {
		s.logger.Info().
			Str("event", xlog.EventLogout).
			Str("username", username).
			Msg("logged out")
	}
}

// HandleUnauthorized drops a credential the backend has rejected.
func (s *Store) HandleUnauthorized() {
	if username, was := s.clear(); was {
		s.logger.Warn().
			Str("event", xlog.EventUnauthorized).
			Str("username", username).
			Msg("credential rejected, session cleared")
	}
}

func (s *Store) clear() (string, bool) {
	s.mu.Lock()
	was := s.token != ""
	username := ""
	if s.user != nil {
		username = s.user.Username
	}
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.Delete(storage.TokenKey); err != nil {
		s.logger.Error().
			Str("event", xlog.EventLogout).
			Err(err).
			Msg("remove credential")
	}
	return username, was
}

// IsAuthenticated reports whether a credential is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the current credential, or "" when logged out.
// It satisfies api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// ExpiresAt returns the credential's expiry when it carries one.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims, err := parseClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// parseClaims reads the registered claims without verifying the signature.
// The backend verifies; the client only needs sub and exp.
func parseClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse credential claims: %w", err)
	}
	return claims, nil
}
