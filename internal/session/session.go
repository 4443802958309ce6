// Package session owns the authenticated principal and its credential.
//
// A Store is created once and handed to the view root. Its lifecycle is
// explicit: Restore on startup, Login or Register to open a session, Logout
// to end it. The token and user are persisted in two storage slots which
// are always written or cleared together.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/sadopc/taskr/internal/core"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

type Store struct {
	auth    core.Authenticator
	storage core.Storage
	log     zerolog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	token string
	user  *core.User
}

func New(auth core.Authenticator, storage core.Storage, log zerolog.Logger) *Store {
	return &Store{
		auth:    auth,
		storage: storage,
		log:     log.With().Str("component", "session").Logger(),
		now:     time.Now,
	}
}

// Restore loads a persisted session and validates its token. When nothing is
// persisted it returns nil and the store stays logged out. Any invalid or
// partial state is cleared and an error wrapping core.ErrSessionInvalid is
// returned; callers treat that as a silent logout.
func (s *Store) Restore(ctx context.Context) error {
	token, hasToken, err := s.storage.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	raw, hasUser, err := s.storage.Get(KeyUser)
	if err != nil {
		return fmt.Errorf("read user: %w", err)
	}

	if !hasToken && !hasUser {
		return nil
	}
	if !hasToken || !hasUser || token == "" {
		return s.invalidate(errors.New("partial session in storage"))
	}

	var u core.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return s.invalidate(fmt.Errorf("decode stored user: %w", err))
	}

	// Optimistic: the user is visible while the token is checked.
	s.mu.Lock()
	s.token = token
	s.user = &u
	s.mu.Unlock()

	if expired(token, s.now()) {
		return s.invalidate(errors.New("token expired"))
	}
	if _, err := s.auth.Profile(ctx, token); err != nil {
		return s.invalidate(err)
	}

	s.log.Info().Int64("user_id", u.ID).Msg("session restored")
	return nil
}

func (s *Store) invalidate(cause error) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.Clear(KeyToken, KeyUser); err != nil {
		s.log.Error().Err(err).Msg("clear invalid session")
	}
	s.log.Info().Err(cause).Msg("stored session rejected")
	return fmt.Errorf("%w: %w", core.ErrSessionInvalid, cause)
}

// expired reports whether token is a JWT whose exp claim has passed. Opaque
// tokens and tokens without exp are left to the server.
func expired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

func (s *Store) Login(ctx context.Context, c core.Credentials) (core.User, error) {
	if err := c.Validate(); err != nil {
		return core.User{}, err
	}
	res, err := s.auth.Login(ctx, c)
	if err != nil {
		s.log.Warn().Err(err).Str("email", c.Email).Msg("login failed")
		return core.User{}, err
	}
	if err := s.open(res); err != nil {
		return core.User{}, err
	}
	s.log.Info().Int64("user_id", res.User.ID).Msg("logged in")
	return res.User, nil
}

func (s *Store) Register(ctx context.Context, r core.Registration) (core.User, error) {
	if err := r.Validate(); err != nil {
		return core.User{}, err
	}
	res, err := s.auth.Register(ctx, r)
	if err != nil {
		s.log.Warn().Err(err).Str("email", r.Email).Msg("register failed")
		return core.User{}, err
	}
	if err := s.open(res); err != nil {
		return core.User{}, err
	}
	s.log.Info().Int64("user_id", res.User.ID).Msg("registered")
	return res.User, nil
}

// open persists both slots before touching memory.
func (s *Store) open(res core.AuthResult) error {
	if res.AccessToken == "" {
		return &core.RequestError{Message: "server returned no access token"}
	}
	raw, err := json.Marshal(res.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(KeyToken, res.AccessToken); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.storage.Set(KeyUser, string(raw)); err != nil {
		_ = s.storage.Clear(KeyToken, KeyUser)
		return fmt.Errorf("persist user: %w", err)
	}

	u := res.User
	s.mu.Lock()
	s.token = res.AccessToken
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Logout ends the session. It never fails and is safe without a session.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.Clear(KeyToken, KeyUser); err != nil {
		s.log.Error().Err(err).Msg("clear session on logout")
		return
	}
	s.log.Info().Msg("logged out")
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Store) User() (core.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return core.User{}, false
	}
	return *s.user, true
}

// Token returns the current credential, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
