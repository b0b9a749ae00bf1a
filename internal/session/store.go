// Package session owns the client-held authentication state: the bearer
// token and the profile record, persisted across restarts. The Store is the
// single writer to its Storage; everything else reads derived state
// (IsAuthenticated, User, Role) through it.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/pkg/logger"
)

// AuthClient is the slice of the upstream API the store needs for
// credential-based login.
type AuthClient interface {
	Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error)
}

// Store holds the current session. Zero or one session exists per Store;
// a fresh login overwrites whatever was there.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	auth    AuthClient

	token string
	user  *models.User

	loaded        bool
	loginInFlight bool

	subscribers []chan struct{}
}

// NewStore creates a Store over the given storage. auth may be nil when
// credential login is not needed (the pure OTP path).
func NewStore(storage Storage, auth AuthClient) *Store {
	return &Store{storage: storage, auth: auth}
}

// Load restores the session from persisted storage. A half-present or
// unparseable record loads as logged out and the leftovers are cleared:
// the store never exposes a partially populated session.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, okToken := s.storage.Get(KeyToken)
	rawUser, okUser := s.storage.Get(KeyUser)

	if okToken && okUser && token != "" {
		var user models.User
		if err := json.Unmarshal([]byte(rawUser), &user); err == nil {
			s.token = token
			s.user = &user
			s.loaded = true
			return
		}
		logger.Warn("Discarding corrupt persisted session")
	}

	s.clearLocked()
	s.loaded = true
}

// SetAuth atomically persists and publishes a new token and profile,
// replacing any prior session.
func (s *Store) SetAuth(token string, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.storage.Set(KeyToken, token); err != nil {
		return err
	}
	if err := s.storage.Set(KeyUser, string(raw)); err != nil {
		return err
	}
	s.token = token
	s.user = &user
	s.loaded = true
	s.notifyLocked()
	return nil
}

// UpdateUser merges a partial profile update into the current user and
// re-persists it. No-ops when no session exists. The token is untouched.
func (s *Store) UpdateUser(update models.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.token == "" {
		return nil
	}
	merged := update.Apply(*s.user)
	raw, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	if err := s.storage.Set(KeyUser, string(raw)); err != nil {
		return err
	}
	s.user = &merged
	s.notifyLocked()
	return nil
}

// Login performs credential-based login through the upstream API and
// establishes the session. Errors are propagated unchanged so the caller
// decides how to render them. The store reads as loading while the call
// is in flight.
func (s *Store) Login(ctx context.Context, creds models.LoginCredentials) error {
	s.mu.Lock()
	if s.auth == nil {
		s.mu.Unlock()
		return ErrNoAuthClient
	}
	s.loginInFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loginInFlight = false
		s.mu.Unlock()
	}()

	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		return err
	}
	return s.SetAuth(resp.Token, resp.User)
}

// Logout clears in-memory and persisted state unconditionally. Safe to
// call when already logged out.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.loaded = true
	s.notifyLocked()
}

// Token returns the bearer credential, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the profile record when a session exists.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Role returns the session's role, or "" when unauthenticated.
func (s *Store) Role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// IsAuthenticated is true iff both token and user are present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// IsLoading is true before the first Load and while a Login is in flight.
// Consumers (the route guard in particular) must not draw conclusions from
// the store while it reads as loading.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loaded || s.loginInFlight
}

// Subscribe returns a channel that receives a signal after every mutation.
// Notifications are best-effort: a slow consumer misses intermediate
// signals, not the final state.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *Store) clearLocked() {
	s.token = ""
	s.user = nil
	_ = s.storage.Delete(KeyToken) //nolint:errcheck
	_ = s.storage.Delete(KeyUser)  //nolint:errcheck
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
