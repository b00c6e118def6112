package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rooms-client/internal/authtoken"
	"rooms-client/internal/domain"
	"rooms-client/internal/observability"
	"rooms-client/internal/storage"
)

const guestRole = "guest"

// AuthAPI is the subset of the auth client the store needs
type AuthAPI interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	VerifyToken(ctx context.Context) (bool, error)
}

// AuthSnapshot is a copy of the auth state
type AuthSnapshot struct {
	User          *domain.User
	Token         string
	Loading       bool
	Error         string
	Authenticated bool
	Role          string
	UserName      string
}

// AuthStore owns the session: the token and user, mirrored to durable
// storage so the API client and later runs see the same session.
type AuthStore struct {
	api   AuthAPI
	store domain.KeyValueStore
	now   func() time.Time

	mu      sync.RWMutex
	user    *domain.User
	token   string
	loading bool
	errMsg  string

	observers observers[AuthSnapshot]
}

// NewAuthStore creates an AuthStore with no session. Call LoadFromStorage to
// restore a saved one.
func NewAuthStore(api AuthAPI, store domain.KeyValueStore) *AuthStore {
	return &AuthStore{
		api:   api,
		store: store,
		now:   time.Now,
	}
}

// Snapshot returns a copy of the current state
func (s *AuthStore) Snapshot() AuthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *AuthStore) snapshotLocked() AuthSnapshot {
	snap := AuthSnapshot{
		Token:         s.token,
		Loading:       s.loading,
		Error:         s.errMsg,
		Authenticated: s.user != nil && s.token != "",
		Role:          guestRole,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
		snap.UserName = u.Username
		if u.DisplayName != "" {
			snap.Role = u.DisplayName
		}
	}
	return snap
}

// Subscribe registers fn to be called after every state change
func (s *AuthStore) Subscribe(fn func(AuthSnapshot)) func() {
	return s.observers.add(fn)
}

func (s *AuthStore) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.observers.notify(snap)
}

func (s *AuthStore) IsAuthenticated() bool { return s.Snapshot().Authenticated }
func (s *AuthStore) UserRole() string      { return s.Snapshot().Role }
func (s *AuthStore) UserName() string      { return s.Snapshot().UserName }

// Token returns the in-memory token
func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *AuthStore) begin() {
	s.update(func() {
		s.loading = true
		s.errMsg = ""
	})
}

// fail records err in the error slot and returns it
func (s *AuthStore) fail(err error) error {
	s.update(func() {
		s.loading = false
		s.errMsg = domain.Message(err)
	})
	return err
}

// Login authenticates and persists the session
func (s *AuthStore) Login(ctx context.Context, creds domain.LoginCredentials) (*domain.AuthResponse, error) {
	s.begin()
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, s.fail(err)
	}
	if err := s.persist(ctx, resp.AccessToken, resp.User); err != nil {
		return nil, s.fail(err)
	}

	s.update(func() {
		s.loading = false
		s.token = resp.AccessToken
		s.user = resp.User
	})
	observability.FromContext(ctx).Info("logged in", slog.String("username", s.UserName()))
	return resp, nil
}

// Register creates an account and keeps the returned session
func (s *AuthStore) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	s.begin()
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, s.fail(err)
	}
	if err := s.persist(ctx, resp.AccessToken, resp.User); err != nil {
		return nil, s.fail(err)
	}

	s.update(func() {
		s.loading = false
		s.token = resp.AccessToken
		if resp.User != nil {
			s.user = resp.User
		}
	})
	return resp, nil
}

func (s *AuthStore) persist(ctx context.Context, token string, user *domain.User) error {
	if err := s.store.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if user == nil {
		return nil
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyUser, string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// CurrentUser refreshes the user from the API. Any failure ends the local
// session; the error message stays visible.
func (s *AuthStore) CurrentUser(ctx context.Context) (*domain.User, error) {
	if s.Token() == "" {
		return nil, domain.ErrNoToken
	}

	s.begin()
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.clearSession(ctx)
		return nil, s.fail(err)
	}

	if data, err := json.Marshal(user); err == nil {
		if err := s.store.Set(ctx, storage.KeyUser, string(data)); err != nil {
			observability.FromContext(ctx).Warn("failed to save user", slog.String("error", err.Error()))
		}
	}
	s.update(func() {
		s.loading = false
		s.user = user
	})
	return user, nil
}

// VerifyToken checks the session with the API. A token whose exp claim has
// passed is dropped without a network call.
func (s *AuthStore) VerifyToken(ctx context.Context) bool {
	token := s.Token()
	if token == "" {
		return false
	}
	log := observability.FromContext(ctx)

	if authtoken.Expired(token, s.now(), 0) {
		log.Info("stored token has expired")
		s.clearSession(ctx)
		return false
	}

	ok, err := s.api.VerifyToken(ctx)
	if err != nil {
		// cancellation says nothing about the token
		log.Warn("token verification interrupted", slog.String("error", err.Error()))
		return false
	}
	if !ok {
		s.clearSession(ctx)
	}
	return ok
}

// Logout drops the session from memory and storage
func (s *AuthStore) Logout(ctx context.Context) error {
	err := s.clearSession(ctx)
	s.update(func() { s.errMsg = "" })
	return err
}

func (s *AuthStore) clearSession(ctx context.Context) error {
	s.update(func() {
		s.user = nil
		s.token = ""
	})

	var errs []error
	for _, key := range []string{storage.KeyAuthToken, storage.KeyUser} {
		if err := s.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		observability.FromContext(ctx).Warn("failed to clear stored session", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ClearError empties the error slot
func (s *AuthStore) ClearError() {
	s.update(func() { s.errMsg = "" })
}

// LoadFromStorage restores a saved session and verifies it. Unreadable or
// corrupt data is treated as no session. It reports whether a session is
// active afterwards.
func (s *AuthStore) LoadFromStorage(ctx context.Context) bool {
	log := observability.FromContext(ctx)

	token, okToken, err := s.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		log.Warn("failed to read stored token", slog.String("error", err.Error()))
		return false
	}
	rawUser, okUser, err := s.store.Get(ctx, storage.KeyUser)
	if err != nil {
		log.Warn("failed to read stored user", slog.String("error", err.Error()))
		return false
	}
	if !okToken || !okUser || token == "" {
		return false
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		log.Warn("stored user is corrupt", slog.String("error", err.Error()))
		s.clearSession(ctx)
		return false
	}

	s.update(func() {
		s.token = token
		s.user = &user
	})
	return s.VerifyToken(ctx)
}
