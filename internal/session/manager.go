package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/user/model"
	appErrors "nexus-hvac-client/pkg/errors"
)

// Authenticator resolves credentials to a user. auth.Resolver implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, secret string) (*model.User, error)
}

// Listener is told about every login and logout; user is nil after logout.
type Listener func(user *model.User)

// Manager owns the in-memory session and keeps the Store in step with it.
type Manager struct {
	store *Store
	auth  Authenticator
	log   *zap.Logger

	mu        sync.RWMutex
	current   *model.User
	loaded    bool
	listeners []Listener
}

func NewManager(store *Store, auth Authenticator) *Manager {
	return &Manager{store: store, auth: auth, log: logger.Named("session")}
}

// Init restores the persisted session. Calling it again is a no-op.
func (m *Manager) Init(ctx context.Context) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return m.current, nil
	}
	user, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	m.current = user
	m.loaded = true
	return user, nil
}

// Login authenticates and persists the user. A failed login leaves any
// existing session untouched.
func (m *Manager) Login(ctx context.Context, identifier, secret string) (*model.User, error) {
	user, err := m.auth.Authenticate(ctx, identifier, secret)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if err := m.store.Save(ctx, user); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.current = user
	m.loaded = true
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	m.log.Info("Logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	notify(listeners, user)
	return user, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if err := m.store.Clear(ctx); err != nil {
		m.mu.Unlock()
		return err
	}
	m.current = nil
	m.loaded = true
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	m.log.Info("Logged out")
	notify(listeners, nil)
	return nil
}

func (m *Manager) Current() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) IsAuthenticated() bool {
	return m.Current() != nil
}

// RequireUser returns the current user or ErrNoSession.
func (m *Manager) RequireUser() (*model.User, error) {
	if user := m.Current(); user != nil {
		return user, nil
	}
	return nil, appErrors.ErrNoSession
}

func (m *Manager) OnChange(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

func notify(listeners []Listener, user *model.User) {
	for _, l := range listeners {
		l(user)
	}
}
