package session

import (
	"errors"
	"sync"
	"time"

	"github.com/callforge/callforge/pkg/models"
)

// State is a login lifecycle state
type State string

// Login state machine: anonymous → authenticating → authenticated → anonymous
const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// ErrInvalidTransition is returned when a state change is not allowed
// by the login state machine
var ErrInvalidTransition = errors.New("invalid session state transition")

// Manager tracks the authenticated operator for one API process,
// replacing ambient mutable auth globals with explicit accessors.
type Manager struct {
	mu      sync.RWMutex
	state   State
	user    *models.User
	started time.Time
}

// NewManager creates a session manager in the anonymous state
func NewManager() *Manager {
	return &Manager{state: StateAnonymous}
}

// State returns the current login state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// BeginLogin moves anonymous → authenticating
func (m *Manager) BeginLogin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAnonymous {
		return ErrInvalidTransition
	}
	m.state = StateAuthenticating
	return nil
}

// CompleteLogin moves authenticating → authenticated and records the user
func (m *Manager) CompleteLogin(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticating {
		return ErrInvalidTransition
	}
	m.state = StateAuthenticated
	m.user = user
	m.started = time.Now()
	return nil
}

// FailLogin moves authenticating back to anonymous
func (m *Manager) FailLogin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticating {
		return ErrInvalidTransition
	}
	m.state = StateAnonymous
	m.user = nil
	return nil
}

// Logout returns to anonymous from any state
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAnonymous
	m.user = nil
}

// CurrentUser returns the authenticated user, or nil when anonymous
func (m *Manager) CurrentUser() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated {
		return nil
	}
	return m.user
}

// CurrentRole returns the authenticated user's role claim, or "" when
// anonymous
func (m *Manager) CurrentRole() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated || m.user == nil {
		return ""
	}
	return m.user.Role
}
