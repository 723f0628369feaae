// Package session holds the per-session state the core keeps between calls:
// the current token window, the optional personal credential, and the active
// ticket filter. Sessions never share mutable state with each other.
package session

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/cvbridge/ticketing/internal/core/domain"
)

// Session is the state owned by one authenticated user interaction.
type Session struct {
	ID       string
	Identity domain.Identity
	Role     string

	mu         sync.RWMutex
	credential *domain.Credential
	expiresAt  time.Time
	filter     domain.TicketFilter
}

// SetCredential stores the personal credential in session memory only.
func (s *Session) SetCredential(cred domain.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = &cred
}

// Credential returns the stored personal credential, if any.
func (s *Session) Credential() *domain.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credential == nil {
		return nil
	}
	cred := *s.credential
	return &cred
}

// ClearCredential discards the personal credential. Idempotent.
func (s *Session) ClearCredential() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = nil
}

// SetExpiry records the expiry of the session's current token.
func (s *Session) SetExpiry(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = t
}

// ExpiresAt returns the expiry of the session's current token.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// SetFilter records the active ticket filter and pagination cursor.
func (s *Session) SetFilter(f domain.TicketFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Filter returns the active ticket filter.
func (s *Session) Filter() domain.TicketFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Manager tracks live sessions by id. It is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create registers a new session for the identity and returns it.
func (m *Manager) Create(identity domain.Identity, role string, expiresAt time.Time) *Session {
	s := &Session{
		ID:        NewID(),
		Identity:  identity,
		Role:      role,
		expiresAt: expiresAt,
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given id, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Delete removes a session and discards its credential. Safe to call
// multiple times.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if s != nil {
		s.ClearCredential()
	}
}

// NewID returns a random 16-hex-character session identifier.
func NewID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%016x", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", b)
}
