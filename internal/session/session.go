// Package session tracks active client sessions. Each session owns exactly
// one bet slip engine; the slip is private in-memory state that dies with the
// session and is never shared between actors.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/betslip/internal/slip"
)

// Session is one active client session and the sole owner of its slip engine
type Session struct {
	id       uuid.UUID
	engine   *slip.Engine
	openedAt time.Time

	mu            sync.RWMutex
	authenticated bool
	userRef       string
}

// ID returns the session identifier
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Engine returns the session's slip engine
func (s *Session) Engine() *slip.Engine {
	return s.engine
}

// OpenedAt returns when the session was opened
func (s *Session) OpenedAt() time.Time {
	return s.openedAt
}

// IsAuthenticated reports whether a user is logged in on this session
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Authenticate marks the session as logged in for the given user reference.
// The login flow itself lives with the identity collaborator; the engine only
// needs the resulting boolean for its submission precondition.
func (s *Session) Authenticate(userRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.userRef = userRef
}

// Logout clears the authenticated state. The slip is left untouched so a
// re-login can submit it.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.userRef = ""
}

// UserRef returns the logged-in user reference, empty when anonymous
func (s *Session) UserRef() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userRef
}
