// Package memory provides in-process user and session stores
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/GriffinCanCode/Reze/backend/internal/storage"
)

// UserStore keeps users in memory. Usernames are unique case-insensitively.
type UserStore struct {
	mu         sync.RWMutex
	users      map[string]types.User
	byUsername map[string]string
}

// NewUserStore creates an empty user store
func NewUserStore() *UserStore {
	return &UserStore{
		users:      make(map[string]types.User),
		byUsername: make(map[string]string),
	}
}

func usernameKey(username string) string {
	return strings.ToLower(username)
}

func (s *UserStore) CreateUser(_ context.Context, user types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usernameKey(user.Username)
	if _, exists := s.byUsername[key]; exists {
		return storage.ErrConflict
	}
	if _, exists := s.users[user.ID]; exists {
		return storage.ErrConflict
	}
	s.users[user.ID] = user
	s.byUsername[key] = user.ID
	return nil
}

func (s *UserStore) GetUser(_ context.Context, id string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return types.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *UserStore) GetUserByUsername(_ context.Context, username string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[usernameKey(username)]
	if !ok {
		return types.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *UserStore) UpdateCredentials(_ context.Context, id string, creds types.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.Credentials = creds
	s.users[id] = user
	return nil
}

func (s *UserStore) Close() error { return nil }

// SessionStore keeps sessions in a sync.Map and drops them lazily on read
// once expired.
type SessionStore struct {
	sessions sync.Map
	now      func() time.Time
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

func (s *SessionStore) PutSession(_ context.Context, session types.Session) error {
	s.sessions.Store(session.Token, session)
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, token string) (types.Session, error) {
	value, ok := s.sessions.Load(token)
	if !ok {
		return types.Session{}, storage.ErrNotFound
	}
	session := value.(types.Session)
	if session.Expired(s.now()) {
		s.sessions.Delete(token)
		return types.Session{}, storage.ErrNotFound
	}
	return session, nil
}

func (s *SessionStore) DeleteSession(_ context.Context, token string) error {
	s.sessions.Delete(token)
	return nil
}

// Sweep removes every expired session and returns how many were dropped
func (s *SessionStore) Sweep() int {
	now := s.now()
	removed := 0
	s.sessions.Range(func(key, value any) bool {
		session := value.(types.Session)
		if session.Expired(now) {
			s.sessions.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

func (s *SessionStore) Close() error { return nil }
