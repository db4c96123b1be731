package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/goccy/go-yaml"
)

// Screen is the screen a session is on
type Screen string

const (
	ViewAuth    Screen = "auth"
	ViewBrowser Screen = "browser"
)

// ErrSignedOut is returned by calls that need a signed-in session
var ErrSignedOut = errors.New("not signed in")

// SavedSession is what a SessionStore persists between runs
type SavedSession struct {
	Token string     `yaml:"token"`
	User  types.User `yaml:"user"`
}

// SessionStore persists the signed-in session. Load returns nil, nil when
// nothing is stored.
type SessionStore interface {
	Load() (*SavedSession, error)
	Save(SavedSession) error
	Clear() error
}

// FileStore keeps the session in a YAML file readable only by its owner
type FileStore struct {
	Path string
}

// DefaultSessionPath is ~/.reze/session.yaml, or a relative path when the
// home directory is unknown.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".reze", "session.yaml")
	}
	return filepath.Join(home, ".reze", "session.yaml")
}

func (f FileStore) Load() (*SavedSession, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var saved SavedSession
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return &saved, nil
}

func (f FileStore) Save(saved SavedSession) error {
	data, err := yaml.Marshal(saved)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (f FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// MemoryStore keeps the session for the life of the process
type MemoryStore struct {
	mu    sync.Mutex
	saved *SavedSession
}

func (m *MemoryStore) Load() (*SavedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return nil, nil
	}
	cp := *m.saved
	return &cp, nil
}

func (m *MemoryStore) Save(saved SavedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &saved
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = nil
	return nil
}

// Session is the client's signed-in state. It starts on the auth view and
// moves to the browser view once a token and a user are both known.
type Session struct {
	api   *APIClient
	store SessionStore

	mu    sync.RWMutex
	view  Screen
	token string
	user  types.User
}

// NewSession creates a signed-out session
func NewSession(api *APIClient, store SessionStore) *Session {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Session{api: api, store: store, view: ViewAuth}
}

// Restore picks up a previously saved session. A missing token or user
// leaves the session on the auth view.
func (s *Session) Restore() error {
	saved, err := s.store.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if saved == nil || saved.Token == "" || saved.User.ID == "" {
		s.view, s.token, s.user = ViewAuth, "", types.User{}
		return nil
	}
	s.view, s.token, s.user = ViewBrowser, saved.Token, saved.User
	return nil
}

// Login signs in and persists the session
func (s *Session) Login(ctx context.Context, username, password string) error {
	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return s.signIn(resp)
}

// Signup creates an account and signs in with it
func (s *Session) Signup(ctx context.Context, username, password string) error {
	resp, err := s.api.Signup(ctx, username, password)
	if err != nil {
		return err
	}
	return s.signIn(resp)
}

func (s *Session) signIn(resp *types.AuthResponse) error {
	if err := s.store.Save(SavedSession{Token: resp.Token, User: resp.User}); err != nil {
		return err
	}
	s.mu.Lock()
	s.view, s.token, s.user = ViewBrowser, resp.Token, resp.User
	s.mu.Unlock()
	return nil
}

// Logout returns to the auth view and forgets the saved session. The
// server-side revocation is attempted first; a token the server no longer
// knows is not an error.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.view, s.token, s.user = ViewAuth, "", types.User{}
	s.mu.Unlock()

	var revokeErr error
	if token != "" {
		revokeErr = s.api.Logout(ctx, token)
		var apiErr *APIError
		if errors.As(revokeErr, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			revokeErr = nil
		}
	}
	return errors.Join(revokeErr, s.store.Clear())
}

// UpdateSettings saves creds on the server, then in the local profile
func (s *Session) UpdateSettings(ctx context.Context, creds types.Credentials) error {
	token, user, ok := s.current()
	if !ok {
		return ErrSignedOut
	}

	req := types.SettingsRequest{UserID: user.ID, Credentials: creds}
	if _, err := s.api.UpdateSettings(ctx, token, req); err != nil {
		return err
	}
	return s.setCredentials(token, creds)
}

// RefreshSettings replaces the local profile's credentials with the
// server's copy.
func (s *Session) RefreshSettings(ctx context.Context) (types.Credentials, error) {
	token, _, ok := s.current()
	if !ok {
		return types.Credentials{}, ErrSignedOut
	}

	creds, err := s.api.Settings(ctx, token)
	if err != nil {
		return types.Credentials{}, err
	}
	return creds, s.setCredentials(token, creds)
}

func (s *Session) setCredentials(token string, creds types.Credentials) error {
	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		return ErrSignedOut
	}
	s.user.Credentials = creds
	saved := SavedSession{Token: s.token, User: s.user}
	s.mu.Unlock()

	return s.store.Save(saved)
}

func (s *Session) current() (string, types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.user, s.view == ViewBrowser
}

// View returns the current view
func (s *Session) View() Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// User returns the signed-in profile, zero when signed out
func (s *Session) User() types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Credentials returns the keys attached to research and chat requests
func (s *Session) Credentials() types.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Credentials
}
