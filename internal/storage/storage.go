// Package storage defines the persistence capabilities used by the auth and
// settings domains. Drivers live in the memory, sqlite and redis subpackages.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
)

var (
	// ErrNotFound is returned when a user or session does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a username is already taken
	ErrConflict = errors.New("already exists")
)

// UserStore persists accounts and their provider credentials
type UserStore interface {
	CreateUser(ctx context.Context, user types.User) error
	GetUser(ctx context.Context, id string) (types.User, error)
	GetUserByUsername(ctx context.Context, username string) (types.User, error)
	UpdateCredentials(ctx context.Context, id string, creds types.Credentials) error
	Close() error
}

// SessionStore maps bearer tokens to sessions. Expired sessions must read
// as ErrNotFound.
type SessionStore interface {
	PutSession(ctx context.Context, session types.Session) error
	GetSession(ctx context.Context, token string) (types.Session, error)
	DeleteSession(ctx context.Context, token string) error
	Close() error
}

// TTL returns the remaining lifetime of a session at now, never negative
func TTL(session types.Session, now time.Time) time.Duration {
	if d := session.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
