// Package redis stores bearer-token sessions in Redis with native expiry
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/GriffinCanCode/Reze/backend/internal/storage"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "reze:session:"

// Options selects the Redis server
type Options struct {
	Addr     string
	Password string
	DB       int
}

// SessionStore implements storage.SessionStore on a redis client
type SessionStore struct {
	rdb *redis.Client
	now func() time.Time
}

// New connects to Redis and verifies the connection with PING
func New(ctx context.Context, opts Options) (*SessionStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewWithClient(rdb), nil
}

// NewWithClient wraps an existing client
func NewWithClient(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb, now: time.Now}
}

func sessionKey(token string) string {
	return keyPrefix + token
}

func (s *SessionStore) PutSession(ctx context.Context, session types.Session) error {
	ttl := storage.TTL(session, s.now())
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(session.Token), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (types.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.Session{}, storage.ErrNotFound
		}
		return types.Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	var session types.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return types.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if session.Expired(s.now()) {
		return types.Session{}, storage.ErrNotFound
	}
	return session, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.rdb.Close()
}
