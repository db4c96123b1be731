// Package sqlite persists users and their provider credentials in SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/GriffinCanCode/Reze/backend/internal/storage"
)

const memoryDSN = ":memory:"

// UserStore implements storage.UserStore backed by SQLite
type UserStore struct {
	db *sql.DB
}

// New opens (or creates) a SQLite user store at path. ":memory:" keeps the
// database in process.
func New(path string) (*UserStore, error) {
	if path != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == memoryDSN {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	s := &UserStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *UserStore) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	google_api_key TEXT NOT NULL DEFAULT '',
	cse_id TEXT NOT NULL DEFAULT '',
	openrouter_api_key TEXT NOT NULL DEFAULT '',
	openrouter_model TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases underlying resources
func (s *UserStore) Close() error {
	return s.db.Close()
}

func (s *UserStore) CreateUser(ctx context.Context, user types.User) error {
	now := time.Now().UnixNano()
	created := user.CreatedAt.UnixNano()
	if user.CreatedAt.IsZero() {
		created = now
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, username, password_hash, google_api_key, cse_id, openrouter_api_key, openrouter_model, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash,
		user.GoogleAPIKey, user.CseID, user.OpenRouterAPIKey, user.OpenRouterModel,
		created, now)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const selectUser = `SELECT id, username, password_hash, google_api_key, cse_id, openrouter_api_key, openrouter_model, created_at FROM users`

func (s *UserStore) GetUser(ctx context.Context, id string) (types.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (types.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, selectUser+` WHERE username = ?`, username))
}

func (s *UserStore) UpdateCredentials(ctx context.Context, id string, creds types.Credentials) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE users SET google_api_key = ?, cse_id = ?, openrouter_api_key = ?, openrouter_model = ?, updated_at = ?
WHERE id = ?`,
		creds.GoogleAPIKey, creds.CseID, creds.OpenRouterAPIKey, creds.OpenRouterModel,
		time.Now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	var created int64
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash,
		&user.GoogleAPIKey, &user.CseID, &user.OpenRouterAPIKey, &user.OpenRouterModel, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, storage.ErrNotFound
	}
	if err != nil {
		return types.User{}, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = time.Unix(0, created).UTC()
	return user, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
