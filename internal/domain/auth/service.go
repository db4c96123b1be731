// Package auth registers accounts, checks passwords and issues the opaque
// bearer tokens the client attaches to settings calls.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/id"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/utils"
	"github.com/GriffinCanCode/Reze/backend/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTokenTTL matches the seven day lifetime of issued tokens
	DefaultTokenTTL = 7 * 24 * time.Hour
	tokenBytes      = 32
)

// Options tunes a Service
type Options struct {
	TokenTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int
}

// Service implements signup, login, logout and token checks
type Service struct {
	users    storage.UserStore
	sessions storage.SessionStore
	ttl      time.Duration
	cost     int
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	now      func() time.Time

	// compared against when the username is unknown so both paths pay for bcrypt
	dummyHash []byte
}

// New creates an auth service. metrics may be nil.
func New(users storage.UserStore, sessions storage.SessionStore, opts Options, logger *logging.Logger, metrics *monitoring.Metrics) *Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("reze-dummy-password"), opts.BcryptCost)
	return &Service{
		users:     users,
		sessions:  sessions,
		ttl:       opts.TokenTTL,
		cost:      opts.BcryptCost,
		logger:    logger.Named("auth"),
		metrics:   metrics,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// Signup creates an account with empty search credentials and the default
// model, then opens a session for it.
func (s *Service) Signup(ctx context.Context, req types.AuthRequest) (types.AuthResponse, error) {
	resp, err := s.signup(ctx, req)
	s.record("signup", err)
	return resp, err
}

func (s *Service) signup(ctx context.Context, req types.AuthRequest) (types.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return types.AuthResponse{}, errMissingFields
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		return types.AuthResponse{}, validationError(err)
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return types.AuthResponse{}, validationError(err)
	}

	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return types.AuthResponse{}, errUserExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return types.AuthResponse{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return types.AuthResponse{}, fmt.Errorf("password hashing failed: %w", err)
	}

	user := types.User{
		ID:           id.NewUserID().String(),
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
		Credentials:  types.Credentials{OpenRouterModel: types.DefaultModel},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return types.AuthResponse{}, errUserExists
		}
		return types.AuthResponse{}, fmt.Errorf("create user: %w", err)
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return types.AuthResponse{}, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return types.AuthResponse{Success: true, Token: session.Token, User: user}, nil
}

// Login checks a username and password and opens a new session
func (s *Service) Login(ctx context.Context, req types.AuthRequest) (types.AuthResponse, error) {
	resp, err := s.login(ctx, req)
	s.record("login", err)
	return resp, err
}

func (s *Service) login(ctx context.Context, req types.AuthRequest) (types.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return types.AuthResponse{}, errMissingFields
	}
	// Malformed input gets the same answer as a wrong password
	if utils.ValidateUsername(req.Username) != nil || utils.ValidatePassword(req.Password) != nil {
		return types.AuthResponse{}, errBadLogin
	}

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, storage.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return types.AuthResponse{}, errBadLogin
	}
	if err != nil {
		return types.AuthResponse{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return types.AuthResponse{}, errBadLogin
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return types.AuthResponse{}, err
	}

	s.logger.Debug("user logged in", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return types.AuthResponse{Success: true, Token: session.Token, User: user}, nil
}

// Logout revokes the session behind token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		s.record("logout", err)
		return fmt.Errorf("revoke session: %w", err)
	}
	s.record("logout", nil)
	return nil
}

// Authenticate resolves a bearer token to its user
func (s *Service) Authenticate(ctx context.Context, token string) (types.User, error) {
	if token == "" {
		return types.User{}, errNoSession
	}
	session, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return types.User{}, errNoSession
	}
	if err != nil {
		return types.User{}, fmt.Errorf("lookup session: %w", err)
	}
	if session.Expired(s.now()) {
		_ = s.sessions.DeleteSession(ctx, token)
		return types.User{}, errNoSession
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		_ = s.sessions.DeleteSession(ctx, token)
		return types.User{}, errNoSession
	}
	if err != nil {
		return types.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *Service) openSession(ctx context.Context, userID string) (types.Session, error) {
	token, err := generateToken()
	if err != nil {
		return types.Session{}, err
	}
	now := s.now().UTC()
	session := types.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.PutSession(ctx, session); err != nil {
		return types.Session{}, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

func (s *Service) record(action string, err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUserExists):
		result = "rejected"
	case errors.Is(err, ErrInvalidCredentials):
		result = "denied"
	default:
		result = "error"
	}
	s.metrics.RecordAuth(action, result)
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
