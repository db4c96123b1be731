// Package settings reads and replaces the provider credentials stored on a
// user's profile.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/utils"
	"github.com/GriffinCanCode/Reze/backend/internal/storage"
	"go.uber.org/zap"
)

// UpdatedMessage acknowledges a successful update
const UpdatedMessage = "Settings updated successfully"

var (
	ErrValidation = errors.New("invalid settings")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("user not found")
)

type requestError struct {
	kind error
	msg  string
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return e.kind }

var (
	errForbidden = &requestError{kind: ErrForbidden, msg: "Cannot update settings of another user"}
	errNotFound  = &requestError{kind: ErrNotFound, msg: "User not found"}
)

// Service is safe for concurrent use
type Service struct {
	users  storage.UserStore
	logger *logging.Logger
}

func New(users storage.UserStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{users: users, logger: logger.Named("settings")}
}

// Get returns the stored credentials of userID
func (s *Service) Get(ctx context.Context, userID string) (types.Credentials, error) {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return types.Credentials{}, errNotFound
	}
	if err != nil {
		return types.Credentials{}, fmt.Errorf("lookup user: %w", err)
	}
	return user.Credentials, nil
}

// Update replaces all four credentials of the authenticated user. A body
// naming a different userId is refused.
func (s *Service) Update(ctx context.Context, userID string, req types.SettingsRequest) error {
	if req.UserID != "" && req.UserID != userID {
		return errForbidden
	}
	if err := validate(req.Credentials); err != nil {
		return err
	}

	err := s.users.UpdateCredentials(ctx, userID, req.Credentials)
	if errors.Is(err, storage.ErrNotFound) {
		return errNotFound
	}
	if err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}

	s.logger.Info("settings updated",
		zap.String("user_id", userID),
		logging.Secret("google_api_key", req.GoogleAPIKey),
		logging.Secret("cse_id", req.CseID),
		logging.Secret("openrouter_api_key", req.OpenRouterAPIKey),
		logging.Model(req.OpenRouterModel),
	)
	return nil
}

func validate(creds types.Credentials) error {
	fields := []struct {
		value string
		name  string
	}{
		{creds.GoogleAPIKey, "googleApiKey"},
		{creds.CseID, "cseId"},
		{creds.OpenRouterAPIKey, "openRouterApiKey"},
		{creds.OpenRouterModel, "openRouterModel"},
	}
	for _, f := range fields {
		if err := utils.ValidateCredential(f.value, f.name); err != nil {
			return &requestError{kind: ErrValidation, msg: err.Error()}
		}
	}
	return nil
}
