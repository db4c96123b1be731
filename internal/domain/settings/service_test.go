package settings

import (
	"context"
	"strings"
	"testing"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/GriffinCanCode/Reze/backend/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	users := memory.NewUserStore()
	require.NoError(t, users.CreateUser(context.Background(), types.User{
		ID:          "usr_1",
		Username:    "alice",
		Credentials: types.Credentials{OpenRouterModel: types.DefaultModel},
	}))
	return New(users, nil)
}

func TestUpdateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	creds := types.Credentials{GoogleAPIKey: "g-key", CseID: "cx", OpenRouterAPIKey: "sk-or", OpenRouterModel: "openai/gpt-4o"}
	require.NoError(t, svc.Update(ctx, "usr_1", types.SettingsRequest{UserID: "usr_1", Credentials: creds}))

	got, err := svc.Get(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	// userId may be omitted; the token decides
	require.NoError(t, svc.Update(ctx, "usr_1", types.SettingsRequest{}))
	got, err = svc.Get(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, types.Credentials{}, got)
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	err := svc.Update(ctx, "usr_1", types.SettingsRequest{UserID: "usr_2"})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Update(ctx, "usr_missing", types.SettingsRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "User not found", err.Error())

	err = svc.Update(ctx, "usr_1", types.SettingsRequest{Credentials: types.Credentials{GoogleAPIKey: " padded "}})
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.Update(ctx, "usr_1", types.SettingsRequest{Credentials: types.Credentials{OpenRouterModel: strings.Repeat("m", 300)}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Get(ctx, "usr_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
