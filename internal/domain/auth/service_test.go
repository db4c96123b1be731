package auth

import (
	"context"
	"testing"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/id"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/GriffinCanCode/Reze/backend/internal/storage/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*Service, *memory.UserStore, *monitoring.Metrics) {
	t.Helper()
	users := memory.NewUserStore()
	metrics := monitoring.NewMetrics()
	svc := New(users, memory.NewSessionStore(), Options{BcryptCost: bcrypt.MinCost}, nil, metrics)
	return svc, users, metrics
}

func TestSignupLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newService(t)

	resp, err := svc.Signup(ctx, types.AuthRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, id.IsValidPrefixed(resp.User.ID, id.UserPrefix))
	assert.Equal(t, types.DefaultModel, resp.User.OpenRouterModel)
	assert.Empty(t, resp.User.GoogleAPIKey)
	assert.Empty(t, resp.User.CseID)

	stored, err := users.GetUser(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	login, err := svc.Login(ctx, types.AuthRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEqual(t, resp.Token, login.Token)

	user, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
}

func TestSignupErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Signup(ctx, types.AuthRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     types.AuthRequest
		wantErr error
		wantMsg string
	}{
		{"missing username", types.AuthRequest{Password: "x"}, ErrValidation, "Username and password are required"},
		{"missing password", types.AuthRequest{Username: "bob"}, ErrValidation, "Username and password are required"},
		{"whitespace username", types.AuthRequest{Username: "bo b", Password: "x"}, ErrValidation, ""},
		{"duplicate", types.AuthRequest{Username: "alice", Password: "other"}, ErrUserExists, "User already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _, metrics := newService(t)
	_, err := svc.Signup(ctx, types.AuthRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	for _, req := range []types.AuthRequest{
		{Username: "alice", Password: "wrong"},
		{Username: "nobody", Password: "secret123"},
	} {
		_, err := svc.Login(ctx, req)
		require.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "Invalid username or password", err.Error())
	}

	_, err = svc.Login(ctx, types.AuthRequest{Username: "alice"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.AuthAttempts.WithLabelValues("login", "denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthAttempts.WithLabelValues("signup", "success")))
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	resp, err := svc.Signup(ctx, types.AuthRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))
	_, err = svc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	assert.NoError(t, svc.Logout(ctx, "unknown"))
}

func TestAuthenticateExpired(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	resp, err := svc.Signup(ctx, types.AuthRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(DefaultTokenTTL + time.Minute) }
	_, err = svc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestGenerateToken(t *testing.T) {
	a, err := generateToken()
	require.NoError(t, err)
	b, err := generateToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}
