package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sphere-events/sphere/internal/models"
	"github.com/sphere-events/sphere/internal/repository"
	"github.com/sphere-events/sphere/internal/rift"
)

func TestAuthService_Signup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.auth.Signup(ctx, models.SignupRequest{
		ExternalID:  "alice@example.com",
		Password:    "password123",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.BearerToken)
	assert.Equal(t, "alice@example.com", result.User.ExternalID)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Equal(t, models.RoleUser, result.User.Role)
	assert.NotEmpty(t, result.User.WalletAddress)

	// The fresh credential resolves to the mirrored record.
	user, err := env.auth.ResolveToken(ctx, result.BearerToken)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.NotEmpty(t, user.RiftUserID)
}

func TestAuthService_Signup_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Signup(context.Background(), models.SignupRequest{
		ExternalID: "not-an-email",
		Password:   "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestAuthService_Signup_Conflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.signup(t, "taken@example.com")

	_, err := env.auth.Signup(ctx, models.SignupRequest{
		ExternalID: "taken@example.com",
		Password:   "password123",
	})
	assert.ErrorIs(t, err, repository.ErrUserAlreadyExists)
}

func TestAuthService_Login_OverwritesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.signup(t, "bob@example.com")
	oldToken := user.BearerToken

	result, err := env.auth.Login(ctx, models.LoginRequest{
		ExternalID: "bob@example.com",
		Password:   "password123",
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, result.BearerToken)

	// Old credential is gone; new one resolves.
	_, err = env.auth.ResolveToken(ctx, oldToken)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	resolved, err := env.auth.ResolveToken(ctx, result.BearerToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.signup(t, "carol@example.com")

	_, err := env.auth.Login(ctx, models.LoginRequest{
		ExternalID: "carol@example.com",
		Password:   "wrong-password",
	})
	assert.ErrorIs(t, err, rift.ErrInvalidCredentials)
}

func TestAuthService_Login_SelfHealing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Account exists in the provider but not locally.
	_, err := env.provider.Signup(ctx, rift.SignupParams{
		ExternalID:  "ghost@example.com",
		Password:    "password123",
		Email:       "ghost@example.com",
		DisplayName: "Ghost",
	})
	require.NoError(t, err)

	result, err := env.auth.Login(ctx, models.LoginRequest{
		ExternalID: "ghost@example.com",
		Password:   "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "ghost@example.com", result.User.ExternalID)
	assert.Equal(t, "Ghost", result.User.Name)

	first, err := env.users.GetByExternalID(ctx, "ghost@example.com")
	require.NoError(t, err)

	// A second login reuses the recovered record instead of duplicating it.
	_, err = env.auth.Login(ctx, models.LoginRequest{
		ExternalID: "ghost@example.com",
		Password:   "password123",
	})
	require.NoError(t, err)

	second, err := env.users.GetByExternalID(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
