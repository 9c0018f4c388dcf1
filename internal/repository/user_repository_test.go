package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sphere-events/sphere/internal/models"
)

func TestUserRepository_Create_DuplicateExternalID(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	repos.createUser(t, "dup@example.com")

	err := repos.users.Create(ctx, &models.User{
		ID:         uuid.New(),
		ExternalID: "dup@example.com",
		Email:      "dup@example.com",
		Role:       models.RoleUser,
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserRepository_Create_DuplicateBearerToken(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	user := repos.createUser(t, "first@example.com")

	// A bearer credential resolves to exactly one user.
	err := repos.users.Create(ctx, &models.User{
		ID:          uuid.New(),
		ExternalID:  "second@example.com",
		Email:       "second@example.com",
		Role:        models.RoleUser,
		BearerToken: user.BearerToken,
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserRepository_GetByBearerToken(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	user := repos.createUser(t, "holder@example.com")

	got, err := repos.users.GetByBearerToken(ctx, user.BearerToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repos.users.GetByBearerToken(ctx, "stale-token")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_UpdateSession_OverwritesCredential(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	user := repos.createUser(t, "login@example.com")
	oldToken := user.BearerToken

	require.NoError(t, repos.users.UpdateSession(ctx, user.ID, "fresh-token", "0xabc"))

	got, err := repos.users.GetByBearerToken(ctx, "fresh-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "0xabc", got.WalletAddress)

	// The overwritten credential no longer resolves.
	_, err = repos.users.GetByBearerToken(ctx, oldToken)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	user := repos.createUser(t, "promote@example.com")

	require.NoError(t, repos.users.UpdateRole(ctx, user.ID, models.RoleOrganizer))

	got, err := repos.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizer, got.Role)

	err = repos.users.UpdateRole(ctx, uuid.New(), models.RoleOrganizer)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
