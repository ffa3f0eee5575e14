package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/pitcrewhq/pitcrew/pkg/errors"
)

func TestUserServiceGetOrCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.users.GetOrCreate(ctx, "lead@x.com", "Avery Lead")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, "lead@x.com", first.Email)
	require.Equal(t, "Avery Lead", first.FullName)
	require.True(t, first.IsActive)

	// Same email resolves to the same row; the stored name is never replaced.
	second, err := env.users.GetOrCreate(ctx, "LEAD@X.com ", "Someone Else")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Avery Lead", second.FullName)

	var count int64
	require.NoError(t, env.db.Table("users").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUserServiceGetOrCreateRequiresEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.GetOrCreate(context.Background(), "   ", "Nameless")
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	require.Equal(t, apperrors.ErrBadRequest.Code, appErr.Code)
}

func TestUserServiceGetByEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.GetByEmail(ctx, "ghost@x.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	created, err := env.users.GetOrCreate(ctx, "real@x.com", "")
	require.NoError(t, err)

	found, err := env.users.GetByEmail(ctx, "Real@X.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
}

func TestUserServiceRegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Register(ctx, RegisterUserInput{
		Email:    "driver@x.com",
		Password: "topsecret99",
		FullName: "Dana Driver",
	})
	require.NoError(t, err)
	require.True(t, user.HasCredentials())
	require.NotEqual(t, "topsecret99", user.Password)

	_, err = env.users.Register(ctx, RegisterUserInput{
		Email:    "driver@x.com",
		Password: "another",
	})
	require.ErrorIs(t, err, ErrUserAlreadyRegistered)

	authed, err := env.users.Authenticate(ctx, "driver@x.com", "topsecret99")
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)
	require.NotNil(t, authed.LastLoginAt)

	_, err = env.users.Authenticate(ctx, "driver@x.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = env.users.Authenticate(ctx, "nobody@x.com", "topsecret99")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserServiceRegisterClaimsInvitedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A row created through the lazy path has no credentials yet.
	invited, err := env.users.GetOrCreate(ctx, "late@x.com", "")
	require.NoError(t, err)
	require.False(t, invited.HasCredentials())

	registered, err := env.users.Register(ctx, RegisterUserInput{
		Email:    "late@x.com",
		Password: "finallyhere1",
		FullName: "Late Arrival",
	})
	require.NoError(t, err)
	require.Equal(t, invited.ID, registered.ID)
	require.True(t, registered.HasCredentials())
	require.Equal(t, "Late Arrival", registered.FullName)
}
