package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-service/internal/service"
	"diary-service/internal/store"
)

func TestRegisterReturnsNewUser(t *testing.T) {
	dir := service.NewUserDirectory(store.NewMemoryUserStore(), discardLogger())
	ctx := context.Background()

	user, err := dir.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	second, err := dir.Register(ctx, "bob", "bob@example.com", "secret2")
	require.NoError(t, err)
	assert.NotEqual(t, user.ID, second.ID)
	assert.Equal(t, "bob", second.Username)
}

func TestRegisterRejectsReusedUsernameOrEmail(t *testing.T) {
	dir := service.NewUserDirectory(store.NewMemoryUserStore(), discardLogger())
	ctx := context.Background()
	_, err := dir.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = dir.Register(ctx, "alice", "new@example.com", "secret1")
	assert.ErrorIs(t, err, service.ErrConflict)
	_, err = dir.Register(ctx, "alicia", "alice@example.com", "secret1")
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	dir := service.NewUserDirectory(store.NewMemoryUserStore(), discardLogger())
	_, err := dir.Register(context.Background(), "alice", "alice@example.com", strings.Repeat("p", 73))
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	dir := service.NewUserDirectory(store.NewMemoryUserStore(), discardLogger())
	ctx := context.Background()
	registered, err := dir.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	user, err := dir.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = dir.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = dir.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	found, err := dir.Lookup(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
	_, err = dir.Lookup(ctx, 404)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
