package sqlstore

import (
	"context"
	"testing"

	"github.com/pliu/chatty-social/internal/models"
	"github.com/pliu/chatty-social/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	err := testStore.CreateUser(ctx, &models.User{ID: "alice", Name: "Alice"})
	require.NoError(t, err)

	// Test duplicate user
	err = testStore.CreateUser(ctx, &models.User{ID: "alice", Name: "Other"})
	assert.ErrorIs(t, err, store.ErrConflict)

	err = testStore.CreateUser(ctx, &models.User{Name: "No id"})
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestGetUser(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	createUsers(t, "alice")

	user, err := testStore.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "User alice", user.Name)

	_, err = testStore.GetUser(ctx, "nonexistent")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserExistsAndList(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	users, err := testStore.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	createUsers(t, "bob", "alice")

	ok, err := testStore.UserExists(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = testStore.UserExists(ctx, "zed")
	require.NoError(t, err)
	assert.False(t, ok)

	users, err = testStore.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].ID)
	assert.Equal(t, "bob", users[1].ID)
}
