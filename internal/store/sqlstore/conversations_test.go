package sqlstore

import (
	"context"
	"testing"

	"github.com/pliu/chatty-social/internal/models"
	"github.com/pliu/chatty-social/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateConversation(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	createUsers(t, "a", "b")

	conv := &models.Conversation{ID: "c1", Participants: []string{"a", "b", "a"}}
	require.NoError(t, testStore.CreateConversation(ctx, conv))
	assert.Equal(t, []string{"a", "b"}, conv.Participants)

	err := testStore.CreateConversation(ctx, &models.Conversation{ID: "c1", Participants: []string{"a", "b"}})
	assert.ErrorIs(t, err, store.ErrConflict)

	err = testStore.CreateConversation(ctx, &models.Conversation{ID: "c2", Participants: []string{"a"}})
	assert.ErrorIs(t, err, store.ErrInvalid)

	err = testStore.CreateConversation(ctx, &models.Conversation{ID: "c3", Participants: []string{"a", "ghost"}})
	assert.ErrorIs(t, err, store.ErrNotFound)

	failed := &models.Conversation{Participants: []string{"a", "ghost"}}
	err = testStore.CreateConversation(ctx, failed)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, failed.ID, "a failed create leaves the caller's conversation untouched")
	assert.Equal(t, []string{"a", "ghost"}, failed.Participants)

	generated := &models.Conversation{Participants: []string{"b", "a"}}
	require.NoError(t, testStore.CreateConversation(ctx, generated))
	assert.NotEmpty(t, generated.ID)

	got, err := testStore.GetConversation(ctx, generated.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got.Participants)
	assert.Empty(t, got.Messages)

	_, err = testStore.GetConversation(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppendMessage(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	createUsers(t, "a", "b", "c")
	require.NoError(t, testStore.CreateConversation(ctx, &models.Conversation{ID: "c1", Participants: []string{"a", "b"}}))

	msg, err := testStore.AppendMessage(ctx, "c1", "a", "hi")
	require.NoError(t, err)
	assert.Equal(t, "a", msg.SenderID)

	_, err = testStore.AppendMessage(ctx, "c1", "b", "hello")
	require.NoError(t, err)

	messages, err := testStore.ListMessages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, "b", messages[1].SenderID)
	assert.False(t, messages[0].CreatedAt.IsZero())

	_, err = testStore.AppendMessage(ctx, "missing", "a", "hi")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppendMessageFromNonParticipant(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()
	ctx := context.Background()

	createUsers(t, "a", "b", "c")
	require.NoError(t, testStore.CreateConversation(ctx, &models.Conversation{ID: "c1", Participants: []string{"a", "b"}}))

	before, err := testStore.ListMessages(ctx, "c1")
	require.NoError(t, err)

	_, err = testStore.AppendMessage(ctx, "c1", "c", "intruder")
	assert.ErrorIs(t, err, store.ErrNotParticipant)

	after, err := testStore.ListMessages(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}
