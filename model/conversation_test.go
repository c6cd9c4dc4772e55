package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sheabot/platform"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Conversation{}, &Message{}, &FAQ{}))
	platform.DB = db
	return db
}

func TestDeleteConversationCascades(t *testing.T) {
	setupTestDB(t)
	conversations := ConversationStore{}
	messages := MessageStore{}

	conversation := &Conversation{UserId: "guest", Title: "doomed"}
	require.NoError(t, conversations.Create(conversation))
	require.NotEmpty(t, conversation.ID)
	for i := 0; i < 3; i++ {
		require.NoError(t, messages.Create(&Message{
			ConversationId: conversation.ID,
			Role:           RoleUser,
			Content:        "hello",
		}))
	}

	other := &Conversation{UserId: "guest"}
	require.NoError(t, conversations.Create(other))
	require.NoError(t, messages.Create(&Message{
		ConversationId: other.ID,
		Role:           RoleUser,
		Content:        "keep me",
	}))

	require.NoError(t, conversations.Delete(conversation.ID))

	// No orphan messages survive, and the conversation itself is gone.
	remaining, err := messages.List(conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	_, err = conversations.Get(conversation.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The sibling conversation is untouched.
	kept, err := messages.List(other.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
	_, err = conversations.Get(other.ID)
	assert.NoError(t, err)
}

func TestConversationDefaults(t *testing.T) {
	setupTestDB(t)
	conversations := ConversationStore{}

	conversation := &Conversation{UserId: "guest"}
	require.NoError(t, conversations.Create(conversation))
	assert.Equal(t, DefaultConversationTitle, conversation.Title)
	assert.False(t, conversation.LastMessageAt.IsZero())
}

func TestDeleteMessageIndividually(t *testing.T) {
	setupTestDB(t)
	conversations := ConversationStore{}
	messages := MessageStore{}

	conversation := &Conversation{UserId: "guest"}
	require.NoError(t, conversations.Create(conversation))
	message := &Message{ConversationId: conversation.ID, Role: RoleUser, Content: "bye"}
	require.NoError(t, messages.Create(message))

	require.NoError(t, messages.Delete(message.ID))
	_, err := messages.Get(message.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
