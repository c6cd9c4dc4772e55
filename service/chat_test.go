package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheabot/model"
)

type memConversations struct {
	items map[string]*model.Conversation
	seq   int
}

func newMemConversations() *memConversations {
	return &memConversations{items: map[string]*model.Conversation{}}
}

func (s *memConversations) Create(conversation *model.Conversation) error {
	s.seq++
	if conversation.ID == "" {
		conversation.ID = fmt.Sprintf("conv-%d", s.seq)
	}
	if conversation.Title == "" {
		conversation.Title = model.DefaultConversationTitle
	}
	if conversation.LastMessageAt.IsZero() {
		conversation.LastMessageAt = time.Now()
	}
	s.items[conversation.ID] = conversation
	return nil
}

func (s *memConversations) Get(id string) (*model.Conversation, error) {
	conversation, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, model.ErrNotFound)
	}
	return conversation, nil
}

func (s *memConversations) Touch(id string, at time.Time) error {
	conversation, ok := s.items[id]
	if !ok {
		return fmt.Errorf("conversation %s: %w", id, model.ErrNotFound)
	}
	conversation.LastMessageAt = at
	return nil
}

type memMessages struct {
	items []*model.Message
	seq   int
}

func (s *memMessages) Create(message *model.Message) error {
	s.seq++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", s.seq)
	}
	message.CreatedAt = time.Unix(int64(s.seq), 0)
	s.items = append(s.items, message)
	return nil
}

// Recent mirrors the store contract: newest first, at most limit entries.
func (s *memMessages) Recent(conversationId string, limit int) ([]model.Message, error) {
	var matched []model.Message
	for i := len(s.items) - 1; i >= 0 && len(matched) < limit; i-- {
		if s.items[i].ConversationId == conversationId {
			matched = append(matched, *s.items[i])
		}
	}
	return matched, nil
}

func (s *memMessages) byConversation(conversationId string) []*model.Message {
	var matched []*model.Message
	for _, m := range s.items {
		if m.ConversationId == conversationId {
			matched = append(matched, m)
		}
	}
	return matched
}

type fakeProvider struct {
	id         ProviderID
	reply      string
	err        error
	gotHistory []ChatMessage
	gotSystem  string
}

func (p *fakeProvider) ID() ProviderID {
	return p.id
}

func (p *fakeProvider) Complete(ctx context.Context, history []ChatMessage, systemPrompt string) (string, error) {
	p.gotHistory = history
	p.gotSystem = systemPrompt
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type chatFixture struct {
	conversations *memConversations
	messages      *memMessages
	provider      *fakeProvider
	service       *ChatService
}

func newChatFixture(faqs []model.FAQ) *chatFixture {
	f := &chatFixture{
		conversations: newMemConversations(),
		messages:      &memMessages{},
		provider:      &fakeProvider{id: ProviderOpenAI, reply: "assistant reply"},
	}
	retrieval := NewRetrievalEngine(
		&fakeEmbedder{vec: model.Vector{1, 0}},
		&fakeFAQSource{faqs: faqs},
	)
	f.service = NewChatService(f.conversations, f.messages, retrieval, map[ProviderID]CompletionProvider{
		ProviderOpenAI: f.provider,
	})
	return f
}

func TestSendMessageCreatesConversation(t *testing.T) {
	f := newChatFixture(nil)

	result, err := f.service.SendMessage(context.Background(), "guest", "", "Hello there", ProviderOpenAI)
	require.NoError(t, err)
	require.NotEmpty(t, result.ConversationId)

	conversation, err := f.conversations.Get(result.ConversationId)
	require.NoError(t, err)
	assert.Equal(t, "guest", conversation.UserId)
	assert.Equal(t, "Hello there", conversation.Title)
	assert.Len(t, f.conversations.items, 1)

	messages := f.messages.byConversation(result.ConversationId)
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, "Hello there", messages[0].Content)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)
	assert.Equal(t, "assistant reply", messages[1].Content)
	assert.Equal(t, string(ProviderOpenAI), messages[1].AIProvider)
	assert.Empty(t, messages[0].AIProvider)

	assert.Equal(t, result.UserMessage.ID, messages[0].ID)
	assert.Equal(t, result.AssistantMessage.ID, messages[1].ID)
}

func TestSendMessageTitleTruncation(t *testing.T) {
	f := newChatFixture(nil)
	content := strings.Repeat("ab", 30) // 60 characters

	result, err := f.service.SendMessage(context.Background(), "guest", "", content, ProviderOpenAI)
	require.NoError(t, err)

	conversation, err := f.conversations.Get(result.ConversationId)
	require.NoError(t, err)
	assert.Equal(t, content[:50]+"...", conversation.Title)
}

func TestDeriveTitleMultibyte(t *testing.T) {
	content := strings.Repeat("日", 51)
	title := deriveTitle(content)
	assert.Equal(t, strings.Repeat("日", 50)+"...", title)

	assert.Equal(t, "short", deriveTitle("short"))
	exactly50 := strings.Repeat("x", 50)
	assert.Equal(t, exactly50, deriveTitle(exactly50))
}

func TestSendMessageEmptyContent(t *testing.T) {
	f := newChatFixture(nil)

	_, err := f.service.SendMessage(context.Background(), "guest", "", "", ProviderOpenAI)
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Empty(t, f.conversations.items)
	assert.Empty(t, f.messages.items)
}

func TestSendMessageUnknownProvider(t *testing.T) {
	f := newChatFixture(nil)

	_, err := f.service.SendMessage(context.Background(), "guest", "", "hello", ProviderID("claude"))
	assert.Error(t, err)
	assert.Empty(t, f.messages.items)
}

func TestSendMessageConversationNotFound(t *testing.T) {
	f := newChatFixture(nil)

	_, err := f.service.SendMessage(context.Background(), "guest", "missing", "hello", ProviderOpenAI)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, f.messages.items)
}

func TestSendMessageForeignConversation(t *testing.T) {
	f := newChatFixture(nil)
	require.NoError(t, f.conversations.Create(&model.Conversation{ID: "c1", UserId: "someone-else"}))

	_, err := f.service.SendMessage(context.Background(), "guest", "c1", "hello", ProviderOpenAI)
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.Empty(t, f.messages.items)
}

func TestSendMessageProviderFailure(t *testing.T) {
	f := newChatFixture(nil)
	f.provider.err = errors.New("rate limited")

	before := time.Now()
	result, err := f.service.SendMessage(context.Background(), "guest", "", "hello", ProviderOpenAI)
	require.NoError(t, err)

	// The turn still produced both messages; the failure is visible chat
	// content, not a dropped reply.
	require.NotNil(t, result.UserMessage)
	require.NotNil(t, result.AssistantMessage)
	assert.Equal(t, model.RoleAssistant, result.AssistantMessage.Role)
	assert.Contains(t, result.AssistantMessage.Content, "openai")
	assert.Contains(t, result.AssistantMessage.Content, "rate limited")

	conversation, err := f.conversations.Get(result.ConversationId)
	require.NoError(t, err)
	assert.False(t, conversation.LastMessageAt.Before(before))
}

func TestSendMessageHistoryChronologicalAndWindowed(t *testing.T) {
	f := newChatFixture(nil)
	require.NoError(t, f.conversations.Create(&model.Conversation{ID: "c1", UserId: "guest"}))

	for i := 0; i < 11; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		require.NoError(t, f.messages.Create(&model.Message{
			ConversationId: "c1",
			Role:           role,
			Content:        fmt.Sprintf("m%d", i),
		}))
	}

	_, err := f.service.SendMessage(context.Background(), "guest", "c1", "latest", ProviderOpenAI)
	require.NoError(t, err)

	// 12 stored user/assistant turns, but only the 10 most recent reach the
	// provider, oldest first, ending with the just-saved user message.
	require.Len(t, f.provider.gotHistory, 10)
	assert.Equal(t, "m2", f.provider.gotHistory[0].Content)
	assert.Equal(t, "latest", f.provider.gotHistory[9].Content)
	assert.Equal(t, model.RoleUser, f.provider.gotHistory[9].Role)
	for i := 0; i < 9; i++ {
		expected := model.RoleUser
		if (i+2)%2 == 1 {
			expected = model.RoleAssistant
		}
		assert.Equal(t, expected, f.provider.gotHistory[i].Role, "history index %d", i)
	}
}

func TestSendMessageSystemPromptCarriesRAGContext(t *testing.T) {
	f := newChatFixture([]model.FAQ{
		{ID: 1, Question: "What is SheaBot?", Answer: "A chat assistant.", Embedding: embeddingWithSimilarity(0.9)},
	})

	_, err := f.service.SendMessage(context.Background(), "guest", "", "what are you?", ProviderOpenAI)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(f.provider.gotSystem, assistantPersona))
	assert.Contains(t, f.provider.gotSystem, "What is SheaBot?")
	assert.Contains(t, f.provider.gotSystem, "A chat assistant.")
}

func TestSendMessageNoRAGContext(t *testing.T) {
	f := newChatFixture(nil)

	_, err := f.service.SendMessage(context.Background(), "guest", "", "hello", ProviderOpenAI)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.provider.gotSystem, assistantPersona))
	assert.NotContains(t, f.provider.gotSystem, "FAQ")
}
