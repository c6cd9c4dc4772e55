package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sheabot/model"
)

const (
	historyWindow    = 10
	titleMaxRunes    = 50
	assistantPersona = "You are a helpful AI assistant."
)

var ErrEmptyContent = errors.New("message content is required")

// ConversationStore is the conversation persistence the workflow needs.
type ConversationStore interface {
	Create(conversation *model.Conversation) error
	Get(id string) (*model.Conversation, error)
	Touch(id string, at time.Time) error
}

// MessageStore is the message persistence the workflow needs.
type MessageStore interface {
	Create(message *model.Message) error
	Recent(conversationId string, limit int) ([]model.Message, error)
}

// SendResult is one completed chat turn.
type SendResult struct {
	UserMessage      *model.Message `json:"user_message"`
	AssistantMessage *model.Message `json:"assistant_message"`
	ConversationId   string         `json:"conversation_id"`
}

// ChatService runs the message-send workflow: persist the user's message,
// retrieve FAQ context, call the selected provider, persist the reply.
type ChatService struct {
	conversations ConversationStore
	messages      MessageStore
	retrieval     *RetrievalEngine
	providers     map[ProviderID]CompletionProvider
}

func NewChatService(
	conversations ConversationStore,
	messages MessageStore,
	retrieval *RetrievalEngine,
	providers map[ProviderID]CompletionProvider,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		retrieval:     retrieval,
		providers:     providers,
	}
}

// SendMessage appends one user/assistant message pair to the conversation,
// creating the conversation first when no id is given. A provider failure
// never loses the user's message: it is persisted as an assistant-role
// error message and the turn still counts.
func (s *ChatService) SendMessage(ctx context.Context, userId, conversationId, content string, providerId ProviderID) (*SendResult, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	provider, ok := s.providers[providerId]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", providerId)
	}

	if conversationId == "" {
		conversation := &model.Conversation{
			UserId: userId,
			Title:  deriveTitle(content),
		}
		if err := s.conversations.Create(conversation); err != nil {
			return nil, err
		}
		conversationId = conversation.ID
	} else {
		conversation, err := s.conversations.Get(conversationId)
		if err != nil {
			return nil, err
		}
		if conversation.UserId != userId {
			return nil, fmt.Errorf("conversation %s: %w", conversationId, model.ErrForbidden)
		}
	}

	userMessage := &model.Message{
		ConversationId: conversationId,
		Role:           model.RoleUser,
		Content:        content,
	}
	if err := s.messages.Create(userMessage); err != nil {
		return nil, err
	}

	relevantFAQs := s.retrieval.GetRelevantFAQs(ctx, content, DefaultRetrievalLimit)
	ragContext := BuildRAGContext(relevantFAQs)

	history, err := s.messages.Recent(conversationId, historyWindow)
	if err != nil {
		return nil, err
	}
	formattedHistory := make([]ChatMessage, 0, len(history))
	// Recent returns newest first; the provider wants chronological order.
	for i := len(history) - 1; i >= 0; i-- {
		role := model.RoleUser
		if history[i].Role == model.RoleAssistant {
			role = model.RoleAssistant
		}
		formattedHistory = append(formattedHistory, ChatMessage{
			Role:    role,
			Content: history[i].Content,
		})
	}

	systemPrompt := fmt.Sprintf("%s %s", assistantPersona, ragContext)
	reply, err := provider.Complete(ctx, formattedHistory, systemPrompt)
	if err != nil {
		logger.Warnf("[chat] provider %s failed for conversation %s, %s", providerId, conversationId, err)
		reply = fmt.Sprintf("Sorry, I couldn't get a response from %s: %s", providerId, err)
	}

	assistantMessage := &model.Message{
		ConversationId: conversationId,
		Role:           model.RoleAssistant,
		Content:        reply,
		AIProvider:     string(providerId),
	}
	if err := s.messages.Create(assistantMessage); err != nil {
		return nil, err
	}

	if err := s.conversations.Touch(conversationId, time.Now()); err != nil {
		return nil, err
	}

	return &SendResult{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		ConversationId:   conversationId,
	}, nil
}

// deriveTitle names a new conversation after the first 50 characters of its
// opening message.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxRunes {
		return content
	}
	return string(runes[:titleMaxRunes]) + "..."
}
