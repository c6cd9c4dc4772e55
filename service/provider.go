package service

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"sheabot/model"
)

// ProviderID selects which hosted completion provider answers a turn.
type ProviderID string

const (
	ProviderOpenAI ProviderID = "openai"
	ProviderGemini ProviderID = "gemini"
)

// ParseProviderID validates a provider name from the request boundary.
// An empty value selects OpenAI, anything else unknown is rejected.
func ParseProviderID(s string) (ProviderID, error) {
	switch ProviderID(s) {
	case "":
		return ProviderOpenAI, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderGemini:
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unknown provider %q", s)
	}
}

// ChatMessage is one provider-agnostic history entry.
type ChatMessage struct {
	Role    model.MessageRole `json:"role"`
	Content string            `json:"content"`
}

// CompletionProvider generates a reply from an ordered history and an
// optional system instruction. Failure is a distinguishable error; callers
// decide whether to surface or degrade it.
type CompletionProvider interface {
	ID() ProviderID
	Complete(ctx context.Context, history []ChatMessage, systemPrompt string) (string, error)
}

// LLMProvider talks to any OpenAI-compatible chat completions endpoint.
// Gemini is reached the same way through its compatibility endpoint, so one
// implementation serves both providers.
type LLMProvider struct {
	id          ProviderID
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

func NewLLMProvider(id ProviderID, client *openai.Client, chatModel string) *LLMProvider {
	return &LLMProvider{
		id:          id,
		client:      client,
		model:       chatModel,
		temperature: 0.7,
		maxTokens:   1000,
	}
}

func (p *LLMProvider) ID() ProviderID {
	return p.id
}

func (p *LLMProvider) Complete(ctx context.Context, history []ChatMessage, systemPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    openai.F([]openai.ChatCompletionMessageParamUnion{}),
		Model:       openai.F(p.model),
		Temperature: openai.F(p.temperature),
		MaxTokens:   openai.Int(p.maxTokens),
	}

	if systemPrompt != "" {
		var content any = systemPrompt
		params.Messages.Value = append(params.Messages.Value, openai.ChatCompletionMessageParam{
			Role:    openai.F(openai.ChatCompletionMessageParamRoleSystem),
			Content: openai.F(content),
		})
	}
	for _, message := range history {
		role := openai.ChatCompletionMessageParamRoleUser
		if message.Role == model.RoleAssistant {
			role = openai.ChatCompletionMessageParamRoleAssistant
		}
		var content any = message.Content
		params.Messages.Value = append(params.Messages.Value, openai.ChatCompletionMessageParam{
			Role:    openai.F(role),
			Content: openai.F(content),
		})
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.id, err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "No response generated", nil
	}
	return completion.Choices[0].Message.Content, nil
}
