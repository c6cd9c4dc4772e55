package platform

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// NewLLMClient builds a client for any OpenAI-compatible endpoint. Both chat
// providers and the embedder are constructed through here so every client
// carries its own base URL and key instead of sharing a global.
func NewLLMClient(baseURL, apiKey string) *openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return openai.NewClient(opts...)
}
