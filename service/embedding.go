package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"sheabot/model"
)

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (model.Vector, error)
}

// OpenAIEmbedder embeds text through an OpenAI-compatible embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

func NewOpenAIEmbedder(client *openai.Client, embeddingModel string) *OpenAIEmbedder {
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{
		client: client,
		model:  embeddingModel,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (model.Vector, error) {
	// Newlines degrade embedding quality for short queries.
	text = strings.ReplaceAll(text, "\n", " ")

	res, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.F[openai.EmbeddingNewParamsInputUnion](
			openai.EmbeddingNewParamsInputArrayOfStrings([]string{text})),
		Model: openai.F(openai.EmbeddingModel(e.model)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(res.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}
	return model.Vector(res.Data[0].Embedding), nil
}
