package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"sheabot/model"
	"sheabot/platform"
)

var logger = platform.Logger

const (
	// DefaultRetrievalLimit is how many FAQ candidates a chat turn pulls in.
	DefaultRetrievalLimit = 3

	// relevanceThreshold is applied to the truncated top-limit set, not the
	// full candidate pool. A high-similarity entry ranked below the limit is
	// never returned even when it clears the threshold.
	relevanceThreshold = 0.3
)

// CosineSimilarity returns the angular similarity of two equal-length
// vectors in [-1, 1]. A zero-norm vector yields 0 rather than NaN.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// RankedFAQ is one retrieval candidate scored against the query.
type RankedFAQ struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Similarity float64 `json:"similarity"`
}

// FAQSource lists the FAQ entries eligible for retrieval.
type FAQSource interface {
	ListEmbedded() ([]model.FAQ, error)
}

// RetrievalEngine ranks stored FAQ entries against a query embedding.
type RetrievalEngine struct {
	embedder Embedder
	faqs     FAQSource
}

func NewRetrievalEngine(embedder Embedder, faqs FAQSource) *RetrievalEngine {
	return &RetrievalEngine{
		embedder: embedder,
		faqs:     faqs,
	}
}

// GetRelevantFAQs embeds the query, scores every stored entry holding an
// embedding, and returns the top candidates above the relevance threshold.
// It never fails the chat turn: any error degrades to an empty result.
func (e *RetrievalEngine) GetRelevantFAQs(ctx context.Context, query string, limit int) []RankedFAQ {
	if limit <= 0 {
		limit = DefaultRetrievalLimit
	}

	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warnf("[retrieval] failed to embed query, %s", err)
		return nil
	}

	faqs, err := e.faqs.ListEmbedded()
	if err != nil {
		logger.Warnf("[retrieval] failed to load FAQ entries, %s", err)
		return nil
	}

	ranked := make([]RankedFAQ, 0, len(faqs))
	for _, faq := range faqs {
		if len(faq.Embedding) == 0 {
			continue
		}
		similarity, err := CosineSimilarity(queryEmbedding, faq.Embedding)
		if err != nil {
			logger.Warnf("[retrieval] skipping FAQ %d, %s", faq.ID, err)
			continue
		}
		ranked = append(ranked, RankedFAQ{
			Question:   faq.Question,
			Answer:     faq.Answer,
			Similarity: similarity,
		})
	}

	// Ties keep their original order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	relevant := ranked[:0]
	for _, faq := range ranked {
		if faq.Similarity > relevanceThreshold {
			relevant = append(relevant, faq)
		}
	}
	return relevant
}

// BuildRAGContext formats ranked candidates into the instruction block
// handed to the completion provider. Pure formatting, empty in empty out.
func BuildRAGContext(relevantFAQs []RankedFAQ) string {
	if len(relevantFAQs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Here is some relevant information from our FAQ database to help you answer the user's question:\n\n")
	for i, faq := range relevantFAQs {
		sb.WriteString(fmt.Sprintf("FAQ %d:\nQuestion: %s\nAnswer: %s\n\n", i+1, faq.Question, faq.Answer))
	}
	sb.WriteString("Please use this information if relevant to provide an accurate answer. If the information doesn't help, answer normally based on your knowledge.")
	return sb.String()
}
