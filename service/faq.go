package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"sheabot/model"
)

const defaultFAQCategory = "General"

// FAQStore is the FAQ persistence the import path needs.
type FAQStore interface {
	UpsertByQuestion(faq *model.FAQ) error
	ListPending() ([]model.FAQ, error)
	SetEmbedding(id uint, embedding model.Vector) error
}

// FAQRecord is one record of a bulk-import file.
type FAQRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// ImportResult reports what a bulk import did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Pending  int `json:"pending"`
}

// FAQService imports FAQ entries and keeps their embeddings current.
type FAQService struct {
	faqs     FAQStore
	embedder Embedder
}

func NewFAQService(faqs FAQStore, embedder Embedder) *FAQService {
	return &FAQService{
		faqs:     faqs,
		embedder: embedder,
	}
}

// ImportFromFile reads a JSON array of FAQ records and imports it.
func (s *FAQService) ImportFromFile(ctx context.Context, filePath string) (*ImportResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read FAQ file %s: %w", filePath, err)
	}
	var records []FAQRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse FAQ file %s: %w", filePath, err)
	}
	return s.Import(ctx, records)
}

// Import upserts each record by question text, computing the question
// embedding at import time. Records missing a question or answer are
// skipped, never failing the batch. An embedding failure keeps any
// previously stored vector; a brand-new entry stays out of retrieval until
// the re-embed job (or a later import) fills it in.
func (s *FAQService) Import(ctx context.Context, records []FAQRecord) (*ImportResult, error) {
	logger.Infof("[faq] starting import of %d records", len(records))
	result := &ImportResult{}

	for _, record := range records {
		if record.Question == "" || record.Answer == "" {
			result.Skipped++
			continue
		}
		category := record.Category
		if category == "" {
			category = defaultFAQCategory
		}

		embedding, err := s.embedder.Embed(ctx, record.Question)
		if err != nil {
			logger.Warnf("[faq] failed to embed question %q, %s", record.Question, err)
			result.Pending++
			embedding = nil
		}

		faq := &model.FAQ{
			Question:  record.Question,
			Answer:    record.Answer,
			Category:  category,
			Embedding: embedding,
		}
		if err := s.faqs.UpsertByQuestion(faq); err != nil {
			return result, err
		}
		result.Imported++
	}

	logger.Infof("[faq] imported %d records, skipped %d, pending embedding %d",
		result.Imported, result.Skipped, result.Pending)
	return result, nil
}

// ReembedPending retries the embedding of entries that still lack one.
func (s *FAQService) ReembedPending(ctx context.Context) (int, error) {
	pending, err := s.faqs.ListPending()
	if err != nil {
		return 0, err
	}

	embedded := 0
	for _, faq := range pending {
		embedding, err := s.embedder.Embed(ctx, faq.Question)
		if err != nil {
			logger.Warnf("[faq] re-embed failed for FAQ %d, %s", faq.ID, err)
			continue
		}
		if err := s.faqs.SetEmbedding(faq.ID, embedding); err != nil {
			return embedded, err
		}
		embedded++
	}
	return embedded, nil
}
