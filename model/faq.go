package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"sheabot/platform"

	"gorm.io/gorm/clause"
)

// Vector stores an embedding as a JSON array column.
type Vector []float64

func (v Vector) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}

func (v *Vector) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	var data []byte
	switch raw := value.(type) {
	case []byte:
		data = raw
	case string:
		data = []byte(raw)
	default:
		return fmt.Errorf("unsupported embedding column type %T", value)
	}
	if len(data) == 0 {
		*v = nil
		return nil
	}
	return json.Unmarshal(data, v)
}

func (Vector) GormDataType() string {
	return "json"
}

type FAQ struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Question  string `gorm:"type:varchar(500);uniqueIndex" json:"question"`
	Answer    string `gorm:"type:text" json:"answer"`
	Category  string `gorm:"type:varchar(255)" json:"category"`
	Embedding Vector `json:"-"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64  `gorm:"autoUpdateTime" json:"updated_at"`
}

// FAQStore is the gorm-backed store for FAQ entries.
type FAQStore struct{}

// UpsertByQuestion inserts the entry or, when the question already exists,
// overwrites its answer and category. The embedding column is only written
// when the incoming entry carries one, so a failed re-embed never knocks an
// existing entry out of retrieval.
func (FAQStore) UpsertByQuestion(faq *FAQ) error {
	db := platform.DB
	columns := []string{"answer", "category"}
	if len(faq.Embedding) > 0 {
		columns = append(columns, "embedding")
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(faq).Error
	if err != nil {
		return fmt.Errorf("failed to upsert FAQ: %w", err)
	}
	return nil
}

// ListEmbedded returns only entries holding a stored embedding; entries
// without one are not retrieval candidates.
func (FAQStore) ListEmbedded() ([]FAQ, error) {
	var faqs []FAQ
	db := platform.DB
	err := db.Where("embedding IS NOT NULL").Find(&faqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded FAQs: %w", err)
	}
	return faqs, nil
}

// ListPending returns entries still missing an embedding.
func (FAQStore) ListPending() ([]FAQ, error) {
	var faqs []FAQ
	db := platform.DB
	err := db.Where("embedding IS NULL").Find(&faqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending FAQs: %w", err)
	}
	return faqs, nil
}

func (FAQStore) SetEmbedding(id uint, embedding Vector) error {
	db := platform.DB
	if err := db.Model(&FAQ{}).Where("id = ?", id).Update("embedding", embedding).Error; err != nil {
		return fmt.Errorf("failed to store FAQ embedding: %w", err)
	}
	return nil
}
