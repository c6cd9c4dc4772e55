package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sheabot/platform"
)

const DefaultConversationTitle = "New Conversation"

type Conversation struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserId        string    `gorm:"type:varchar(255);index:idx_user_id_last_message_at" json:"user_id"`
	Title         string    `gorm:"type:varchar(200)" json:"title"`
	LastMessageAt time.Time `gorm:"index:idx_user_id_last_message_at" json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Title == "" {
		c.Title = DefaultConversationTitle
	}
	if c.LastMessageAt.IsZero() {
		c.LastMessageAt = time.Now()
	}
	return nil
}

// ConversationStore is the gorm-backed store for conversations.
type ConversationStore struct{}

func (ConversationStore) Create(conversation *Conversation) error {
	db := platform.DB
	if err := db.Create(conversation).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (ConversationStore) Get(id string) (*Conversation, error) {
	var conversation Conversation
	db := platform.DB
	if err := db.Where("id = ?", id).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &conversation, nil
}

func (ConversationStore) ListByUser(userId string) ([]Conversation, error) {
	var conversations []Conversation
	db := platform.DB
	err := db.Where("user_id = ?", userId).
		Order("last_message_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

func (ConversationStore) UpdateTitle(id string, title string) error {
	db := platform.DB
	if err := db.Model(&Conversation{}).Where("id = ?", id).Update("title", title).Error; err != nil {
		return fmt.Errorf("failed to update conversation title: %w", err)
	}
	return nil
}

// Touch records that a message was appended at the given instant.
func (ConversationStore) Touch(id string, at time.Time) error {
	db := platform.DB
	if err := db.Model(&Conversation{}).Where("id = ?", id).Update("last_message_at", at).Error; err != nil {
		return fmt.Errorf("failed to update conversation last_message_at: %w", err)
	}
	return nil
}

// Delete removes the conversation and all of its messages in one
// transaction, so no orphan messages survive a partial failure.
func (ConversationStore) Delete(id string) error {
	db := platform.DB
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete conversation messages: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&Conversation{}).Error; err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		return nil
	})
}
