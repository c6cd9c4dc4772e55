package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sheabot/platform"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	ID             string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	ConversationId string      `gorm:"type:varchar(36);index:idx_conversation_id_created_at" json:"conversation_id"`
	Role           MessageRole `gorm:"type:varchar(16)" json:"role"`
	Content        string      `gorm:"type:text" json:"content"`
	AIProvider     string      `gorm:"type:varchar(16)" json:"ai_provider,omitempty"`
	CreatedAt      time.Time   `gorm:"index:idx_conversation_id_created_at" json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MessageStore is the gorm-backed store for messages.
type MessageStore struct{}

func (MessageStore) Create(message *Message) error {
	db := platform.DB
	if err := db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (MessageStore) Get(id string) (*Message, error) {
	var message Message
	db := platform.DB
	if err := db.Where("id = ?", id).First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &message, nil
}

// Recent returns up to limit messages of a conversation, newest first.
func (MessageStore) Recent(conversationId string, limit int) ([]Message, error) {
	var messages []Message
	db := platform.DB
	err := db.Where("conversation_id = ?", conversationId).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent messages: %w", err)
	}
	return messages, nil
}

// List returns all messages of a conversation in chronological order.
func (MessageStore) List(conversationId string) ([]Message, error) {
	var messages []Message
	db := platform.DB
	err := db.Where("conversation_id = ?", conversationId).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// UpdateContent edits the message text. Role is immutable after creation.
func (MessageStore) UpdateContent(id string, content string) error {
	db := platform.DB
	if err := db.Model(&Message{}).Where("id = ?", id).Update("content", content).Error; err != nil {
		return fmt.Errorf("failed to update message content: %w", err)
	}
	return nil
}

func (MessageStore) Delete(id string) error {
	db := platform.DB
	if err := db.Where("id = ?", id).Delete(&Message{}).Error; err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
