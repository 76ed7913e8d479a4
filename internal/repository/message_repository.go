package repository

import (
	"fmt"

	"gorm.io/gorm"

	"contextchat/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListByConversationID returns the conversation's turns in transcript order
// (created_at ascending). A non-positive limit returns the whole transcript;
// context assembly needs every turn, so defaulting belongs to the handlers.
func (r *MessageRepository) ListByConversationID(conversationID string, limit int) ([]model.Message, error) {
	query := r.db.Where("conversation_id = ?", conversationID).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []model.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}
