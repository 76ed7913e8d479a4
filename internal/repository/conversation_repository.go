package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"contextchat/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetByIDAndUserID returns (nil, nil) when no matching conversation exists.
func (r *ConversationRepository) GetByIDAndUserID(conversationID, userID string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.Where("id = ? AND user_id = ?", conversationID, userID).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conversation, nil
}

func (r *ConversationRepository) ListByProjectIDAndUserID(projectID, userID string) ([]model.Conversation, error) {
	var conversations []model.Conversation
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("updated_at DESC").Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return conversations, nil
}
