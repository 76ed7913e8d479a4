package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"contextchat/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// GetByIDAndUserID returns (nil, nil) when no matching project exists.
func (r *ProjectRepository) GetByIDAndUserID(projectID, userID string) (*model.Project, error) {
	var project model.Project
	if err := r.db.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project failed: %w", err)
	}
	return &project, nil
}
