package repository

import (
	"fmt"

	"gorm.io/gorm"

	"contextchat/internal/model"
)

type FileUploadRepository struct {
	db *gorm.DB
}

func NewFileUploadRepository(db *gorm.DB) *FileUploadRepository {
	return &FileUploadRepository{db: db}
}

func (r *FileUploadRepository) ListByProjectIDAndUserID(projectID, userID string) ([]model.FileUpload, error) {
	var files []model.FileUpload
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("created_at ASC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list files failed: %w", err)
	}
	return files, nil
}

// UpdateExtractedText writes the bounded derived-content field. The write is
// idempotent: re-storing the same value for the same file is safe.
func (r *FileUploadRepository) UpdateExtractedText(fileID, text string) error {
	if err := r.db.Model(&model.FileUpload{}).
		Where("id = ?", fileID).
		Update("extracted_text", text).Error; err != nil {
		return fmt.Errorf("update extracted text failed: %w", err)
	}
	return nil
}
