package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileUpload is the metadata row for a file stored in the object bucket.
// ExtractedText is the only field the pipeline mutates: a bounded cache of
// the content derived from the stored bytes, distinct from any identifier.
type FileUpload struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID     string    `gorm:"size:36;not null;index" json:"project_id"`
	UserID        string    `gorm:"size:36;not null;index" json:"user_id"`
	Filename      string    `gorm:"size:256;not null" json:"filename"`
	FilePath      string    `gorm:"size:512;not null" json:"file_path"`
	FileType      string    `gorm:"size:128" json:"file_type"`
	FileSize      int64     `json:"file_size"`
	ExtractedText string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (f *FileUpload) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// FileProcessJob is the queue payload for asynchronous file processing. It
// mirrors the fields of the synchronous processing request.
type FileProcessJob struct {
	FileID   string `json:"fileId"`
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}
