package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is an agent configuration owned by a user: instruction text plus a
// model selection. The pipeline reads it; project-settings CRUD lives in the
// platform layer.
type Project struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;not null;index" json:"user_id"`
	Name         string    `gorm:"size:256;not null" json:"name"`
	SystemPrompt string    `gorm:"type:text" json:"system_prompt"`
	LLMProvider  string    `gorm:"size:32" json:"llm_provider"`
	LLMModel     string    `gorm:"size:64" json:"llm_model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Project) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
