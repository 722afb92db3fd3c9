package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ContentTypeLLMCache = "llm_cache"
	ContentTypeFeedback = "feedback"
)

// UserContent is a generic typed row. UserID is nil for content not tied to a user.
type UserContent struct {
	ID       uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID   *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Type     string         `gorm:"index" json:"type"`
	Data     datatypes.JSON `gorm:"type:jsonb" json:"data"`
	Metadata datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	Timestamp
}

func (c *UserContent) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
