package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CookingBeginner     = "beginner"
	CookingIntermediate = "intermediate"
	CookingAdvanced     = "advanced"

	DefaultServings = 2
)

type UserProfile struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primary_key" json:"id"`
	UserID             uuid.UUID                   `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	DietaryPreferences datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"dietary_preferences"`
	Goals              datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"goals"`
	DefaultServings    int                         `gorm:"default:2" json:"default_servings"`
	CookingExperience  string                      `gorm:"default:'beginner'" json:"cooking_experience"`
	Notes              *string                     `json:"notes,omitempty"`
	Timestamp
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
