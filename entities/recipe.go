package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RecipeTypeGenerated = "generated"
	RecipeTypeManual    = "manual"
)

type RecipeIngredient struct {
	Name         string     `json:"name"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit"`
	Notes        string     `json:"notes,omitempty"`
	PantryItemID *uuid.UUID `json:"pantry_item_id,omitempty"`
}

type RecipeData struct {
	Name            string             `json:"name"`
	Ingredients     []RecipeIngredient `json:"ingredients"`
	Instructions    []string           `json:"instructions"`
	PreparationTime int                `json:"preparation_time"`
	Difficulty      string             `json:"difficulty"`
	Servings        int                `json:"servings"`
	Category        string             `json:"category"`
	Price           float64            `json:"price"`
	Nutrition       Nutrition          `json:"nutrition"`
}

type Recipe struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	IsSaved    bool      `gorm:"index" json:"is_saved"`
	RecipeType string    `json:"recipe_type"`

	Data datatypes.JSONType[RecipeData] `gorm:"type:jsonb" json:"data"`

	Rating           *float64   `json:"rating,omitempty"`
	DifficultyRating *float64   `json:"difficulty_rating,omitempty"`
	WouldMakeAgain   *bool      `json:"would_make_again,omitempty"`
	Review           *string    `json:"review,omitempty"`
	RatedAt          *time.Time `json:"rated_at,omitempty"`
	Timestamp
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
