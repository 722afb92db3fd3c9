package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Nutrition values are scaled to StandardUnit.
type Nutrition struct {
	StandardUnit string  `json:"standard_unit"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	Fiber        float64 `json:"fiber"`
}

func (n Nutrition) IsEmpty() bool {
	return n.StandardUnit == "" && n.Calories == 0 && n.Protein == 0 &&
		n.Carbs == 0 && n.Fat == 0 && n.Fiber == 0
}

type PantryItem struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Name         string     `json:"name"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit"`
	Category     string     `json:"category"`
	StandardName string     `json:"standard_name"`
	Notes        string     `json:"notes"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	Price        float64    `json:"price"`

	Nutrition datatypes.JSONType[Nutrition] `gorm:"type:jsonb" json:"nutrition"`
	Timestamp
}

func (p *PantryItem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
