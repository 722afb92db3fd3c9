package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ReceiptStatusPending   = "Pending"
	ReceiptStatusProcessed = "Processed"
	ReceiptStatusFailed    = "Failed"
)

type ReceiptScan struct {
	ID       uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	ImageURL string         `json:"image_url"`
	Status   string         `json:"status"`
	Results  datatypes.JSON `gorm:"type:jsonb" json:"results,omitempty"`
	Error    string         `json:"error,omitempty"`
	Timestamp
}

func (r *ReceiptScan) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
