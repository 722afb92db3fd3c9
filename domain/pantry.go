package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

const (
	PantryStatusSafe    = "Safe"
	PantryStatusWarning = "Warning"
	PantryStatusExpired = "Expired"
)

var (
	MessageSuccessAddPantryItem     = "pantry item added successfully"
	MessageSuccessAddPantryItems    = "pantry items added successfully"
	MessageSuccessUpdatePantryItem  = "pantry item updated successfully"
	MessageSuccessDeletePantryItem  = "pantry item deleted successfully"
	MessageSuccessClearPantry       = "pantry cleared successfully"
	MessageSuccessGetPantryItems    = "pantry items retrieved successfully"
	MessageSuccessConsumePantryItem = "pantry item consumed successfully"
	MessageSuccessScanReceipt       = "receipt processed successfully"
	MessageSuccessConfirmReceipt    = "receipt items saved successfully"

	MessageFailedAddPantryItem     = "failed to add pantry item"
	MessageFailedUpdatePantryItem  = "failed to update pantry item"
	MessageFailedDeletePantryItem  = "failed to delete pantry item"
	MessageFailedClearPantry       = "failed to clear pantry"
	MessageFailedGetPantryItems    = "failed to retrieve pantry items"
	MessageFailedConsumePantryItem = "failed to consume pantry item"
	MessageFailedScanReceipt       = "failed to process receipt"
	MessageFailedConfirmReceipt    = "failed to save receipt items"

	ErrPantryItemNotFound   = errors.New("pantry item not found")
	ErrInsufficientQuantity = errors.New("requested amount exceeds available quantity")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidExpiryDate    = errors.New("invalid expiry date, expected YYYY-MM-DD")
	ErrInvalidImageFormat   = errors.New("invalid image format")
	ErrReceiptScanNotFound  = errors.New("receipt scan not found")
	ErrNoReceiptItems       = errors.New("no items found on receipt")
)

type (
	NutritionRequest struct {
		StandardUnit string  `json:"standard_unit"`
		Calories     float64 `json:"calories" validate:"gte=0"`
		Protein      float64 `json:"protein" validate:"gte=0"`
		Carbs        float64 `json:"carbs" validate:"gte=0"`
		Fat          float64 `json:"fat" validate:"gte=0"`
		Fiber        float64 `json:"fiber" validate:"gte=0"`
	}

	AddPantryItemRequest struct {
		Name       string            `json:"name" validate:"required,max=200"`
		Quantity   float64           `json:"quantity" validate:"required,gt=0"`
		Unit       string            `json:"unit" validate:"required,max=50"`
		Category   string            `json:"category" validate:"omitempty,max=100"`
		Notes      string            `json:"notes" validate:"omitempty,max=1000"`
		ExpiryDate string            `json:"expiry_date" validate:"omitempty"`
		Price      float64           `json:"price" validate:"gte=0"`
		Nutrition  *NutritionRequest `json:"nutrition" validate:"omitempty"`
	}

	AddPantryItemsRequest struct {
		Items []AddPantryItemRequest `json:"items" validate:"required,min=1,dive"`
	}

	// UpdatePantryItemRequest only overwrites fields that are set.
	UpdatePantryItemRequest struct {
		Name       string            `json:"name" validate:"omitempty,max=200"`
		Quantity   *float64          `json:"quantity" validate:"omitempty,gt=0"`
		Unit       string            `json:"unit" validate:"omitempty,max=50"`
		Category   string            `json:"category" validate:"omitempty,max=100"`
		Notes      string            `json:"notes" validate:"omitempty,max=1000"`
		ExpiryDate string            `json:"expiry_date" validate:"omitempty"`
		Price      *float64          `json:"price" validate:"omitempty,gte=0"`
		Nutrition  *NutritionRequest `json:"nutrition" validate:"omitempty"`
	}

	ConsumePantryItemRequest struct {
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}

	ConsumePantryItemResponse struct {
		ID        string  `json:"id"`
		Remaining float64 `json:"remaining"`
		Deleted   bool    `json:"deleted"`
	}

	NutritionResponse struct {
		StandardUnit string  `json:"standard_unit"`
		Calories     float64 `json:"calories"`
		Protein      float64 `json:"protein"`
		Carbs        float64 `json:"carbs"`
		Fat          float64 `json:"fat"`
		Fiber        float64 `json:"fiber"`
	}

	PantryItemResponse struct {
		ID           string            `json:"id"`
		Name         string            `json:"name"`
		Quantity     float64           `json:"quantity"`
		Unit         string            `json:"unit"`
		Category     string            `json:"category"`
		StandardName string            `json:"standard_name"`
		Notes        string            `json:"notes"`
		ExpiryDate   *time.Time        `json:"expiry_date,omitempty"`
		Price        float64           `json:"price"`
		Status       string            `json:"status"`
		Nutrition    NutritionResponse `json:"nutrition"`
		CreatedAt    time.Time         `json:"created_at"`
		UpdatedAt    time.Time         `json:"updated_at"`
	}

	// PantryEnrichment is what the model returns when asked to standardize an item.
	PantryEnrichment struct {
		StandardName string            `json:"standard_name"`
		Category     string            `json:"category"`
		Notes        string            `json:"notes"`
		ExpiryDays   int               `json:"expiry_days"`
		Nutrition    NutritionResponse `json:"nutrition"`
	}

	ScanReceiptRequest struct {
		ReceiptImage *multipart.FileHeader `json:"receipt_image" form:"receipt_image" validate:"required"`
	}

	ReceiptItem struct {
		Name          string  `json:"name"`
		Price         float64 `json:"price"`
		Quantity      float64 `json:"quantity"`
		ShelfLifeDays int     `json:"shelf_life_days"`
	}

	ScanReceiptResponse struct {
		ScanID   string        `json:"scan_id"`
		ImageURL string        `json:"image_url,omitempty"`
		Status   string        `json:"status"`
		Items    []ReceiptItem `json:"items"`
	}

	ConfirmReceiptItem struct {
		Name          string  `json:"name" validate:"required,max=200"`
		Quantity      float64 `json:"quantity" validate:"required,gt=0"`
		Unit          string  `json:"unit" validate:"required,max=50"`
		Price         float64 `json:"price" validate:"gte=0"`
		ShelfLifeDays int     `json:"shelf_life_days" validate:"gte=0"`
	}

	ConfirmReceiptRequest struct {
		ScanID string               `json:"scan_id" validate:"required,uuid"`
		Items  []ConfirmReceiptItem `json:"items" validate:"required,min=1,dive"`
	}
)
