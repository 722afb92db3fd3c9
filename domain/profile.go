package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetProfile    = "profile retrieved successfully"
	MessageSuccessUpdateProfile = "profile updated successfully"

	MessageFailedGetProfile    = "failed to retrieve profile"
	MessageFailedUpdateProfile = "failed to update profile"

	ErrInvalidProfile = errors.New("invalid profile update")
)

type (
	// UpdateProfileRequest is a partial update: nil fields are left alone.
	UpdateProfileRequest struct {
		DietaryPreferences *[]string `json:"dietary_preferences" validate:"omitempty,max=20,dive,required,max=100"`
		Goals              *[]string `json:"goals" validate:"omitempty,max=20,dive,required,max=200"`
		DefaultServings    *int      `json:"default_servings" validate:"omitempty,min=1,max=12"`
		CookingExperience  *string   `json:"cooking_experience" validate:"omitempty,oneof=beginner intermediate advanced"`
		Notes              *string   `json:"notes" validate:"omitempty,max=2000"`
	}

	ProfileResponse struct {
		ID                 string    `json:"id"`
		UserID             string    `json:"user_id"`
		DietaryPreferences []string  `json:"dietary_preferences"`
		Goals              []string  `json:"goals"`
		DefaultServings    int       `json:"default_servings"`
		CookingExperience  string    `json:"cooking_experience"`
		Notes              *string   `json:"notes,omitempty"`
		CreatedAt          time.Time `json:"created_at"`
		UpdatedAt          time.Time `json:"updated_at"`
	}
)
