package domain

import (
	"errors"
	"time"
)

const DefaultFeedbackCategory = "general"

var (
	MessageSuccessSubmitFeedback = "feedback submitted, thank you"
	MessageSuccessGetFeedback    = "feedback retrieved successfully"

	MessageFailedSubmitFeedback = "failed to submit feedback"
	MessageFailedGetFeedback    = "failed to retrieve feedback"

	ErrEmptyFeedback = errors.New("feedback content is empty")
)

type (
	SubmitFeedbackRequest struct {
		Content  string `json:"content" validate:"required,max=5000"`
		Category string `json:"category" validate:"omitempty,max=50"`
		Rating   *int   `json:"rating" validate:"omitempty,min=1,max=5"`
	}

	FeedbackResponse struct {
		ID        string    `json:"id"`
		Content   string    `json:"content"`
		Category  string    `json:"category"`
		Rating    *int      `json:"rating,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}
)
