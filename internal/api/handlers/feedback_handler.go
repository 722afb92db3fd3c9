package handlers

import (
	"smart-kitchen/domain"
	"smart-kitchen/internal/api/presenters"
	"smart-kitchen/pkg/feedback"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	FeedbackHandler interface {
		SubmitFeedback(c *fiber.Ctx) error
		GetFeedback(c *fiber.Ctx) error
	}

	feedbackHandler struct {
		feedbackService feedback.FeedbackService
		validator       *validator.Validate
	}
)

func NewFeedbackHandler(feedbackService feedback.FeedbackService, validator *validator.Validate) FeedbackHandler {
	return &feedbackHandler{
		feedbackService: feedbackService,
		validator:       validator,
	}
}

func (h *feedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.SubmitFeedbackRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSubmitFeedback, err)
	}

	res, err := h.feedbackService.Submit(c.Context(), *req, userID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedSubmitFeedback, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSubmitFeedback)
}

func (h *feedbackHandler) GetFeedback(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.feedbackService.List(c.Context(), userID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetFeedback, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetFeedback)
}
