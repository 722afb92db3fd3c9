package presenters

import (
	"errors"

	"smart-kitchen/domain"
	"smart-kitchen/pkg/llm"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	res := Response{
		Status:  false,
		Message: message,
	}
	if err != nil {
		res.Error = err.Error()
	}
	if statusCode >= fiber.StatusInternalServerError {
		log.Errorw(message, "path", c.Path(), "status", statusCode, "error", err)
	}
	return c.Status(statusCode).JSON(res)
}

// ServiceError writes err with the status StatusFor picks for it.
func ServiceError(c *fiber.Ctx, message string, err error) error {
	return ErrorResponse(c, StatusFor(err), message, err)
}

// StatusFor maps an error returned by a service to an HTTP status.
func StatusFor(err error) int {
	var (
		validationErrs validator.ValidationErrors
		extractionErr  *llm.ExtractionError
		generationErr  *llm.GenerationError
	)

	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, domain.ErrMissingOwner):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrInsufficientQuantity):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrPantryItemNotFound),
		errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrReceiptScanNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &validationErrs),
		errors.Is(err, domain.ErrParseUUID),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidExpiryDate),
		errors.Is(err, domain.ErrInvalidImageFormat),
		errors.Is(err, domain.ErrNoIngredients),
		errors.Is(err, domain.ErrEmptyFeedback),
		errors.Is(err, domain.ErrInvalidProfile),
		errors.Is(err, domain.ErrInvalidRating):
		return fiber.StatusBadRequest
	case errors.As(err, &extractionErr),
		errors.Is(err, domain.ErrNoReceiptItems),
		errors.Is(err, domain.ErrNoRecipesReturn):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &generationErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
