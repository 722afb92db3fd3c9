package middleware

import (
	"strings"

	"smart-kitchen/domain"
	"smart-kitchen/internal/api/presenters"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// OwnerHeader carries the id of the user a request acts for. Authentication
// happens upstream of this service.
const OwnerHeader = "X-User-ID"

type (
	Middleware interface {
		OwnerMiddleware() fiber.Handler
	}

	middleware struct{}
)

func NewMiddleware() Middleware {
	return &middleware{}
}

// OwnerMiddleware stores the validated owner id in Locals("user_id").
func (m *middleware) OwnerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(OwnerHeader))
		id, err := uuid.Parse(raw)
		if raw == "" || err != nil || id == uuid.Nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedMissingOwner, domain.ErrMissingOwner)
		}
		c.Locals("user_id", id.String())
		return c.Next()
	}
}
