package middleware

import (
	"strings"

	"medreminder/internal/models"
	"medreminder/internal/response"

	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "user"

// SessionResolver maps a bearer token to its user.
type SessionResolver interface {
	Resolve(token string) (*models.User, bool)
}

// SessionRequired rejects requests without a live session and stores the
// session's user in the Fiber context for subsequent handlers.
func SessionRequired(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return response.Error(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		user, ok := sessions.Resolve(token)
		if !ok {
			return response.Error(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>", or
// returns "" when the header is missing or malformed.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUser returns the user stored by SessionRequired.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userLocalsKey).(*models.User)
	return user, ok && user != nil
}
