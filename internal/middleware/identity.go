package middleware

import (
	"github.com/gofiber/fiber/v3"
)

// userIDKey is the request-local key holding the authenticated user ID.
const userIDKey = "userID"

// NewIdentity extracts the caller identity from the X-User-ID header and
// stores it in request locals. Authentication itself is an upstream
// collaborator (a gateway validates the header); this service only needs
// the resulting identity. Requests without the header pass through with an
// empty identity — individual routes decide whether that is fatal.
func NewIdentity() fiber.Handler {
	return func(c fiber.Ctx) error {
		raw := c.Get("X-User-ID")
		if raw == "" {
			return c.Next()
		}

		userID, errMsg := ValidateUserID(raw)
		if errMsg != "" {
			return ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user ID for this request, or "" when the
// caller is anonymous.
func UserID(c fiber.Ctx) string {
	if v, ok := c.Locals(userIDKey).(string); ok {
		return v
	}
	return ""
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity() fiber.Handler {
	return func(c fiber.Ctx) error {
		if UserID(c) == "" {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		}
		return c.Next()
	}
}
