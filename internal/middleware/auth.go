// Package middleware provides the Fiber middleware shared by all routes:
// authentication, structured logging, metrics, tracing and rate limiting.
package middleware

import (
	"context"
	"strings"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AccessVerifier resolves a raw access token to the user it was issued for.
type AccessVerifier interface {
	VerifyAccess(ctx context.Context, token string) (uint, error)
}

// AuthRequired enforces a valid "Authorization: Bearer <access token>" header.
// On success the user ID is stored in c.Locals("userID") and the user context.
func AuthRequired(v AccessVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authentication credentials were not provided."))
		}

		userID, err := v.VerifyAccess(c.UserContext(), token)
		if err != nil {
			if models.HasCode(err, models.CodeUnavailable) {
				return models.RespondWithError(c, fiber.StatusServiceUnavailable, err)
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Given token not valid for any token type"))
		}

		c.Locals("userID", userID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}
