package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verifierFunc func(ctx context.Context, token string) (uint, error)

func (f verifierFunc) VerifyAccess(ctx context.Context, token string) (uint, error) {
	return f(ctx, token)
}

func TestAuthRequired(t *testing.T) {
	verifier := verifierFunc(func(_ context.Context, token string) (uint, error) {
		switch token {
		case "good":
			return 123, nil
		case "outage":
			return 0, models.NewUnavailableError("token store unavailable", errors.New("dial tcp"))
		default:
			return 0, errors.New("token is expired")
		}
	})

	app := fiber.New()
	app.Get("/test", AuthRequired(verifier), func(c *fiber.Ctx) error {
		fromCtx, _ := c.UserContext().Value(UserIDKey).(uint)
		return c.JSON(fiber.Map{"userID": c.Locals("userID"), "ctxUserID": fromCtx})
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{"Happy Path", "Bearer good", http.StatusOK, 123},
		{"Missing Header", "", http.StatusUnauthorized, 0},
		{"Invalid Scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0},
		{"Empty Token", "Bearer ", http.StatusUnauthorized, 0},
		{"Rejected Token", "Bearer expired", http.StatusUnauthorized, 0},
		{"Store Outage", "Bearer outage", http.StatusServiceUnavailable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]uint
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedUserID, body["userID"])
				assert.Equal(t, tt.expectedUserID, body["ctxUserID"])
			}
		})
	}
}
