package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"commentId", "comment ID"},
		{"parentCommentId", "parent comment ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

// --- parseID ---

func TestParseID(t *testing.T) {
	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/items/42", http.StatusOK},
		{"/items/abc", http.StatusBadRequest},
		{"/items/0", http.StatusBadRequest},
		{"/items/-3", http.StatusBadRequest},
	}

	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == http.StatusBadRequest {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "Invalid ID", body["error"])
			}
		})
	}
}

// --- parseText / bodyText ---

func TestParseText(t *testing.T) {
	app := fiber.New()
	app.Post("/strict", func(c *fiber.Ctx) error {
		text, err := parseText(c)
		if err != nil {
			return nil
		}
		return c.SendString(text)
	})
	app.Post("/lenient", func(c *fiber.Ctx) error {
		return c.SendString("[" + bodyText(c) + "]")
	})

	send := func(path, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := send("/strict", `{"text":"hello"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send("/strict", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var fields map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fields))
	assert.Equal(t, []string{"This field is required."}, fields["text"])

	resp = send("/lenient", `not json`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

// --- statusFor ---

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewUnauthenticatedError("x"), http.StatusUnauthorized},
		{models.NewUnauthorizedError("x"), http.StatusUnauthorized},
		{models.NewNotFoundError("x"), http.StatusNotFound},
		{models.NewFieldError("text", "x"), http.StatusBadRequest},
		{models.NewConflictError("x"), http.StatusConflict},
		{models.NewUnavailableError("x", nil), http.StatusServiceUnavailable},
		{models.NewInternalError(errors.New("x")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
