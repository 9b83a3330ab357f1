package server

import (
	"fmt"
	"net/http"
	"testing"

	"agora/internal/mail"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupBody() map[string]string {
	return map[string]string{
		"username": "jane_doe",
		"email":    "jane@example.com",
		"name":     "Jane",
		"surname":  "Doe",
		"bio":      "hello",
		"password": "Sup3rSecret",
	}
}

func TestSignupVerifyLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.do(t, http.MethodPost, "/api/users/user-creation", "", signupBody())
	require.Equal(t, http.StatusCreated, status, string(raw))
	profile := decode[map[string]any](t, raw)
	assert.Equal(t, "jane_doe", profile["username"])
	assert.NotContains(t, profile, "password")
	userID := uint(profile["id"].(float64))

	status, raw = env.do(t, http.MethodPost, "/api/users/user-creation", "", signupBody())
	require.Equal(t, http.StatusBadRequest, status)
	fields := decode[map[string][]string](t, raw)
	assert.Equal(t, []string{"user with this username already exists."}, fields["username"])
	assert.Equal(t, []string{"user with this email already exists."}, fields["email"])

	// Inactive accounts cannot log in.
	status, _ = env.do(t, http.MethodPost, "/api/users/token/", "", map[string]string{"email": "jane@example.com", "password": "Sup3rSecret"})
	assert.Equal(t, http.StatusUnauthorized, status)

	msg := env.mail.last(t)
	assert.Equal(t, mail.EncodeUID(userID), msg.UID)
	assert.Equal(t, "jane@example.com", msg.To)

	status, raw = env.do(t, http.MethodPost, "/api/users/initial-email-verification", "", map[string]string{"id": msg.UID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{}`, string(raw))

	status, raw = env.do(t, http.MethodPost, "/api/users/initial-email-verification", "", map[string]string{"id": msg.UID, "token": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{}`, string(raw))

	status, raw = env.do(t, http.MethodPost, "/api/users/initial-email-verification", "", map[string]string{"id": msg.UID, "token": msg.Token})
	require.Equal(t, http.StatusOK, status)
	pair := decode[service.TokenPair](t, raw)
	assert.NotEmpty(t, pair.Access)

	status, _ = env.do(t, http.MethodPost, "/api/users/initial-email-verification", "", map[string]string{"id": msg.UID, "token": msg.Token})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw = env.do(t, http.MethodPost, "/api/users/token/", "", map[string]string{"email": "jane@example.com", "password": "Sup3rSecret"})
	require.Equal(t, http.StatusOK, status)
	pair = decode[service.TokenPair](t, raw)

	status, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/", userID), pair.Access, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"username":"jane_doe","email":"jane@example.com","name":"Jane","surname":"Doe","bio":"hello"}`, userID), string(raw))
}

func TestSignup_FieldErrors(t *testing.T) {
	env := newTestEnv(t)

	body := signupBody()
	body["name"] = "J4ne"
	body["password"] = "weak"
	status, raw := env.do(t, http.MethodPost, "/api/users/user-creation", "", body)
	require.Equal(t, http.StatusBadRequest, status)
	fields := decode[map[string][]string](t, raw)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "password")
	assert.NotContains(t, fields, "username")

	status, _ = env.do(t, http.MethodPost, "/api/users/user-creation", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.do(t, http.MethodPost, "/api/users/token/", "", map[string]string{"email": "ghost@example.com", "password": "Sup3rSecret"})
	assert.Equal(t, http.StatusUnauthorized, status)
	body := decode[models.ErrorResponse](t, raw)
	assert.Equal(t, "No active account found with the given credentials", body.Error)

	status, raw = env.do(t, http.MethodPost, "/api/users/token/", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode[map[string][]string](t, raw), "email")
}

func TestRefreshAndBlacklist(t *testing.T) {
	env := newTestEnv(t)
	pair, err := env.srv.tokens.IssuePair(1, "login")
	require.NoError(t, err)

	status, _ := env.do(t, http.MethodPost, "/api/users/token/refresh/", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw := env.do(t, http.MethodPost, "/api/users/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, status)
	rotated := decode[service.TokenPair](t, raw)
	assert.NotEqual(t, pair.Refresh, rotated.Refresh)

	status, _ = env.do(t, http.MethodPost, "/api/users/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw = env.do(t, http.MethodPost, "/api/users/token/blacklist", "", map[string]string{"refresh": rotated.Refresh})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{}`, string(raw))

	status, _ = env.do(t, http.MethodPost, "/api/users/token/blacklist", "", map[string]string{"refresh": rotated.Refresh})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/users/token/blacklist", "", map[string]string{"refresh": "junk"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetUserProfile_NotFoundMessages(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "alice")

	inactive := &models.User{Username: "sleepy", Email: "sleepy@example.com", Name: "S", Surname: "Z", Password: "hash"}
	require.NoError(t, env.db.Create(inactive).Error)

	status, raw := env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/", inactive.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"message":"This user is not active."}`, string(raw))

	status, raw = env.do(t, http.MethodGet, "/api/users/9999/", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"message":"This user does not exist."}`, string(raw))
}
