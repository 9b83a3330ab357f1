package service

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func testTokenConfig() TokenConfig {
	return TokenConfig{
		Secret:          testSecret,
		AccessTTL:       5 * time.Minute,
		RefreshTTL:      24 * time.Hour,
		VerificationTTL: 72 * time.Hour,
	}
}

func newTokenService(t *testing.T) (*TokenService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTokenService(testTokenConfig(), rdb), mr
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	t.Parallel()
	svc, _ := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(42, "login")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	userID, err := svc.VerifyAccess(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	_, err = svc.VerifyAccess(ctx, pair.Refresh)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated), "refresh token must not authenticate")

	_, err = svc.VerifyAccess(ctx, "not-a-jwt")
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
}

func TestTokenService_AccessExpires(t *testing.T) {
	t.Parallel()
	svc, _ := newTokenService(t)
	issued := time.Now()
	svc.now = fixedClock(issued)

	pair, err := svc.IssuePair(1, "login")
	require.NoError(t, err)

	svc.now = fixedClock(issued.Add(6 * time.Minute))
	_, err = svc.VerifyAccess(context.Background(), pair.Access)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
}

func TestTokenService_RejectsForeignTokens(t *testing.T) {
	t.Parallel()
	svc, _ := newTokenService(t)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key any, issuer string) string {
		claims := Claims{
			TokenType: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				Issuer:    issuer,
				Audience:  jwt.ClaimStrings{TokenAudience},
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				ID:        "jti",
			},
		}
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := map[string]string{
		"wrong secret": sign(jwt.SigningMethodHS256, []byte("another-secret-entirely-32-chars!!"), TokenIssuer),
		"wrong issuer": sign(jwt.SigningMethodHS256, []byte(testSecret), "someone-else"),
		"wrong method": sign(jwt.SigningMethodHS512, []byte(testSecret), TokenIssuer),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.VerifyAccess(context.Background(), token)
			assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
		})
	}

	ok := sign(jwt.SigningMethodHS256, []byte(testSecret), TokenIssuer)
	id, err := svc.VerifyAccess(context.Background(), ok)
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)
}

func TestTokenService_RefreshRotatesOnce(t *testing.T) {
	t.Parallel()
	svc, mr := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(7, "login")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, next.Refresh)

	userID, err := svc.VerifyAccess(ctx, next.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)

	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], blacklistKeyPrefix)
	assert.Greater(t, mr.TTL(keys[0]), 23*time.Hour)

	_, err = svc.Refresh(ctx, next.Access)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated), "access token cannot refresh")
}

func TestTokenService_Blacklist(t *testing.T) {
	t.Parallel()
	svc, _ := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(7, "login")
	require.NoError(t, err)

	assert.True(t, models.HasCode(svc.Blacklist(ctx, "garbage"), models.CodeValidation))
	require.NoError(t, svc.Blacklist(ctx, pair.Refresh))
	assert.True(t, models.HasCode(svc.Blacklist(ctx, pair.Refresh), models.CodeValidation))

	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
}

func TestTokenService_WithoutRedis(t *testing.T) {
	t.Parallel()
	svc := NewTokenService(testTokenConfig(), nil)
	ctx := context.Background()

	pair, err := svc.IssuePair(3, "login")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(ctx, pair.Access)
	assert.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.True(t, models.HasCode(err, models.CodeUnavailable))
	assert.True(t, models.HasCode(svc.Blacklist(ctx, pair.Refresh), models.CodeUnavailable))
}

func TestTokenService_VerificationToken(t *testing.T) {
	t.Parallel()
	svc, _ := newTokenService(t)
	user := &models.User{ID: 9, Email: "nine@example.com"}

	token, err := svc.IssueVerification(user)
	require.NoError(t, err)
	assert.True(t, svc.CheckVerification(user, token))

	activated := *user
	activated.IsActive = true
	assert.False(t, svc.CheckVerification(&activated, token))

	moved := *user
	moved.Email = "elsewhere@example.com"
	assert.False(t, svc.CheckVerification(&moved, token))

	other := *user
	other.ID = 10
	assert.False(t, svc.CheckVerification(&other, token))

	pair, err := svc.IssuePair(9, "login")
	require.NoError(t, err)
	assert.False(t, svc.CheckVerification(user, pair.Access))
}
