package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"agora/internal/models"
	"agora/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TokenIssuer   = "agora-api"
	TokenAudience = "agora-client"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	purposeEmailVerification = "email_verification"
	blacklistKeyPrefix       = "blacklist:"
)

const (
	msgTokenInvalid     = "Token is invalid or expired"
	msgTokenBlacklisted = "Token is blacklisted"
	msgNoBlacklistStore = "Token blacklist is unavailable"
)

// TokenPair is what a successful login, refresh or verification returns.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims are carried by access and refresh tokens.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// VerificationClaims bind an email verification token to the account state
// at issue time. Activating the account makes the token unusable.
type VerificationClaims struct {
	Purpose string `json:"purpose"`
	Email   string `json:"email"`
	Active  bool   `json:"active"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	Secret          string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration
}

// TokenService issues and checks HS256 JWTs. Refresh rotation and the
// blacklist need Redis; without it those flows report UNAVAILABLE.
type TokenService struct {
	cfg   TokenConfig
	redis *redis.Client
	now   func() time.Time
}

func NewTokenService(cfg TokenConfig, rdb *redis.Client) *TokenService {
	return &TokenService{cfg: cfg, redis: rdb, now: time.Now}
}

// IssuePair mints an access and a refresh token for userID. flow labels the
// metric (login, refresh, verification).
func (s *TokenService) IssuePair(userID uint, flow string) (TokenPair, error) {
	access, err := s.sign(userID, TokenTypeAccess, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, models.NewInternalError(err)
	}
	refresh, err := s.sign(userID, TokenTypeRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, models.NewInternalError(err)
	}
	observability.TokensIssued.WithLabelValues(flow).Inc()
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *TokenService) sign(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

func (s *TokenService) parse(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	return err
}

func (s *TokenService) parseTyped(token, tokenType string) (*Claims, uint, error) {
	var claims Claims
	if err := s.parse(token, &claims); err != nil {
		return nil, 0, err
	}
	if claims.TokenType != tokenType || claims.ID == "" {
		return nil, 0, errors.New("wrong token type")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || id == 0 {
		return nil, 0, errors.New("invalid subject")
	}
	return &claims, uint(id), nil
}

// VerifyAccess returns the user an access token was issued to.
func (s *TokenService) VerifyAccess(ctx context.Context, token string) (uint, error) {
	claims, userID, err := s.parseTyped(token, TokenTypeAccess)
	if err != nil {
		return 0, models.NewUnauthenticatedError(msgTokenInvalid)
	}
	// Access tokens are short lived; a Redis outage must not lock everyone out.
	if s.redis != nil {
		if n, err := s.redis.Exists(ctx, blacklistKeyPrefix+claims.ID).Result(); err == nil && n > 0 {
			return 0, models.NewUnauthenticatedError(msgTokenBlacklisted)
		}
	}
	return userID, nil
}

// Refresh exchanges a refresh token for a new pair and blacklists the old one,
// so each refresh token works exactly once.
func (s *TokenService) Refresh(ctx context.Context, refresh string) (TokenPair, error) {
	if s.redis == nil {
		return TokenPair{}, models.NewUnavailableError(msgNoBlacklistStore, nil)
	}
	claims, userID, err := s.parseTyped(refresh, TokenTypeRefresh)
	if err != nil {
		return TokenPair{}, models.NewUnauthenticatedError(msgTokenInvalid)
	}
	fresh, err := s.blacklist(ctx, claims)
	if err != nil {
		return TokenPair{}, err
	}
	if !fresh {
		return TokenPair{}, models.NewUnauthenticatedError(msgTokenBlacklisted)
	}
	return s.IssuePair(userID, "refresh")
}

// Blacklist revokes a refresh token.
func (s *TokenService) Blacklist(ctx context.Context, refresh string) error {
	if s.redis == nil {
		return models.NewUnavailableError(msgNoBlacklistStore, nil)
	}
	claims, _, err := s.parseTyped(refresh, TokenTypeRefresh)
	if err != nil {
		return models.NewFieldError("detail", msgTokenInvalid)
	}
	fresh, err := s.blacklist(ctx, claims)
	if err != nil {
		return err
	}
	if !fresh {
		return models.NewFieldError("detail", msgTokenBlacklisted)
	}
	return nil
}

// blacklist records the jti until the token would have expired anyway. It
// reports false when the jti was already blacklisted.
func (s *TokenService) blacklist(ctx context.Context, claims *Claims) (bool, error) {
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	ok, err := s.redis.SetNX(ctx, blacklistKeyPrefix+claims.ID, claims.Subject, ttl).Result()
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("setnx").Inc()
		return false, models.NewUnavailableError(msgNoBlacklistStore, err)
	}
	return ok, nil
}

// IssueVerification mints the token sent in the verification email.
func (s *TokenService) IssueVerification(user *models.User) (string, error) {
	now := s.now()
	claims := VerificationClaims{
		Purpose: purposeEmailVerification,
		Email:   user.Email,
		Active:  user.IsActive,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.VerificationTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}

// CheckVerification reports whether token was issued for user in its
// current state.
func (s *TokenService) CheckVerification(user *models.User, token string) bool {
	var claims VerificationClaims
	if err := s.parse(token, &claims); err != nil {
		return false
	}
	return claims.Purpose == purposeEmailVerification &&
		claims.Subject == strconv.FormatUint(uint64(user.ID), 10) &&
		claims.Email == user.Email &&
		claims.Active == user.IsActive
}
