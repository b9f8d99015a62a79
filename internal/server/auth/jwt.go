package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the JWT payload: the registered claims (sub, iat, exp) plus the
// identity snapshot of the user.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
}

// TokenService issues and verifies HS256 tokens with a fixed secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService fails with common.ErrConfiguration when secret is empty or
// ttl is not positive.
func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: token signing secret is empty", common.ErrConfiguration)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: token ttl must be positive, got %s", common.ErrConfiguration, ttl)
	}

	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the lifetime of tokens issued by s.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs claims into a token expiring TTL from now.
func (s *TokenService) Issue(c models.TokenClaims) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", fmt.Errorf("%w: token service has no signing secret", common.ErrConfiguration)
	}

	now := s.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: c.UserID,
		Email:  c.Email,
		Name:   c.Name,
		Role:   c.Role,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded
// claims. Expired tokens yield common.ErrTokenExpired; every other failure
// yields common.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*models.TokenClaims, error) {
	if s == nil || len(s.secret) == 0 {
		return nil, fmt.Errorf("%w: token service has no signing secret", common.ErrConfiguration)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if claims.UserID == "" || claims.Email == "" || claims.Name == "" {
		return nil, fmt.Errorf("%w: missing identity claims", common.ErrInvalidToken)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrInvalidToken, claims.Role)
	}

	return &models.TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	}, nil
}

func (s *TokenService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
