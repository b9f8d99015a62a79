package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// TokenVerifier is the part of TokenService the gate depends on.
type TokenVerifier interface {
	Verify(token string) (*models.TokenClaims, error)
}

// Gate authorizes requests from the value of their Authorization header.
// It trusts the token alone and never consults the user directory.
type Gate struct {
	tokens TokenVerifier
}

func NewGate(tokens TokenVerifier) *Gate {
	return &Gate{tokens: tokens}
}

// Authorize expects "Bearer <token>". Every failure, including an expired
// token, is reported as common.ErrorUnauthorized; the cause is kept in the
// error chain for logging. On success the returned context carries the
// verified claims.
func (g *Gate) Authorize(ctx context.Context, authorization string) (context.Context, error) {
	token, ok := ParseBearer(authorization)
	if !ok {
		return ctx, fmt.Errorf("%w: missing or malformed bearer token", common.ErrorUnauthorized)
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return ctx, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	return WithClaims(ctx, claims), nil
}

// ParseBearer extracts the token from an Authorization value. The scheme is
// matched case-insensitively.
func ParseBearer(authorization string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorization), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

type claimsKey struct{}

// WithClaims returns a child context carrying c.
func WithClaims(ctx context.Context, c *models.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by the gate, if any.
func ClaimsFromContext(ctx context.Context) (*models.TokenClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*models.TokenClaims)
	return c, ok && c != nil
}
