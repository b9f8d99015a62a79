package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// LoginGuard applies a Limiter around login attempts. Store failures are
// logged and the attempt is let through.
type LoginGuard struct {
	limiter Limiter
	logger  logging.Logger
}

func NewLoginGuard(l Limiter, logger logging.Logger) *LoginGuard {
	if l == nil {
		l = Noop{}
	}
	return &LoginGuard{limiter: l, logger: logger.With("module", "login_guard")}
}

// Allow takes an attempt slot for key and returns zero, or returns how
// long key has to wait when none is left. Every zero result must be
// followed by Record.
func (g *LoginGuard) Allow(ctx context.Context, key string) time.Duration {
	retry, err := g.limiter.Acquire(ctx, key)
	if err != nil {
		g.logger.Warn(ctx, "login throttle check failed", logging.ErrorAttrs(err)...)
		return 0
	}
	if retry > 0 {
		g.logger.Info(ctx, "login attempts exhausted", "client", key, "retry_after", retry.String())
	}
	return retry
}

// Record settles the slot taken by Allow from the outcome of a login.
// Invalid credentials keep it as a failure, a success clears the counter
// and any other outcome hands the slot back.
func (g *LoginGuard) Record(ctx context.Context, key string, loginErr error) {
	switch {
	case loginErr == nil:
		if err := g.limiter.Reset(ctx, key); err != nil {
			g.logger.Warn(ctx, "login throttle reset failed", logging.ErrorAttrs(err)...)
		}
	case errors.Is(loginErr, common.ErrInvalidCredentials):
		// slot stays taken
	default:
		if err := g.limiter.Release(ctx, key); err != nil {
			g.logger.Warn(ctx, "login throttle release failed", logging.ErrorAttrs(err)...)
		}
	}
}
