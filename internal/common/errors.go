// Package common defines shared constants and sentinel errors used across
// the server and client layers of authkeeper. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many attempts")

	// Input validation.
	ErrorValidation = errors.New("validation error")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Infrastructure errors. These never reach a caller unwrapped.
	ErrConfiguration = errors.New("configuration error")
	ErrHashing       = errors.New("hashing error")
)

// Internal marks err as an unexpected failure. The result matches both
// ErrorInternal and the original cause under errors.Is, so transports can
// answer with an opaque server error while the cause is still logged.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrorInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrorInternal, err)
}
