// Package auth holds the credential primitives of the service: password
// hashing, token issue/verify and the request-authorization gate.
package auth

import (
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordHasher turns passwords into salted one-way hashes and checks them.
type PasswordHasher interface {
	// Hash produces a salted hash of password. Two calls never return the
	// same string.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed hash is a
	// mismatch, not an error. Passwords over MaxPasswordBytes never match.
	Verify(password, hash string) bool

	// DummyHash returns a valid hash that no user password matches. Login
	// verifies against it when the email is unknown.
	DummyHash() string
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost  int
	dummy string
}

var dummySecret = func() (string, error) { return common.MakeRandHexString(32) }

// NewBcryptHasher returns a hasher with the given work factor. Zero selects
// bcrypt.DefaultCost. The dummy hash is computed here at the same cost as
// real hashes.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d out of range [%d, %d]",
			common.ErrConfiguration, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	secret, err := dummySecret()
	if err != nil {
		return nil, oops.Code("AUTH_DUMMY_HASH_FAILED").Wrap(fmt.Errorf("%w: %w", common.ErrHashing, err))
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, oops.Code("AUTH_DUMMY_HASH_FAILED").Wrap(fmt.Errorf("%w: %w", common.ErrHashing, err))
	}
	return &BcryptHasher{cost: cost, dummy: string(b)}, nil
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", oops.Code("AUTH_HASH_FAILED").
			With("length", len(password)).
			Wrap(fmt.Errorf("%w: password exceeds %d bytes", common.ErrHashing, MaxPasswordBytes))
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(fmt.Errorf("%w: %w", common.ErrHashing, err))
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	// bcrypt ignores everything past the first MaxPasswordBytes.
	if len(password) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *BcryptHasher) DummyHash() string {
	return h.dummy
}
