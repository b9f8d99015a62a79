package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("s3cretpass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cretpass", hash)
	assert.True(t, h.Verify("s3cretpass", hash))
	assert.False(t, h.Verify("wrongpass", hash))
	assert.False(t, h.Verify("", hash))
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("s3cretpass")
	require.NoError(t, err)
	b, err := h.Hash("s3cretpass")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 60)
	assert.Len(t, b, 60)
	assert.True(t, h.Verify("s3cretpass", a))
	assert.True(t, h.Verify("s3cretpass", b))
}

func TestBcryptHasher_MalformedHashIsMismatch(t *testing.T) {
	h := newTestHasher(t)

	assert.False(t, h.Verify("s3cretpass", ""))
	assert.False(t, h.Verify("s3cretpass", "not-a-bcrypt-hash"))
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := newTestHasher(t)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrHashing))

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "AUTH_HASH_FAILED", oopsErr.Code())

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)
}

func TestBcryptHasher_VerifyRejectsOverlongCandidate(t *testing.T) {
	h := newTestHasher(t)

	stored := strings.Repeat("a", MaxPasswordBytes)
	hash, err := h.Hash(stored)
	require.NoError(t, err)

	assert.True(t, h.Verify(stored, hash))
	assert.False(t, h.Verify(stored+"-different-suffix", hash))
	assert.False(t, h.Verify(stored+"a", hash))
}

func TestBcryptHasher_DummyHash(t *testing.T) {
	h := newTestHasher(t)

	d := h.DummyHash()
	require.NotEmpty(t, d)
	assert.Equal(t, d, h.DummyHash(), "dummy hash is fixed at construction")

	cost, err := bcrypt.Cost([]byte(d))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
	assert.False(t, h.Verify("s3cretpass", d))
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	h, err := NewBcryptHasher(0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)

	_, err = NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestNewBcryptHasher_DummyHashFailure(t *testing.T) {
	orig := dummySecret
	t.Cleanup(func() { dummySecret = orig })
	dummySecret = func() (string, error) { return "", errors.New("entropy source closed") }

	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.Error(t, err)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, common.ErrHashing)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "AUTH_DUMMY_HASH_FAILED", oopsErr.Code())
}
