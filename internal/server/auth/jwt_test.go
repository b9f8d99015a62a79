package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var annClaims = models.TokenClaims{
	UserID: "6f1c0d2e-0000-4000-8000-000000000001",
	Email:  "ann@x.io",
	Name:   "Ann",
	Role:   models.RoleUser,
}

func newTestTokens(t *testing.T, secret string, now func() time.Time) *TokenService {
	t.Helper()
	s, err := NewTokenService(secret, DefaultTokenTTL, WithClock(now))
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}
	return s
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestTokens(t, testSecret, time.Now)

	tok, err := s.Issue(annClaims)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	got, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if *got != annClaims {
		t.Fatalf("claims mismatch: got %+v want %+v", *got, annClaims)
	}
}

func TestIssue_PayloadCarriesRegisteredClaims(t *testing.T) {
	t.Parallel()

	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestTokens(t, testSecret, fixedClock(issued))

	tok, err := s.Issue(annClaims)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if payload["sub"] != annClaims.UserID || payload["userId"] != annClaims.UserID {
		t.Fatalf("unexpected subject claims: %v", payload)
	}
	if payload["email"] != "ann@x.io" || payload["name"] != "Ann" || payload["role"] != "USER" {
		t.Fatalf("unexpected identity claims: %v", payload)
	}
	if int64(payload["iat"].(float64)) != issued.Unix() {
		t.Fatalf("unexpected iat: %v", payload["iat"])
	}
	if int64(payload["exp"].(float64)) != issued.Add(7*24*time.Hour).Unix() {
		t.Fatalf("unexpected exp: %v", payload["exp"])
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := newTestTokens(t, testSecret, fixedClock(issued)).Issue(annClaims)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	justBefore := newTestTokens(t, testSecret, fixedClock(issued.Add(DefaultTokenTTL-time.Second)))
	if _, err := justBefore.Verify(tok); err != nil {
		t.Fatalf("token must be valid one second before exp, got %v", err)
	}

	atExp := newTestTokens(t, testSecret, fixedClock(issued.Add(DefaultTokenTTL)))
	if _, err := atExp.Verify(tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired at exp, got %v", err)
	}

	eightDays := newTestTokens(t, testSecret, fixedClock(issued.Add(8*24*time.Hour)))
	if _, err := eightDays.Verify(tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired after 8 days, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestTokens(t, testSecret, time.Now).Issue(annClaims)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := newTestTokens(t, "another-secret-another-secret-xx", time.Now)
	if _, err := other.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestVerify_ExpiredAndWrongSecretIsInvalid(t *testing.T) {
	t.Parallel()

	issued := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := newTestTokens(t, testSecret, fixedClock(issued)).Issue(annClaims)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := newTestTokens(t, "another-secret-another-secret-xx", time.Now)
	if _, err := other.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("signature must be checked before expiry, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	s := newTestTokens(t, testSecret, time.Now)
	for _, tok := range []string{"", "not-a-valid-jwt", "a.b.c", "eyJhbGciOiJIUzI1NiJ9..sig"} {
		if _, err := s.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("token %q: expected common.ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	s := newTestTokens(t, testSecret, time.Now)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           annClaims.UserID,
		Email:            annClaims.Email,
		Name:             annClaims.Name,
		Role:             annClaims.Role,
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.Verify(hs512); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("HS512 must be rejected, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := s.Verify(none); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("alg=none must be rejected, got %v", err)
	}
}

func TestVerify_MissingClaims(t *testing.T) {
	t.Parallel()

	s := newTestTokens(t, testSecret, time.Now)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		claims Claims
	}{
		{"no user id", Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}, Email: "a@b.c", Name: "A", Role: models.RoleUser}},
		{"no email", Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}, UserID: "u", Name: "A", Role: models.RoleUser}},
		{"unknown role", Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}, UserID: "u", Email: "a@b.c", Name: "A", Role: "ROOT"}},
		{"no exp", Claims{UserID: "u", Email: "a@b.c", Name: "A", Role: models.RoleUser}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString([]byte(testSecret))
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if _, err := s.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
				t.Fatalf("expected common.ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewTokenService_Configuration(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenService("", time.Hour); !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("empty secret: expected common.ErrConfiguration, got %v", err)
	}
	if _, err := NewTokenService(testSecret, 0); !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("zero ttl: expected common.ErrConfiguration, got %v", err)
	}

	var zero TokenService
	if _, err := zero.Issue(annClaims); !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("zero service: expected common.ErrConfiguration, got %v", err)
	}
}
