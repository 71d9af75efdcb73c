package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject, name string, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestVerifyExtractsIdentity(t *testing.T) {
	verifier := NewVerifier(testSecret)

	raw := signToken(t, testSecret, "42", "Asha", time.Now().Add(time.Hour))

	identity, err := verifier.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UserID != 42 {
		t.Fatalf("unexpected user id %d", identity.UserID)
	}
	if identity.Name != "Asha" {
		t.Fatalf("unexpected name %q", identity.Name)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier := NewVerifier(testSecret)

	raw := signToken(t, testSecret, "42", "Asha", time.Now().Add(-time.Minute))

	if _, err := verifier.Verify(raw); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	verifier := NewVerifier(testSecret)

	raw := signToken(t, "other-secret", "42", "Asha", time.Now().Add(time.Hour))

	if _, err := verifier.Verify(raw); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyRejectsNonNumericSubject(t *testing.T) {
	verifier := NewVerifier(testSecret)

	raw := signToken(t, testSecret, "not-a-number", "Asha", time.Now().Add(time.Hour))

	if _, err := verifier.Verify(raw); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyRejectsEmptyToken(t *testing.T) {
	verifier := NewVerifier(testSecret)

	if _, err := verifier.Verify("  "); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
