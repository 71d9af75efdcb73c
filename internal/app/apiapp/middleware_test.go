package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	authsvc "github.com/AnkurSaini200/Cupid/internal/services/auth"
)

const testJWTSecret = "middleware-test-secret"

func signAccessToken(t *testing.T, secret string, userID string, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthMiddlewarePassesIdentityThrough(t *testing.T) {
	verifier := authsvc.NewVerifier(testJWTSecret)
	mw := AuthMiddleware(verifier, zap.NewNop())

	raw := signAccessToken(t, testJWTSecret, "17", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rr := httptest.NewRecorder()

	var seen authsvc.Identity
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing from context")
		}
		seen = identity
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
	if seen.UserID != 17 {
		t.Fatalf("unexpected user id %d", seen.UserID)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	mw := AuthMiddleware(authsvc.NewVerifier(testJWTSecret), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not run without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	mw := AuthMiddleware(authsvc.NewVerifier(testJWTSecret), zap.NewNop())

	raw := signAccessToken(t, testJWTSecret, "17", time.Now().Add(-time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not run with an expired token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestExtractBearerToken(t *testing.T) {
	if token, ok := extractBearerToken("Bearer abc.def.ghi"); !ok || token != "abc.def.ghi" {
		t.Fatalf("bearer extraction failed: %q %v", token, ok)
	}
	if _, ok := extractBearerToken("bearer abc"); !ok {
		t.Fatalf("scheme match must be case insensitive")
	}
	if _, ok := extractBearerToken("Token abc"); ok {
		t.Fatalf("non-bearer scheme must be rejected")
	}
	if _, ok := extractBearerToken(""); ok {
		t.Fatalf("empty header must be rejected")
	}
}
