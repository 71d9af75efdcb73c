// Package auth verifies externally issued access tokens and carries the
// resulting identity through request contexts. Token issuance, registration
// and password handling live in the identity service, not here.
package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("unauthorized")

type Verifier struct {
	secret []byte
	now    func() time.Time
}

type Identity struct {
	UserID int64
	Name   string
}

type tokenClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Verify parses and validates an HS256 access token and extracts the
// identity. Any parse or validation failure maps to ErrUnauthorized.
func (v *Verifier) Verify(raw string) (Identity, error) {
	if len(v.secret) == 0 || strings.TrimSpace(raw) == "" {
		return Identity{}, ErrUnauthorized
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithTimeFunc(v.now))
	if err != nil || token == nil || !token.Valid {
		return Identity{}, ErrUnauthorized
	}

	userID, parseErr := strconv.ParseInt(claims.Subject, 10, 64)
	if parseErr != nil || userID <= 0 {
		return Identity{}, ErrUnauthorized
	}

	return Identity{
		UserID: userID,
		Name:   claims.Name,
	}, nil
}
