package middleware

import (
	"testing"
	"time"

	"tattootime/globals"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T) string {
	t.Helper()
	claims := Claims{
		Username: "u1@example.com",
		UserID:   "u1",
		Role:     []string{"customer"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestValidateJWTAcceptsBearerToken(t *testing.T) {
	claims, err := ValidateJWT("Bearer " + signedToken(t))
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "u1@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateJWTRejectsNonBearerHeaders(t *testing.T) {
	token := signedToken(t)
	for _, header := range []string{
		"",
		"Bearer",
		token,            // raw token, no scheme
		"Basic " + token, // wrong scheme, long enough to slice
		"bearer " + token,
	} {
		if _, err := ValidateJWT(header); err == nil {
			t.Errorf("header %q should be rejected", header)
		}
	}
}
