package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	j := JWT{Secret: []byte("test-secret"), TokenTTL: time.Hour}

	token, expiresAt, err := j.Sign(Claims{UserID: "u-1", Role: "broker"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute {
		t.Fatalf("expiry too close: %v", remaining)
	}

	claims, err := j.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != "broker" {
		t.Fatalf("claims round trip: %+v", claims)
	}
	if claims.Issuer != "valora" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := JWT{Secret: []byte("secret-a"), TokenTTL: time.Hour}
	token, _, err := signer.Sign(Claims{UserID: "u-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	verifier := JWT{Secret: []byte("secret-b")}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification to fail with a different secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	j := JWT{Secret: []byte("test-secret")}
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token, _, err := j.Sign(Claims{
		UserID:           "u-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: past},
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := j.Verify(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
