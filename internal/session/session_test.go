package session

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndValidate(t *testing.T) {
	m := NewManager("shared-secret")

	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	username, err := m.Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "alice" {
		t.Errorf("username = %s, want alice", username)
	}
}

func TestIssueExpiry(t *testing.T) {
	m := NewManager("shared-secret")

	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}

	ttl := claims.ExpiresAt.Sub(time.Now())
	if ttl < 59*time.Minute || ttl > time.Hour {
		t.Errorf("ttl = %s, want ~1h", ttl)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a")
	validator := NewManager("secret-b")

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := validator.Validate(token); err == nil {
		t.Fatal("expected validation failure for wrong secret")
	}
}

func TestValidateGarbage(t *testing.T) {
	m := NewManager("shared-secret")
	if _, err := m.Validate("not.a.token"); err == nil {
		t.Fatal("expected validation failure for garbage token")
	}
}

func TestValidateRejectsUnsignedAlgorithm(t *testing.T) {
	m := NewManager("shared-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "mallory"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}

	_, err = m.Validate(token)
	if err == nil {
		t.Fatal("expected rejection of alg=none token")
	}
	if !strings.Contains(err.Error(), "invalid session token") {
		t.Errorf("error = %v, want invalid session token", err)
	}
}
