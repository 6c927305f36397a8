package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAdminAuth_LoginVerify(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewAdminAuth("opensesame", "signing-secret", time.Hour)
	a.Now = func() time.Time { return now }

	if _, _, err := a.Login("wrong"); !errors.Is(err, ErrInvalidAdminKey) {
		t.Fatalf("wrong key: %v", err)
	}
	tok, exp, err := a.Login("opensesame")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("exp=%v", exp)
	}
	if err := a.Verify(tok); err != nil {
		t.Fatalf("verify: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if err := a.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: %v", err)
	}
}

func TestAdminAuth_RejectsForeignTokens(t *testing.T) {
	a := NewAdminAuth("key", "secret", time.Hour)

	other := NewAdminAuth("key", "another-secret", time.Hour)
	tok, _, _ := other.Login("key")
	if err := a.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong signature: %v", err)
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: adminSubject, Issuer: tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err := a.Verify(none); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("alg none: %v", err)
	}
	if err := a.Verify(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("empty: %v", err)
	}
}

func TestAdminAuth_Disabled(t *testing.T) {
	a := NewAdminAuth("", "", 0)
	if a.Enabled() {
		t.Fatalf("no key means disabled")
	}
	if _, _, err := a.Login(""); !errors.Is(err, ErrAdminDisabled) {
		t.Fatalf("login: %v", err)
	}
	if err := a.Verify("x"); !errors.Is(err, ErrAdminDisabled) {
		t.Fatalf("verify: %v", err)
	}
}
