package auth

import (
	"errors"
	"testing"
	"time"
)

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef") // 32 bytes, works for both schemes
}

func TestTokenRoundTrip(t *testing.T) {
	schemes := []string{"jwt", "paseto"}

	for _, scheme := range schemes {
		t.Run(scheme, func(t *testing.T) {
			svc, err := NewTokenService(scheme, testSecret())
			if err != nil {
				t.Fatalf("NewTokenService(%s): %v", scheme, err)
			}

			token, err := svc.CreateToken(42, time.Hour)
			if err != nil {
				t.Fatalf("CreateToken: %v", err)
			}
			if token == "" {
				t.Fatal("expected non-empty token")
			}

			claims, err := svc.VerifyToken(token)
			if err != nil {
				t.Fatalf("VerifyToken: %v", err)
			}
			if claims.UserID != 42 {
				t.Errorf("expected user id 42, got %d", claims.UserID)
			}
		})
	}
}

func TestTokenExpired(t *testing.T) {
	schemes := []string{"jwt", "paseto"}

	for _, scheme := range schemes {
		t.Run(scheme, func(t *testing.T) {
			svc, err := NewTokenService(scheme, testSecret())
			if err != nil {
				t.Fatalf("NewTokenService(%s): %v", scheme, err)
			}

			token, err := svc.CreateToken(42, -time.Minute)
			if err != nil {
				t.Fatalf("CreateToken: %v", err)
			}

			_, err = svc.VerifyToken(token)
			if !errors.Is(err, ErrExpiredToken) {
				t.Errorf("expected ErrExpiredToken, got %v", err)
			}
		})
	}
}

func TestTokenTampered(t *testing.T) {
	svc, err := NewTokenService("jwt", testSecret())
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := svc.CreateToken(42, time.Hour)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	other, err := NewTokenService("jwt", []byte("a completely different secret!!!"))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	if _, err := other.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	if _, err := svc.VerifyToken(token + "x"); err == nil {
		t.Error("expected error for tampered token")
	}
}

func TestNewTokenServiceUnknownScheme(t *testing.T) {
	if _, err := NewTokenService("opaque", testSecret()); err == nil {
		t.Error("expected error for unknown scheme")
	}
}
