package auth

import (
	"testing"
	"time"
)

var secret = []byte("test-secret")

func TestGenerateAndParseToken(t *testing.T) {
	signed, err := GenerateToken(42, TypeAccess, secret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(signed, secret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID: got %d, want 42", claims.UserID)
	}
	if claims.TokenType != TypeAccess {
		t.Errorf("TokenType: got %q, want access", claims.TokenType)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	signed, err := GenerateToken(1, TypeAccess, secret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(signed, []byte("other-secret")); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	signed, err := GenerateToken(1, TypeAccess, secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(signed, secret); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("not-a-token", secret); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestTokenTypes(t *testing.T) {
	access, _ := GenerateToken(7, TypeAccess, secret, time.Minute)
	refresh, _ := GenerateToken(7, TypeRefresh, secret, time.Hour)

	ac, err := ParseToken(access, secret)
	if err != nil || ac.TokenType != TypeAccess {
		t.Errorf("access claims: %v %v", ac, err)
	}
	rc, err := ParseToken(refresh, secret)
	if err != nil || rc.TokenType != TypeRefresh {
		t.Errorf("refresh claims: %v %v", rc, err)
	}
}
