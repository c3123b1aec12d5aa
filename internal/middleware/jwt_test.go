package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/japanime/backend/internal/auth"
)

var secret = []byte("test-secret")

func protected(t *testing.T) (http.Handler, *int64) {
	t.Helper()
	var seen int64 = -1
	h := JWTMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		if !ok {
			t.Error("user id missing from context")
		}
		seen = id
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	h, seen := protected(t)

	token, err := auth.GenerateToken(7, auth.TypeAccess, secret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
	if *seen != 7 {
		t.Errorf("user id: got %d, want 7", *seen)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	h, _ := protected(t)

	req := httptest.NewRequest("GET", "/api/profile", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	h, _ := protected(t)

	token, err := auth.GenerateToken(7, auth.TypeAccess, secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestJWTMiddleware_RefreshTokenRejected(t *testing.T) {
	h, _ := protected(t)

	token, err := auth.GenerateToken(7, auth.TypeRefresh, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401 for refresh token on protected route", rr.Code)
	}
}

func TestJWTMiddleware_GarbageToken(t *testing.T) {
	h, _ := protected(t)

	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}
