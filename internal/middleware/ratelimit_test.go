package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGlobalRateLimiter_SharedBucket(t *testing.T) {
	// Burst of 2, effectively no refill during the test.
	h := GlobalRateLimiter(rate.Limit(0.0001), 2)(okHandler())

	// Different client IPs still drain the same bucket.
	for i, addr := range []string{"1.1.1.1:1", "2.2.2.2:2"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i, rr.Code)
		}
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "3.3.3.3:3"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("third request: got %d, want 429", rr.Code)
	}
}

func TestIPRateLimiter_PerIPBuckets(t *testing.T) {
	h := NewIPRateLimiter(rate.Limit(0.0001), 1).Middleware(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "1.1.1.1:1"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", rr.Code)
	}

	// Same IP is now limited.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second request same IP: got %d, want 429", rr.Code)
	}

	// Another IP has its own bucket.
	req2 := httptest.NewRequest("GET", "/", nil)
	req2.RemoteAddr = "2.2.2.2:2"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req2)
	if rr.Code != http.StatusOK {
		t.Errorf("other IP: got %d, want 200", rr.Code)
	}
}

func TestRateLimit_UnknownStrategyFallsBackToGlobal(t *testing.T) {
	h := RateLimit("bogus", 60, 1)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "1.1.1.1:1"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", rr.Code)
	}

	req.RemoteAddr = "2.2.2.2:2"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second request from other IP: got %d, want 429 (shared bucket)", rr.Code)
	}
}
