package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestLimiter_BurstThenReject(t *testing.T) {
	l := New(0.001, 2, time.Minute)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.Allow("a") {
		t.Error("expected third event to be rejected")
	}

	// Other keys have their own bucket.
	if !l.Allow("b") {
		t.Error("expected independent bucket for key b")
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 buckets, got %d", l.Len())
	}
}

func TestLimiter_DisabledWhenRateZero(t *testing.T) {
	l := New(0, 1, time.Minute)
	for i := 0; i < 100; i++ {
		if !l.Allow("a") {
			t.Fatalf("event %d rejected with limiting disabled", i)
		}
	}
}

func TestLimiter_DefaultBurst(t *testing.T) {
	l := New(1, -1, 0)
	if l.burst != 5 {
		t.Errorf("expected default burst 5, got %d", l.burst)
	}
	if l.ttl != 10*time.Minute {
		t.Errorf("expected default ttl 10m, got %v", l.ttl)
	}
}

func TestMiddleware_Returns429(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Middleware(New(0.001, 1, time.Minute), nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if first.Code != http.StatusNoContent {
		t.Fatalf("first request: expected 204, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}
