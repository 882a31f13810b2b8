package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

type fakeLimiterStore struct {
	counts map[string]int64
	err    error
}

func (f *fakeLimiterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func newRateLimitedRouter(policy OTPRateLimitPolicy, store *fakeLimiterStore) http.Handler {
	r := chi.NewRouter()
	r.Route("/shipments/{trackingNumber}", func(r chi.Router) {
		r.Use(OTPRateLimit(policy, store, logger.New(logger.Options{ServiceName: "test"})))
		r.Post("/verify-otp", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestOTPRateLimitBlocksPerTrackingNumber(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewOTPRateLimitPolicy("verify", time.Minute, 0, 2)
	router := newRateLimitedRouter(policy, store)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shipments/KL-2026-AB12CD34/verify-otp", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shipments/KL-2026-AB12CD34/verify-otp", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestOTPRateLimitSeparatesTrackingNumbers(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewOTPRateLimitPolicy("verify", time.Minute, 0, 1)
	router := newRateLimitedRouter(policy, store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shipments/KL-2026-AB12CD34/verify-otp", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shipments/KL-2026-FF00AA11/verify-otp", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for other shipment, got %d", rec.Code)
	}
}

func TestOTPRateLimitBlocksPerIP(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewOTPRateLimitPolicy("verify", time.Minute, 1, 0)
	router := newRateLimitedRouter(policy, store)

	req := httptest.NewRequest(http.MethodPost, "/shipments/KL-2026-AB12CD34/verify-otp", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/shipments/KL-2026-FF00AA11/verify-otp", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestOTPRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewOTPRateLimitPolicy("verify", 0, 0, 0)
	router := newRateLimitedRouter(policy, store)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shipments/KL-2026-AB12CD34/verify-otp", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("expected no counters, got %v", store.counts)
	}
}
