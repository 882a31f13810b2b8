package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kenza-oss/kleerlogistics/api/responses"
	pkgerrors "github.com/kenza-oss/kleerlogistics/pkg/errors"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// OTPRateLimitPolicy defines the throttling parameters for the confirmation
// code endpoints.
type OTPRateLimitPolicy struct {
	name          string
	window        time.Duration
	ipLimit       int
	trackingLimit int
}

// NewOTPRateLimitPolicy builds a policy with the supplied window and limits.
func NewOTPRateLimitPolicy(name string, window time.Duration, ipLimit, trackingLimit int) OTPRateLimitPolicy {
	return OTPRateLimitPolicy{
		name:          strings.ToLower(strings.TrimSpace(name)),
		window:        window,
		ipLimit:       ipLimit,
		trackingLimit: trackingLimit,
	}
}

func (p OTPRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.trackingLimit > 0)
}

func (p OTPRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "otp"
	}
	return p.name
}

func (p OTPRateLimitPolicy) ipKey(ip string) string {
	if ip == "" {
		return ""
	}
	return fmt.Sprintf("rl:ip:%s:%s", p.normalizedName(), ip)
}

func (p OTPRateLimitPolicy) trackingKey(trackingNumber string) string {
	if trackingNumber == "" {
		return ""
	}
	return fmt.Sprintf("rl:tracking:%s:%s", p.normalizedName(), trackingNumber)
}

// OTPRateLimit enforces per-IP and per-tracking-number counters on the
// confirmation code endpoints. The tracking number is read from the route
// parameter, so the middleware must sit inside the chi route that declares it.
func OTPRateLimit(policy OTPRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			if policy.ipLimit > 0 {
				if key := policy.ipKey(ip); key != "" {
					if allowed, count, err := allow(ctx, store, key, policy.window, int64(policy.ipLimit)); err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					} else if !allowed {
						respondRateLimited(ctx, logg, w, policy, "ip", ip, "", count, policy.ipLimit)
						return
					}
				}
			}

			if policy.trackingLimit > 0 {
				trackingNumber := strings.TrimSpace(chi.URLParam(r, "trackingNumber"))
				if key := policy.trackingKey(trackingNumber); key != "" {
					if allowed, count, err := allow(ctx, store, key, policy.window, int64(policy.trackingLimit)); err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					} else if !allowed {
						respondRateLimited(ctx, logg, w, policy, "tracking", "", trackingNumber, count, policy.trackingLimit)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allow(ctx context.Context, store rateLimiterStore, key string, window time.Duration, limit int64) (bool, int64, error) {
	count, err := store.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy OTPRateLimitPolicy, scope, ip, trackingNumber string, count int64, limit int) {
	if logg != nil {
		fields := map[string]any{
			"scope":          scope,
			"policy":         policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		if ip != "" {
			fields["ip"] = ip
		}
		if trackingNumber != "" {
			fields["tracking_number"] = trackingNumber
		}
		logCtx := logg.WithFields(ctx, fields)
		logg.Warn(logCtx, "otp.rate_limit.blocked")
	}
	err := pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded")
	responses.WriteError(ctx, nil, w, err)
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
