package api

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stacksapp/stacks-server/internal/ratelimit"
)

// newLoginLimiter builds the per-IP limiter guarding the login endpoint.
// The shared-password login model makes brute forcing a single request away
// from every account, so attempts are throttled aggressively.
func newLoginLimiter(attempts int, interval time.Duration, burst int) *ratelimit.KeyedLimiter {
	rps := float64(attempts) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// rateLimitLogin throttles POSTs to the login endpoint by client IP.
// Everything else passes through untouched.
func rateLimitLogin(limiter *ratelimit.KeyedLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/v1/auth/login" {
				next.ServeHTTP(w, r)
				return
			}

			// middleware.RealIP has already resolved forwarded headers
			// into RemoteAddr; just strip the port if one is present.
			key := clientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("Login rate limit exceeded", "ip", key)
				writeRateLimitError(w, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return ip[:i]
	}
	return ip
}

func writeRateLimitError(w http.ResponseWriter, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	body, err := json.Marshal(&APIError{
		Code:    "RATE_LIMITED",
		Message: "too many login attempts, try again later",
	})
	if err != nil {
		logger.Error("failed to marshal rate limit error", "error", err)
		return
	}
	if _, err := w.Write(body); err != nil {
		logger.Debug("failed to write rate limit error", "error", err)
	}
}
