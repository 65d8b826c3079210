package server

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// rateLimitMiddleware applies the sliding window to every request. Health
// probes skip it in debug mode.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.RateLimiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Debug && (r.URL.Path == "/health" || r.URL.Path == "/") {
			next.ServeHTTP(w, r)
			return
		}

		rateLimitKey := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
		if rateLimitKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		decision, err := s.RateLimiter.Allow(r.Context(), rateLimitKey)
		if err != nil {
			s.Logger.LogError(err, "Rate limit store unavailable, allowing request",
				"endpoint", r.URL.Path,
				"request_id", requestIDFrom(r.Context()))
		}
		if !decision.Allowed {
			s.Logger.Info("Rate limit exceeded",
				"key", maskRateLimitKey(rateLimitKey),
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"count", decision.Count)
			s.Observability.GetMetrics().RecordRateLimitHit(r.Context(), "window", r.URL.Path)

			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			writeErrorResponse(w, "Rate limit exceeded",
				fmt.Sprintf("Max %d calls per %d seconds", decision.Limit, int(s.RateLimiter.Window().Seconds())),
				http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// generateLimitMiddleware spaces out generations from the same client.
func (s *Server) generateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.GenerateLimiter == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)
		if !s.GenerateLimiter.Allow("ip:" + clientIP) {
			s.Logger.Info("Generation interval not elapsed",
				"endpoint", r.URL.Path,
				"client_ip", clientIP)
			s.Observability.GetMetrics().RecordRateLimitHit(r.Context(), "interval", r.URL.Path)

			wait := int(math.Ceil(s.RateLimit.MinInterval.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(wait))
			writeErrorResponse(w, "Rate limit exceeded",
				fmt.Sprintf("Please wait %d seconds between generations", wait),
				http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// getRateLimitKey picks the identity a request is counted against
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := requestAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

func maskRateLimitKey(key string) string {
	if after, ok := strings.CutPrefix(key, "api:"); ok {
		return "api:" + maskAPIKey(after)
	}
	return key
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first valid IP from a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if parsed := net.ParseIP(ip); parsed != nil {
			return ip
		}
	}
	return ""
}
