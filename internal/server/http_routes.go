package server

import (
	"net/http"
	"strings"
)

// Handler builds the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	mux := s.setupRoutes()
	instrumented := s.Observability.HTTPMiddleware()(mux)

	return chain(instrumented,
		s.recoveryMiddleware,
		s.securityHeadersMiddleware,
		s.requestIDMiddleware,
		s.loggingMiddleware,
		s.requestSizeLimitMiddleware,
		s.rateLimitMiddleware,
	)
}

// chain applies middleware so that the first one listed runs first.
func chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/{$}", s.healthHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.HandleFunc("/sample-data", s.sampleDataHandler)
	mux.HandleFunc("/templates", s.templatesHandler)

	generateResume := s.authMiddleware(s.generateLimitMiddleware(s.generateResumeHandler))
	generateCover := s.authMiddleware(s.generateLimitMiddleware(s.generateCoverLetterHandler))
	mux.HandleFunc("/generate-resume", generateResume)
	mux.HandleFunc("/generate-resume/{$}", generateResume)
	mux.HandleFunc("/generate-cover-letter", generateCover)
	mux.HandleFunc("/generate-cover-letter/{$}", generateCover)

	return mux
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication if no API keys are configured
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"request_id", requestIDFrom(r.Context()))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// requestAPIKey reads X-API-Key, falling back to a Bearer token.
func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
