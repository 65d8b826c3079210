package server

import (
	"fmt"
	"io"
	"os"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(addr string) {
	s.writeServerInfo(os.Stdout, addr)
}

func (s *Server) writeServerInfo(w io.Writer, addr string) {
	fmt.Fprintf(w, "ResumeForge %s listening on %s\n", s.Version, addr)
	s.displayEndpoints(w)
	s.displayAuthInfo(w)
	s.displayRequestLimitInfo(w)
	s.displayRateLimitInfo(w)
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints(w io.Writer) {
	fmt.Fprintln(w, "Available endpoints:")
	fmt.Fprintln(w, "  GET  /health                 - Health check")
	fmt.Fprintln(w, "  GET  /stats                  - Server statistics")
	fmt.Fprintln(w, "  GET  /sample-data            - Sample payload (?kind=cover_letter)")
	fmt.Fprintln(w, "  GET  /templates              - Available templates")
	fmt.Fprintln(w, "  POST /generate-resume        - Render a resume PDF")
	fmt.Fprintln(w, "  POST /generate-cover-letter  - Render a cover letter PDF")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo(w io.Writer) {
	if len(s.APIKeys) > 0 {
		fmt.Fprintf(w, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Fprintln(w, "Include 'X-API-Key: <your-key>' header in requests to the generate endpoints")
	} else {
		fmt.Fprintln(w, "API authentication: DISABLED (no API keys configured)")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo(w io.Writer) {
	if s.MaxRequestSize > 0 {
		fmt.Fprintf(w, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Fprintln(w, "Request size limit: DISABLED")
		fmt.Fprintln(w, "WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo(w io.Writer) {
	if s.RateLimiter == nil {
		fmt.Fprintln(w, "Rate limiting: DISABLED")
		fmt.Fprintln(w, "WARNING: No rate limiting configured!")
		return
	}
	fmt.Fprintf(w, "Rate limiting: ENABLED (%d calls per %s, %s store)\n",
		s.RateLimiter.Limit(), s.RateLimiter.Window(), s.RateLimit.Store)
	if s.RateLimit.MinInterval > 0 {
		fmt.Fprintf(w, "  - One generation per %s per client\n", s.RateLimit.MinInterval)
	}
	if s.RateLimit.ByAPIKey {
		fmt.Fprintln(w, "  - Per API key rate limiting enabled")
	}
	if s.RateLimit.ByIP {
		fmt.Fprintln(w, "  - Per IP address rate limiting enabled")
	}
}
