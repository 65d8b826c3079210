package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/ratelimit"
	"resumeforge/internal/resume"
)

func newTestServer(t *testing.T, mutate func(*ServerConfig)) *Server {
	t.Helper()
	cfg := ServerConfig{
		Version:        "test",
		MaxRequestSize: 1 << 20,
		RateLimit:      &config.RateLimitConfig{Enabled: false},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewServer(nil, cfg, errors.Discard())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	for _, path := range []string{"/", "/health"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "healthy", body["status"])
			assert.Equal(t, "test", body["version"])
			assert.Contains(t, body["supported_sections"], "work_experience")
			tmpl := body["templates"].(map[string]any)
			assert.Equal(t, []any{"modern", "professional"}, tmpl["resume"])
			assert.Equal(t, []any{"cover"}, tmpl["cover_letter"])
		})
	}

	rec := do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	rec := do(t, newTestServer(t, nil).Handler(), http.MethodGet, "/health", "")

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 8)

	prod := newTestServer(t, func(c *ServerConfig) { c.Production = true }).Handler()
	rec = do(t, prod, http.MethodGet, "/health", "", "X-Request-ID", "abc123")
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}

func TestGenerateResumeFromSampleData(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	sample := do(t, h, http.MethodGet, "/sample-data", "")
	require.Equal(t, http.StatusOK, sample.Code)

	for _, path := range []string{"/generate-resume", "/generate-resume/"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, path, sample.Body.String())
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
			assert.Equal(t, "attachment; filename=John_Doe_resume.pdf", rec.Header().Get("Content-Disposition"))
			assert.NotEmpty(t, rec.Header().Get("X-Layout-Pages"))
			assert.NotEmpty(t, rec.Header().Get("X-Layout-Warnings"))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
		})
	}
}

func TestContentDispositionStaysASCII(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"plain", "John_Doe_resume.pdf"},
		{"accented", "José_Ñúñez_resume.pdf"},
		{"cjk", "山田_太郎_resume.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := contentDisposition(tt.filename)
			for i := 0; i < len(header); i++ {
				assert.Less(t, header[i], byte(0x80), header)
			}

			disposition, params, err := mime.ParseMediaType(header)
			require.NoError(t, err)
			assert.Equal(t, "attachment", disposition)
			assert.Equal(t, tt.filename, params["filename"])
		})
	}
}

func TestGenerateResumeWithAccentedName(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	r := resume.SampleResume()
	r.PersonalInfo.Name = "José Ñúñez"
	body, err := json.Marshal(r)
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/generate-resume", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "attachment; filename*=utf-8''Jos%C3%A9_%C3%91%C3%BA%C3%B1ez_resume.pdf",
		rec.Header().Get("Content-Disposition"))
}

func TestGenerateCoverLetter(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	sample := do(t, h, http.MethodGet, "/sample-data?kind=cover_letter", "")
	require.Equal(t, http.StatusOK, sample.Code)

	rec := do(t, h, http.MethodPost, "/generate-cover-letter", sample.Body.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "attachment; filename=John_Doe_cover_letter.pdf", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", rec.Header().Get("X-Layout-Pages"))

	rec = do(t, h, http.MethodGet, "/sample-data?kind=letter", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
		field  string
	}{
		{"missing name", "/generate-resume", `{"personal_info": {"name": "  "}}`, http.StatusBadRequest, errors.ErrCodeMissingName, "personal_info.name"},
		{"broken json", "/generate-resume", `{"personal_info":`, http.StatusBadRequest, errors.ErrCodeInvalidFormat, ""},
		{"unknown template", "/generate-resume", `{"template_name": "modern7", "personal_info": {"name": "Ada"}}`, http.StatusBadRequest, errors.ErrCodeUnknownTemplate, ""},
		{"bad photo", "/generate-resume", `{"photo": "***", "personal_info": {"name": "Ada"}}`, http.StatusBadRequest, errors.ErrCodeInvalidPhoto, ""},
		{"cover letter without name", "/generate-cover-letter/", `{"cover_letter_info": {"company_name": "Acme"}}`, http.StatusBadRequest, errors.ErrCodeMissingName, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "Invalid request", resp.Error)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.field, resp.Field)
		})
	}

	rec := do(t, h, http.MethodGet, "/generate-resume", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestSizeLimit(t *testing.T) {
	h := newTestServer(t, func(c *ServerConfig) { c.MaxRequestSize = 16 }).Handler()

	rec := do(t, h, http.MethodPost, "/generate-resume", `{"personal_info": {"name": "Ada Lovelace"}}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Max size: 16 bytes", decodeError(t, rec).Message)

	// a body without a declared length is cut off while decoding
	req := httptest.NewRequest(http.MethodPost, "/generate-resume", strings.NewReader(`{"personal_info": {"name": "Ada Lovelace"}}`))
	req.ContentLength = -1
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, out.Code)
}

func TestAuthentication(t *testing.T) {
	h := newTestServer(t, func(c *ServerConfig) { c.APIKeys = []string{"secret-key-123", ""} }).Handler()
	badBody := `{}`

	tests := []struct {
		name    string
		headers []string
		status  int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", []string{"X-API-Key", "nope"}, http.StatusUnauthorized},
		{"header key", []string{"X-API-Key", "secret-key-123"}, http.StatusBadRequest},
		{"bearer token", []string{"Authorization", "Bearer secret-key-123"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/generate-resume", badBody, tt.headers...)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
}

func rateLimited(calls int, minInterval time.Duration) func(*ServerConfig) {
	return func(c *ServerConfig) {
		c.RateLimit = &config.RateLimitConfig{
			Enabled:     true,
			Calls:       calls,
			Period:      time.Minute,
			Store:       "memory",
			MinInterval: minInterval,
			ByIP:        true,
		}
	}
}

func TestSlidingWindowRateLimit(t *testing.T) {
	h := newTestServer(t, rateLimited(2, 0)).Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "Max 2 calls per 60 seconds", decodeError(t, rec).Message)

	other := do(t, h, http.MethodGet, "/health", "", "X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestDebugSkipsHealthRateLimit(t *testing.T) {
	h := newTestServer(t, func(c *ServerConfig) {
		rateLimited(1, 0)(c)
		c.Debug = true
	}).Handler()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	}
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/stats", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/stats", "").Code)
}

func TestGenerationInterval(t *testing.T) {
	h := newTestServer(t, rateLimited(100, time.Minute)).Handler()

	first := do(t, h, http.MethodPost, "/generate-resume", `{}`)
	assert.Equal(t, http.StatusBadRequest, first.Code)

	second := do(t, h, http.MethodPost, "/generate-cover-letter", `{}`)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	// other endpoints are not spaced out
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/templates", "").Code)
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Time, time.Duration, int) (ratelimit.Usage, error) {
	return ratelimit.Usage{}, stderrors.New("connection refused")
}

func (failingStore) Close() error { return nil }

func TestRateLimitStoreFailureAllowsRequests(t *testing.T) {
	var logs bytes.Buffer
	cfg := ServerConfig{Version: "test"}
	rateLimited(1, 0)(&cfg)
	cfg.RateLimitStore = failingStore{}

	s, err := NewServer(nil, cfg, errors.NewWithWriter(&logs, slog.LevelInfo))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	h := s.Handler()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	}
	assert.Contains(t, logs.String(), "Rate limit store unavailable")
}

func TestStats(t *testing.T) {
	h := newTestServer(t, rateLimited(5, 5*time.Second)).Handler()

	rec := do(t, h, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	rl := body["rate_limiting"].(map[string]any)
	assert.Equal(t, true, rl["enabled"])
	assert.Equal(t, float64(5), rl["calls"])
	assert.Equal(t, float64(60), rl["period_seconds"])
	assert.Equal(t, "memory", rl["store"])

	gen := rl["generation"].(map[string]any)
	assert.Equal(t, float64(5), gen["min_interval_seconds"])

	assets := body["assets"].(map[string]any)
	assert.Equal(t, false, assets["enabled"])
}

func TestTemplatesEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list map[string][]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list[resume.KindResume], 2)
	assert.Equal(t, "modern", list[resume.KindResume][0]["name"])

	rec = do(t, h, http.MethodGet, "/templates?format=text", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "professional")
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = do(t, h, http.MethodGet, "/templates?format=yaml", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSlowRequestsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	s, err := NewServer(nil, ServerConfig{
		Version:              "test",
		SlowRequestThreshold: time.Nanosecond,
	}, errors.NewWithWriter(&logs, slog.LevelInfo))
	require.NoError(t, err)

	h := s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusAccepted)
	}))
	do(t, h, http.MethodGet, "/health", "")

	assert.Contains(t, logs.String(), "Slow request")
	assert.Contains(t, logs.String(), `"status":202`)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.0.2.1:1234", nil, "192.0.2.1"},
		{"remote addr without port", "192.0.2.1", nil, "192.0.2.1"},
		{"forwarded for", "192.0.2.1:1234", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.7, 10.0.0.1"}, "198.51.100.7"},
		{"real ip", "192.0.2.1:1234", map[string]string{"X-Real-IP": "198.51.100.8"}, "198.51.100.8"},
		{"invalid real ip", "192.0.2.1:1234", map[string]string{"X-Real-IP": "nope"}, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestGetRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "ip:192.0.2.1", getRateLimitKey(req, true, true))
	assert.Equal(t, "", getRateLimitKey(req, true, false))

	req.Header.Set("Authorization", "Bearer token-abcdefgh")
	assert.Equal(t, "api:token-abcdefgh", getRateLimitKey(req, true, true))
	assert.Equal(t, "ip:192.0.2.1", getRateLimitKey(req, false, true))
	assert.Equal(t, "api:token-ab****", maskRateLimitKey("api:token-abcdefgh"))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcdefgh****", maskAPIKey("abcdefghijkl"))
}

func TestServerInfo(t *testing.T) {
	var out bytes.Buffer
	newTestServer(t, nil).writeServerInfo(&out, "127.0.0.1:8000")
	assert.Contains(t, out.String(), "POST /generate-resume")
	assert.Contains(t, out.String(), "Rate limiting: DISABLED")
	assert.Contains(t, out.String(), "API authentication: DISABLED")

	out.Reset()
	newTestServer(t, rateLimited(100, 5*time.Second)).writeServerInfo(&out, "127.0.0.1:8000")
	assert.Contains(t, out.String(), "Rate limiting: ENABLED (100 calls per 1m0s, memory store)")
	assert.Contains(t, out.String(), "One generation per 5s per client")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, listener) }()

	url := "http://" + listener.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
