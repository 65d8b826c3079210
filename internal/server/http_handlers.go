package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"resumeforge/internal/errors"
	"resumeforge/internal/formatters"
	"resumeforge/internal/layout"
	"resumeforge/internal/observability"
	"resumeforge/internal/resume"
	"resumeforge/internal/templates"
)

// healthHandler reports liveness along with what the service can render
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":            "ResumeForge API is running!",
		"status":             "healthy",
		"version":            s.Version,
		"supported_sections": resume.SupportedSections,
		"templates": map[string][]string{
			resume.KindResume:      s.Resumes.Names(),
			resume.KindCoverLetter: s.CoverLetters.Names(),
		},
	})
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumeforge",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes":  s.MaxRequestSize,
			"slow_request_threshold":  s.SlowRequestThreshold.String(),
			"api_authentication":      len(s.APIKeys) > 0,
			"configured_api_keys":     len(s.APIKeys),
			"production_hardening_on": s.Production,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = map[string]any{
			"enabled":        true,
			"calls":          s.RateLimiter.Limit(),
			"period_seconds": s.RateLimiter.Window().Seconds(),
			"store":          s.RateLimit.Store,
			"by_ip":          s.RateLimit.ByIP,
			"by_api_key":     s.RateLimit.ByAPIKey,
			"generation":     s.GenerateLimiter.Stats(),
		}
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	response["assets"] = map[string]any{
		"enabled": s.Assets.Enabled(),
		"files":   s.Assets.Names(),
	}

	writeJSON(w, http.StatusOK, response)
}

// sampleDataHandler returns a payload that can be posted back unchanged
func (s *Server) sampleDataHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Query().Get("kind") {
	case "", resume.KindResume:
		writeJSON(w, http.StatusOK, resume.SampleResume())
	case resume.KindCoverLetter:
		writeJSON(w, http.StatusOK, resume.SampleCoverLetter())
	default:
		writeErrorResponse(w, "Invalid request", "kind must be resume or cover_letter", http.StatusBadRequest)
	}
}

// templatesHandler lists templates as json, or text/markdown via ?format=
func (s *Server) templatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list := formatters.TemplateList{
		resume.KindResume:      s.Resumes.List(),
		resume.KindCoverLetter: s.CoverLetters.List(),
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, list)
		return
	}

	out, err := formatters.NewFormatterRegistry().Format(list, format)
	if err != nil {
		writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
		return
	}
	contentType := "text/plain; charset=utf-8"
	if format == "markdown" {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.WriteString(w, out)
}

func (s *Server) generateResumeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := resume.Decode(r.Body)
	if err == nil {
		err = data.Validate()
	}
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	serveDocument(s, w, r, document[*resume.Resume]{
		kind:     resume.KindResume,
		registry: s.Resumes,
		data:     data,
		name:     data.PersonalInfo.Name,
		title:    data.PersonalInfo.Title,
		template: data.TemplateName,
		pageSize: data.PageSize,
	})
}

func (s *Server) generateCoverLetterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := resume.DecodeCoverLetter(r.Body)
	if err == nil {
		err = data.Validate()
	}
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	serveDocument(s, w, r, document[*resume.CoverLetter]{
		kind:     resume.KindCoverLetter,
		registry: s.CoverLetters,
		data:     data,
		name:     data.Name,
		title:    data.Title,
		template: data.TemplateName,
		pageSize: data.PageSize,
	})
}

// document is one validated generation request.
type document[T any] struct {
	kind     string
	registry *templates.Registry[T]
	data     T
	name     string
	title    string
	template string
	pageSize string
}

func serveDocument[T any](s *Server, w http.ResponseWriter, r *http.Request, doc document[T]) {
	tmpl, err := doc.registry.Get(doc.template)
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}
	page := layout.ParsePageSize(doc.pageSize)

	result, err := s.Observability.TrackGeneration(r.Context(), observability.Generation{
		Template: tmpl.Name(),
		Kind:     doc.kind,
		PageSize: page.Name,
	}, func(ctx context.Context) (*layout.Result, error) {
		return templates.Generate(tmpl, doc.data, page, templates.GenerateOptions{
			Title:  doc.name,
			Author: doc.name,
			Logger: s.Logger.With("request_id", requestIDFrom(ctx)),
		})
	})
	if err != nil {
		s.Logger.LogError(err, "Document generation failed",
			"kind", doc.kind,
			"template", tmpl.Name(),
			"request_id", requestIDFrom(r.Context()))
		writeErrorResponse(w, generationFailedMessage(doc.kind), "", http.StatusInternalServerError)
		return
	}

	s.Logger.Info("Document generated",
		"kind", doc.kind,
		"template", tmpl.Name(),
		"page_size", page.Name,
		"pages", result.TotalPages,
		"overflow_pages", result.OverflowPages,
		"warnings", len(result.Warnings),
		"request_id", requestIDFrom(r.Context()))

	filename := resume.Filename(doc.name, doc.kind)
	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", contentDisposition(filename))
	h.Set("Content-Length", strconv.Itoa(len(result.Document)))
	h.Set("X-Layout-Pages", strconv.Itoa(result.TotalPages))
	h.Set("X-Layout-Warnings", strconv.Itoa(len(result.Warnings)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Document); err != nil {
		s.Logger.LogError(err, "Failed to write document response")
	}
}

// contentDisposition names the download. Non-ASCII names use the RFC 2231
// filename* form so the header stays ASCII.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func generationFailedMessage(kind string) string {
	if kind == resume.KindCoverLetter {
		return "Cover letter generation failed"
	}
	return "Resume generation failed"
}

// writeRequestError maps decode and validation failures onto 4xx responses.
func (s *Server) writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		writeErrorResponse(w, "Request too large",
			fmt.Sprintf("Max size: %d bytes", maxBytesErr.Limit),
			http.StatusRequestEntityTooLarge)
		return
	}

	resp := ErrorResponse{Error: "Invalid request", Message: err.Error()}
	if appErr, ok := errors.AsAppError(err); ok {
		resp.Message = appErr.Message
		resp.Code = appErr.Code
		if field, ok := appErr.Context["field"].(string); ok {
			resp.Field = field
		}
	}
	s.Logger.Debug("Rejected request",
		"endpoint", r.URL.Path,
		"code", resp.Code,
		"request_id", requestIDFrom(r.Context()))
	writeJSON(w, http.StatusBadRequest, resp)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
