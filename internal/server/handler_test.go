package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"atscore/internal/analysis"
	"atscore/internal/config"
	"atscore/internal/errors"
	"atscore/internal/observability"
	"atscore/internal/scoring"
	"atscore/internal/types"
)

func testAppConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
			Timeout:  30 * time.Second,
		},
		Analysis: config.AnalysisConfig{Mode: "demo"},
		Observability: config.ObservabilityConfig{
			HealthCheck: config.HealthCheckConfig{Timeout: 5 * time.Second},
		},
	}
}

func testServer(t *testing.T, apiKeys []string, rateLimit *config.RateLimitConfig) (*Server, *observability.ObservabilityManager) {
	t.Helper()

	logger := errors.NewLogger(slog.LevelError)
	orch, err := analysis.NewOrchestrator(analysis.ModeDemo, scoring.NewScorer(rand.NewPCG(7, 11)), nil, logger)
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}

	appCfg := testAppConfig()
	srv := NewServer(appCfg, ServerConfig{
		Host:           "localhost",
		Port:           "0",
		Version:        "test",
		APIKeys:        apiKeys,
		MaxRequestSize: 1 << 20,
		RateLimit:      rateLimit,
	}, orch, logger)

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, appCfg)
	if err != nil {
		t.Fatalf("NewObservabilityManager() error = %v", err)
	}

	return srv, om
}

func postScore(t *testing.T, mux *http.ServeMux, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestScoreEndpoint(t *testing.T) {
	srv, om := testServer(t, nil, nil)
	mux := srv.setupRoutes(om)

	body := `{"resumeText":"Python engineer with Docker and SQL.","jobDescription":"Senior Python role in an agile team."}`
	rec := postScore(t, mux, body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var report types.ScoreReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.OverallScore < 0 || report.OverallScore > 100 {
		t.Errorf("overall score = %d, want within [0, 100]", report.OverallScore)
	}
	if len(report.CategoryScores) != len(types.CategoryNames) {
		t.Errorf("got %d categories, want %d", len(report.CategoryScores), len(types.CategoryNames))
	}
}

func TestScoreEndpointValidation(t *testing.T) {
	srv, om := testServer(t, nil, nil)
	mux := srv.setupRoutes(om)

	tests := []struct {
		name string
		body string
	}{
		{"missing resume text", `{"jobDescription":"A role"}`},
		{"missing job description", `{"resumeText":"A resume"}`},
		{"malformed JSON", `{"resumeText":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postScore(t, mux, tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestScoreEndpointRequiresAPIKey(t *testing.T) {
	srv, om := testServer(t, []string{"secret-key"}, nil)
	mux := srv.setupRoutes(om)

	body := `{"resumeText":"resume","jobDescription":"job"}`

	t.Run("missing key", func(t *testing.T) {
		rec := postScore(t, mux, body, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		rec := postScore(t, mux, body, map[string]string{"X-API-Key": "wrong"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("valid key via header", func(t *testing.T) {
		rec := postScore(t, mux, body, map[string]string{"X-API-Key": "secret-key"})
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("valid key via bearer token", func(t *testing.T) {
		rec := postScore(t, mux, body, map[string]string{"Authorization": "Bearer secret-key"})
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})
}

func multipartResume(t *testing.T, fileContentType string, fileContent []byte, jobDescription string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="resume"; filename="resume.pdf"`)
	h.Set("Content-Type", fileContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	if _, err := part.Write(fileContent); err != nil {
		t.Fatalf("part.Write() error = %v", err)
	}

	if jobDescription != "" {
		if err := w.WriteField("jobDescription", jobDescription); err != nil {
			t.Fatalf("WriteField() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart close error = %v", err)
	}

	return &buf, w.FormDataContentType()
}

func TestAnalyzeEndpointRejectsNonPDF(t *testing.T) {
	srv, om := testServer(t, nil, nil)
	mux := srv.setupRoutes(om)

	body, contentType := multipartResume(t, "text/plain", []byte("plain text resume"), "A job description")

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want %d, body: %s", rec.Code, http.StatusUnsupportedMediaType, rec.Body.String())
	}
}

func TestAnalyzeEndpointRejectsCorruptPDF(t *testing.T) {
	srv, om := testServer(t, nil, nil)
	mux := srv.setupRoutes(om)

	body, contentType := multipartResume(t, "application/pdf", []byte("%PDF-1.4 not really a pdf"), "A job description")

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d, body: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestAnalyzeEndpointRequiresJobDescription(t *testing.T) {
	srv, om := testServer(t, nil, nil)
	mux := srv.setupRoutes(om)

	body, contentType := multipartResume(t, "application/pdf", []byte("%PDF-1.4"), "")

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, om := testServer(t, nil, nil)
	mux := srv.setupRoutes(om)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", response["status"])
	}
	if response["analysis_mode"] != "demo" {
		t.Errorf("analysis_mode = %v, want demo", response["analysis_mode"])
	}
	if response["analysis_busy"] != false {
		t.Errorf("analysis_busy = %v, want false", response["analysis_busy"])
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, om := testServer(t, nil, &config.RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: 60,
		BurstCapacity:  10,
		ByIP:           true,
		Window:         time.Minute,
	})
	mux := srv.setupRoutes(om)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode stats response: %v", err)
	}
	if response["service"] != "atscore" {
		t.Errorf("service = %v, want atscore", response["service"])
	}
	rl, ok := response["rate_limiting"].(map[string]any)
	if !ok {
		t.Fatal("rate_limiting stats missing")
	}
	if _, ok := rl["active_limiters"]; !ok {
		t.Error("rate limiter stats should report active_limiters")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	srv, om := testServer(t, nil, &config.RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: 60,
		BurstCapacity:  2,
		ByIP:           true,
		Window:         time.Minute,
	})
	mux := srv.setupRoutes(om)

	body := `{"resumeText":"resume","jobDescription":"job"}`

	// Burst capacity admits the first two requests; the third is rejected.
	seen429 := false
	for range 3 {
		rec := postScore(t, mux, body, nil)
		if rec.Code == http.StatusTooManyRequests {
			seen429 = true
		}
	}
	if !seen429 {
		t.Error("expected a 429 after exhausting the burst capacity")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, om := testServer(t, nil, nil)
	mux := srv.setupRoutes(om)

	req := httptest.NewRequest(http.MethodGet, "/score", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "****" {
		t.Errorf("maskAPIKey(short) = %q, want ****", got)
	}
	if got := maskAPIKey("abcdefgh12345678"); got != "abcdefgh****" {
		t.Errorf("maskAPIKey() = %q, want abcdefgh****", got)
	}
}
