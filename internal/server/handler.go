package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"atscore/internal/analysis"
	"atscore/internal/errors"
	"atscore/internal/ingest"
	"atscore/internal/observability"
	"atscore/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// createScoreHandler handles raw-text scoring requests with observability
func (s *Server) createScoreHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("atscore.api")
		ctx, span := tracer.Start(ctx, "api.score")
		defer span.End()

		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "POST is required", http.StatusMethodNotAllowed)
			return
		}

		var req ScoreRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "score"),
		)

		input := types.ScoreResumeInput{
			ResumeText:     req.ResumeText,
			JobDescription: req.JobDescription,
		}

		s.runAnalysis(ctx, om, span, w, input)
	}
}

// createAnalyzeHandler handles resume document uploads with observability.
// It expects a multipart form with a PDF "resume" part and a
// "jobDescription" field.
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("atscore.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "POST is required", http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseMultipartForm(ingest.MaxUploadSize); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid multipart form", err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("resume")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume file", "a 'resume' file part is required", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.Warn("Failed to close uploaded file", "error", err)
			}
		}()

		jobDescription := r.FormValue("jobDescription")
		if strings.TrimSpace(jobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		mediaType := header.Header.Get("Content-Type")
		span.SetAttributes(
			attribute.String("upload.media_type", mediaType),
			attribute.Int64("upload.size_bytes", header.Size),
			attribute.String("operation", "analyze"),
		)

		// Reject on declared size before reading the body
		if err := ingest.Validate(mediaType, header.Size); err != nil {
			span.RecordError(err)
			writeIngestError(w, err)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, ingest.MaxUploadSize+1))
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to read resume file", err.Error(), http.StatusBadRequest)
			return
		}

		resumeText, err := ingest.ExtractText(mediaType, data)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ingest"))
			writeIngestError(w, err)
			return
		}

		span.SetAttributes(attribute.Int("upload.extracted_chars", len(resumeText)))
		om.GetMetrics().RecordBusinessMetric(ctx, "document_ingested", true, om,
			attribute.String("media_type", mediaType),
			attribute.Int64("size_bytes", header.Size))

		input := types.ScoreResumeInput{
			ResumeText:     resumeText,
			JobDescription: jobDescription,
		}

		s.runAnalysis(ctx, om, span, w, input)
	}
}

// runAnalysis submits the input to the orchestrator, records metrics, and
// writes the resulting report. A busy orchestrator maps to 409.
func (s *Server) runAnalysis(ctx context.Context, om *observability.ObservabilityManager, span trace.Span, w http.ResponseWriter, input types.ScoreResumeInput) {
	metrics := om.GetMetrics()

	var report types.ScoreReport
	err := metrics.TrackAIOperationWithTokens(ctx, "score_resume", func(ctx context.Context) *observability.AIOperationResult {
		result, analyzeErr := s.Orchestrator.Analyze(ctx, input)
		report = result
		return &observability.AIOperationResult{Error: analyzeErr}
	}, om)

	if err != nil {
		span.RecordError(err)
		if stderrors.Is(err, analysis.ErrAnalysisInProgress) {
			span.SetAttributes(attribute.String("error.type", "busy"))
			metrics.RecordBusinessMetric(ctx, "analysis_rejected", false, om,
				attribute.String("reason", "busy"))
			writeErrorResponse(w, "Analysis in progress", "another analysis is already running, retry shortly", http.StatusConflict)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_scored", false, om,
			attribute.String("error", err.Error()))
		writeErrorResponse(w, "Failed to score resume", err.Error(), http.StatusInternalServerError)
		return
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("ats.overall_score", report.OverallScore),
		attribute.String("ats.readiness", report.ReadinessStatus),
	)
	metrics.RecordBusinessMetric(ctx, "resume_scored", report.ReadinessStatus != types.ReadinessError, om,
		attribute.Int("ats.overall_score", report.OverallScore),
		attribute.String("ats.readiness", report.ReadinessStatus))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.Logger.LogError(err, "Failed to encode score report")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeIngestError maps document ingestion failures to HTTP status codes
func writeIngestError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	title := "Invalid resume document"

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Code {
		case errors.ErrCodeInvalidMediaType:
			status = http.StatusUnsupportedMediaType
			title = "Unsupported media type"
		case errors.ErrCodeFileTooLarge:
			status = http.StatusRequestEntityTooLarge
			title = "Resume file too large"
		case errors.ErrCodeEmptyDocument:
			title = "Empty resume document"
		case errors.ErrCodeFileNotReadable:
			title = "Unreadable resume document"
		}
	}

	writeErrorResponse(w, title, err.Error(), status)
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
