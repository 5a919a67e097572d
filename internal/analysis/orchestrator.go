package analysis

import (
	"context"
	stderrors "errors"
	"sync/atomic"

	"atscore/internal/ai"
	"atscore/internal/errors"
	"atscore/internal/scoring"
	"atscore/internal/types"
)

// Mode selects how resumes are analyzed.
type Mode string

const (
	// ModeDemo scores locally with the heuristic scorer.
	ModeDemo Mode = "demo"
	// ModeLive scores through the remote analysis provider.
	ModeLive Mode = "live"
)

// ErrAnalysisInProgress is returned when an analysis is submitted while
// another one is still running.
var ErrAnalysisInProgress = errors.NewValidationError(
	errors.ErrCodeAnalysisBusy,
	"an analysis is already in progress",
	nil,
)

// Orchestrator coordinates a single analysis at a time. Provider failures
// never escape as errors: they are normalized into error-shaped or fallback
// reports so callers always receive a renderable ScoreReport.
type Orchestrator struct {
	mode     Mode
	scorer   *scoring.Scorer
	provider ai.Provider
	logger   *errors.Logger

	// busy serializes analyses; it also guards the scorer's random source,
	// which is not safe for concurrent use.
	busy atomic.Bool
}

// NewOrchestrator creates an orchestrator for the given mode. A provider is
// required in live mode; a nil scorer gets an entropy-seeded default.
func NewOrchestrator(mode Mode, scorer *scoring.Scorer, provider ai.Provider, logger *errors.Logger) (*Orchestrator, error) {
	switch mode {
	case ModeDemo, ModeLive:
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"analysis mode must be 'demo' or 'live'", nil)
	}
	if mode == ModeLive && provider == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"live mode requires an analysis provider", nil)
	}
	if scorer == nil {
		scorer = scoring.NewScorer(nil)
	}

	return &Orchestrator{
		mode:     mode,
		scorer:   scorer,
		provider: provider,
		logger:   logger,
	}, nil
}

// Mode returns the configured analysis mode.
func (o *Orchestrator) Mode() Mode {
	return o.mode
}

// Busy reports whether an analysis is currently running.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Analyze runs one analysis. It returns ErrAnalysisInProgress when another
// analysis is in flight; any other outcome is a report, never an error.
func (o *Orchestrator) Analyze(ctx context.Context, input types.ScoreResumeInput) (types.ScoreReport, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return types.ScoreReport{}, ErrAnalysisInProgress
	}
	defer o.busy.Store(false)

	if o.mode == ModeDemo {
		o.logger.Debug("Running heuristic analysis",
			"resume_length", len(input.ResumeText),
			"job_length", len(input.JobDescription))
		return o.scorer.Score(input.ResumeText, input.JobDescription), nil
	}

	report, usage, err := o.provider.ScoreResume(ctx, input)
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Code == errors.ErrCodeAIResponseParse {
			o.logger.Warn("Provider returned a malformed response, substituting fallback report",
				"error", err.Error())
			return FallbackReport(), nil
		}

		o.logger.LogError(err, "Remote analysis failed, returning error report")
		return ErrorReport(err), nil
	}

	if usage != nil {
		o.logger.Debug("Remote analysis completed",
			"overall_score", report.OverallScore,
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens)
	}
	return report, nil
}
