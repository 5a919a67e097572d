package analysis

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"atscore/internal/ai"
	"atscore/internal/errors"
	"atscore/internal/scoring"
	"atscore/internal/types"
)

var testLogger = errors.NewLogger(slog.LevelError)

// fakeProvider implements ai.Provider for orchestrator tests.
type fakeProvider struct {
	report  types.ScoreReport
	usage   *ai.TokenUsage
	err     error
	started chan struct{} // closed when ScoreResume begins, if non-nil
	release chan struct{} // blocks ScoreResume until closed, if non-nil
}

func (f *fakeProvider) ScoreResume(ctx context.Context, input types.ScoreResumeInput) (types.ScoreReport, *ai.TokenUsage, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.report, f.usage, f.err
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "fake", Available: true}
}

func (f *fakeProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{"enabled": false}
}

func (f *fakeProvider) Close() error { return nil }

func demoOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(ModeDemo, scoring.NewScorer(rand.NewPCG(1, 2)), nil, testLogger)
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}
	return o
}

func TestNewOrchestratorValidation(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		provider ai.Provider
		wantErr  bool
	}{
		{"demo without provider", ModeDemo, nil, false},
		{"live with provider", ModeLive, &fakeProvider{}, false},
		{"live without provider", ModeLive, nil, true},
		{"unknown mode", Mode("batch"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrchestrator(tt.mode, nil, tt.provider, testLogger)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewOrchestrator() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnalyzeDemoMode(t *testing.T) {
	o := demoOrchestrator(t)

	report, err := o.Analyze(context.Background(), types.ScoreResumeInput{
		ResumeText:     "Python engineer with SQL and Docker background.",
		JobDescription: "Senior role, years of experience with Python required. Agile team.",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.OverallScore < 0 || report.OverallScore > 100 {
		t.Errorf("overall score = %d, want within [0, 100]", report.OverallScore)
	}
	if report.ReadinessStatus == types.ReadinessError {
		t.Error("demo analysis must not produce an error report")
	}
	if len(report.CategoryScores) != len(types.CategoryNames) {
		t.Errorf("got %d categories, want %d", len(report.CategoryScores), len(types.CategoryNames))
	}
	if o.Busy() {
		t.Error("orchestrator should be idle after Analyze returns")
	}
}

func TestAnalyzeLivePassesThroughProviderReport(t *testing.T) {
	want := types.ScoreReport{
		OverallScore:    92,
		ReadinessStatus: types.ReadinessATSReady,
		CategoryScores:  map[string]int{types.CategoryKeywordMatching: 92},
		Strengths:       []string{"Excellent keyword coverage"},
	}
	provider := &fakeProvider{report: want, usage: &ai.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}}

	o, err := NewOrchestrator(ModeLive, nil, provider, testLogger)
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}

	got, err := o.Analyze(context.Background(), types.ScoreResumeInput{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.OverallScore != want.OverallScore || got.ReadinessStatus != want.ReadinessStatus {
		t.Errorf("Analyze() = %+v, want %+v", got, want)
	}
}

func TestAnalyzeLiveProviderFailure(t *testing.T) {
	provider := &fakeProvider{
		err: errors.NewAIError(errors.ErrCodeAIServiceFailed, "upstream unavailable", nil),
	}
	o, err := NewOrchestrator(ModeLive, nil, provider, testLogger)
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}

	report, err := o.Analyze(context.Background(), types.ScoreResumeInput{})
	if err != nil {
		t.Fatalf("provider failure must not surface as an error, got %v", err)
	}

	if report.OverallScore != 0 {
		t.Errorf("overall score = %d, want 0", report.OverallScore)
	}
	if report.ReadinessStatus != types.ReadinessError {
		t.Errorf("readiness = %q, want %q", report.ReadinessStatus, types.ReadinessError)
	}
	if len(report.Gaps) == 0 {
		t.Error("error report must carry at least one gap describing the failure")
	}
}

func TestAnalyzeLiveMalformedResponseUsesFallback(t *testing.T) {
	provider := &fakeProvider{
		err: errors.NewAIError(errors.ErrCodeAIResponseParse, "bad JSON", nil),
	}
	o, err := NewOrchestrator(ModeLive, nil, provider, testLogger)
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}

	report, err := o.Analyze(context.Background(), types.ScoreResumeInput{})
	if err != nil {
		t.Fatalf("malformed response must not surface as an error, got %v", err)
	}

	if report.OverallScore != FallbackScore {
		t.Errorf("overall score = %d, want %d", report.OverallScore, FallbackScore)
	}
	if report.ReadinessStatus != types.ReadinessNeedsMinor {
		t.Errorf("readiness = %q, want %q", report.ReadinessStatus, types.ReadinessNeedsMinor)
	}
	if report.ImprovementPlan == nil {
		t.Error("fallback report scores below 90 and must include a plan")
	}
}

func TestAnalyzeRejectsConcurrentSubmission(t *testing.T) {
	provider := &fakeProvider{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	o, err := NewOrchestrator(ModeLive, nil, provider, testLogger)
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := o.Analyze(context.Background(), types.ScoreResumeInput{}); err != nil {
			t.Errorf("first Analyze() error = %v", err)
		}
	}()

	select {
	case <-provider.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first analysis never started")
	}

	if !o.Busy() {
		t.Error("orchestrator should report busy while an analysis runs")
	}
	if _, err := o.Analyze(context.Background(), types.ScoreResumeInput{}); err != ErrAnalysisInProgress {
		t.Errorf("second Analyze() error = %v, want ErrAnalysisInProgress", err)
	}

	close(provider.release)
	<-done

	if o.Busy() {
		t.Error("orchestrator should be idle after the analysis finishes")
	}
}
