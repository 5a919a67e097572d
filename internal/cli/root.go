package cli

import (
	"context"
	"fmt"
	"math/rand/v2"

	"atscore/internal/ai"
	"atscore/internal/analysis"
	"atscore/internal/config"
	"atscore/internal/errors"
	"atscore/internal/scoring"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "atscore",
	Short: "A CLI tool for scoring resumes against job descriptions",
	Long: `Atscore analyzes a resume against a job description and produces an
ATS readiness report: an overall score, per-category scores, detected gaps,
and an improvement plan. It can score locally with a deterministic heuristic
or delegate the analysis to a remote AI provider.`,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// newOrchestrator builds the analysis orchestrator for the configured mode.
// A non-zero seed makes demo-mode perturbation reproducible.
func newOrchestrator(cfg *config.Config, logger *errors.Logger) (*analysis.Orchestrator, error) {
	var scorer *scoring.Scorer
	if cfg.Analysis.Seed != 0 {
		scorer = scoring.NewScorer(rand.NewPCG(cfg.Analysis.Seed, cfg.Analysis.Seed))
	}

	mode := analysis.Mode(cfg.Analysis.Mode)

	var provider ai.Provider
	if mode == analysis.ModeLive {
		service, err := ai.NewService(&cfg.AI, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI service: %w", err)
		}
		provider = service.Provider
	}

	return analysis.NewOrchestrator(mode, scorer, provider, logger)
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
