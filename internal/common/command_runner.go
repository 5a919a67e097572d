package common

import (
	"context"
	"fmt"

	"atscore/internal/errors"
	"atscore/internal/types"
)

// CreateInputFunc defines how to build the scoring input from file contents.
type CreateInputFunc func(contents []string) (types.ScoreResumeInput, error)

// AnalyzeFunc runs one analysis and returns the resulting report.
type AnalyzeFunc func(context.Context, types.ScoreResumeInput) (types.ScoreReport, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc func(input types.ScoreResumeInput, cfg CommandConfig)

// RunScoreCommand encapsulates the common logic for file-based scoring
// commands: read and validate the input files, run the analysis, and write
// the formatted report.
func RunScoreCommand(
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc,
	analyze AnalyzeFunc,
	logDetails LogDetailsFunc,
) error {
	// Pass the logger when creating helpers
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	report, err := analyze(ctx, input)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(report, cmdConfig)
}
