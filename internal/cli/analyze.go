package cli

import (
	"fmt"
	"os"

	"atscore/internal/common"
	"atscore/internal/errors"
	"atscore/internal/ingest"
	"atscore/internal/types"
	"atscore/internal/utils"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-pdf] [job-description-file]",
	Short: "Analyze a PDF resume against a job description",
	Long: `Analyze a resume in PDF form against a job description.
The command extracts the text from the PDF, scores it the same way the
score command does, and produces a full readiness report.

Only PDF documents up to 10 MiB are accepted.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().Uint64("seed", 0, "Seed for reproducible demo-mode scoring (0 uses a random seed)")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// readResumePDF validates and extracts the text from a PDF resume file.
func readResumePDF(filename string, logger *errors.Logger) (string, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return "", errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	info, err := os.Stat(filename)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot stat file: %s", filename), err)
	}
	if err := ingest.Validate("application/pdf", info.Size()); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}

	logger.Debug("Extracting text from PDF resume",
		"filename", filename,
		"size", utils.FormatFileSize(info.Size()))

	return ingest.ExtractText("application/pdf", data)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if cmd.Flags().Changed("seed") {
		seed, err := cmd.Flags().GetUint64("seed")
		if err != nil {
			return err
		}
		cfg.Analysis.Seed = seed
	}

	orchestrator, err := newOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	resumeText, err := readResumePDF(args[0], logger)
	if err != nil {
		return fmt.Errorf("failed to read resume PDF: %w", err)
	}

	createInput := func(contents []string) (types.ScoreResumeInput, error) {
		if len(contents) != 1 {
			return types.ScoreResumeInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return types.ScoreResumeInput{
			ResumeText:     resumeText,
			JobDescription: contents[0],
		}, nil
	}

	logDetails := func(input types.ScoreResumeInput, cfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	err = common.RunScoreCommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		[]string{args[1]},
		createInput,
		orchestrator.Analyze,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
