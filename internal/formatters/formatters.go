package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"atscore/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ScoreReport", &ScoreTextFormatter{})
	registry.RegisterFormatter("markdown", "ScoreReport", &ScoreMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ScoreReport, *types.ScoreReport:
		return "ScoreReport"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func asScoreReport(data any) (types.ScoreReport, error) {
	switch report := data.(type) {
	case types.ScoreReport:
		return report, nil
	case *types.ScoreReport:
		return *report, nil
	default:
		return types.ScoreReport{}, fmt.Errorf("expected ScoreReport, got %T", data)
	}
}

// categoryLabel turns a category key like "keyword_matching" into a display
// label like "Keyword Matching".
func categoryLabel(category string) string {
	words := strings.Split(category, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// ScoreTextFormatter handles text formatting for score reports
type ScoreTextFormatter struct{}

func (stf *ScoreTextFormatter) Format(data any) (string, error) {
	report, err := asScoreReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== ATS SCORE REPORT ===\n\n")
	output.WriteString(fmt.Sprintf("Overall Score: %d/100\n", report.OverallScore))
	output.WriteString(fmt.Sprintf("Readiness: %s\n\n", report.ReadinessStatus))

	output.WriteString("=== CATEGORY SCORES ===\n")
	for _, category := range types.CategoryNames {
		if score, ok := report.CategoryScores[category]; ok {
			output.WriteString(fmt.Sprintf("%-22s %d/100\n", categoryLabel(category)+":", score))
		}
	}
	output.WriteString("\n")

	if len(report.Strengths) > 0 {
		output.WriteString("=== STRENGTHS ===\n")
		for _, strength := range report.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strength))
		}
		output.WriteString("\n")
	}

	if len(report.Gaps) > 0 {
		output.WriteString("=== GAPS ===\n")
		for _, gap := range report.Gaps {
			output.WriteString(fmt.Sprintf("- %s\n", gap))
		}
		output.WriteString("\n")
	}

	if len(report.MissingSkills) > 0 {
		output.WriteString("=== MISSING SKILLS ===\n")
		for _, skill := range report.MissingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	output.WriteString("=== DETAILED ANALYSIS ===\n")
	output.WriteString("Keyword Density:\n")
	output.WriteString(report.DetailedAnalysis.KeywordDensity)
	output.WriteString("\n\n")
	output.WriteString("Structure:\n")
	output.WriteString(report.DetailedAnalysis.Structure)
	output.WriteString("\n\n")
	output.WriteString("ATS Compatibility:\n")
	output.WriteString(report.DetailedAnalysis.ATSCompatibility)
	output.WriteString("\n")

	if plan := report.ImprovementPlan; plan != nil {
		output.WriteString("\n=== IMPROVEMENT PLAN ===\n")
		output.WriteString(fmt.Sprintf("Timeline: %s\n\n", plan.Timeline))

		if len(plan.PriorityImprovements) > 0 {
			output.WriteString("Priority Improvements:\n")
			for i, improvement := range plan.PriorityImprovements {
				output.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, improvement.Skill, improvement.Category))
				output.WriteString(fmt.Sprintf("   %s -> %s, estimated %s\n",
					improvement.CurrentLevel, improvement.TargetLevel, improvement.TimeEstimate))
				for _, step := range improvement.LearningPath {
					output.WriteString(fmt.Sprintf("   - %s\n", step))
				}
			}
			output.WriteString("\n")
		}

		if len(plan.QuickWins) > 0 {
			output.WriteString("Quick Wins:\n")
			for _, win := range plan.QuickWins {
				output.WriteString(fmt.Sprintf("- [%s] %s\n", win.Impact, win.Action))
			}
		}
	}

	return output.String(), nil
}

func (stf *ScoreTextFormatter) SupportedType() string {
	return "ScoreReport"
}

// ScoreMarkdownFormatter handles markdown formatting for score reports
type ScoreMarkdownFormatter struct{}

func (smf *ScoreMarkdownFormatter) Format(data any) (string, error) {
	report, err := asScoreReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# ATS Score Report\n\n")
	output.WriteString(fmt.Sprintf("**Overall Score:** %d/100\n\n", report.OverallScore))
	output.WriteString(fmt.Sprintf("**Readiness:** %s\n\n", report.ReadinessStatus))

	output.WriteString("## Category Scores\n\n")
	output.WriteString("| Category | Score |\n")
	output.WriteString("|----------|-------|\n")
	for _, category := range types.CategoryNames {
		if score, ok := report.CategoryScores[category]; ok {
			output.WriteString(fmt.Sprintf("| %s | %d/100 |\n", categoryLabel(category), score))
		}
	}
	output.WriteString("\n")

	if len(report.Strengths) > 0 {
		output.WriteString("## Strengths\n\n")
		for _, strength := range report.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strength))
		}
		output.WriteString("\n")
	}

	if len(report.Gaps) > 0 {
		output.WriteString("## Gaps\n\n")
		for _, gap := range report.Gaps {
			output.WriteString(fmt.Sprintf("- %s\n", gap))
		}
		output.WriteString("\n")
	}

	if len(report.MissingSkills) > 0 {
		output.WriteString("## Missing Skills\n\n")
		for _, skill := range report.MissingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Detailed Analysis\n\n")
	output.WriteString("### Keyword Density\n")
	output.WriteString(report.DetailedAnalysis.KeywordDensity)
	output.WriteString("\n\n")
	output.WriteString("### Structure\n")
	output.WriteString(report.DetailedAnalysis.Structure)
	output.WriteString("\n\n")
	output.WriteString("### ATS Compatibility\n")
	output.WriteString(report.DetailedAnalysis.ATSCompatibility)
	output.WriteString("\n")

	if plan := report.ImprovementPlan; plan != nil {
		output.WriteString("\n## Improvement Plan\n\n")
		output.WriteString(fmt.Sprintf("**Timeline:** %s\n\n", plan.Timeline))

		if len(plan.PriorityImprovements) > 0 {
			output.WriteString("### Priority Improvements\n\n")
			for i, improvement := range plan.PriorityImprovements {
				output.WriteString(fmt.Sprintf("%d. **%s** (%s): %s -> %s, estimated %s\n",
					i+1, improvement.Skill, improvement.Category,
					improvement.CurrentLevel, improvement.TargetLevel, improvement.TimeEstimate))
				for _, step := range improvement.LearningPath {
					output.WriteString(fmt.Sprintf("   - %s\n", step))
				}
			}
			output.WriteString("\n")
		}

		if len(plan.QuickWins) > 0 {
			output.WriteString("### Quick Wins\n\n")
			for _, win := range plan.QuickWins {
				output.WriteString(fmt.Sprintf("- **%s impact:** %s\n", win.Impact, win.Action))
			}
		}
	}

	return output.String(), nil
}

func (smf *ScoreMarkdownFormatter) SupportedType() string {
	return "ScoreReport"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
