package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"atscore/internal/types"
)

func sampleReport() types.ScoreReport {
	return types.ScoreReport{
		OverallScore:    72,
		ReadinessStatus: types.ReadinessNeedsMinor,
		CategoryScores: map[string]int{
			types.CategoryKeywordMatching:     70,
			types.CategorySkillsAlignment:     68,
			types.CategoryExperienceRelevance: 75,
			types.CategoryFormatOptimization:  74,
			types.CategoryContentQuality:      73,
		},
		Strengths:     []string{"Strong keyword coverage"},
		Gaps:          []string{"Limited leadership evidence"},
		MissingSkills: []string{"kubernetes", "terraform"},
		DetailedAnalysis: types.DetailedAnalysis{
			KeywordDensity:   "Good density of role keywords.",
			Structure:        "Clear section structure.",
			ATSCompatibility: "Parses cleanly.",
		},
		ImprovementPlan: &types.ImprovementPlan{
			Timeline: "4-6 weeks",
			QuickWins: []types.QuickWin{
				{Action: "Add a skills section", Impact: "High"},
			},
		},
	}
}

func TestJSONFormatter(t *testing.T) {
	output, err := GlobalRegistry.Format(sampleReport(), "json")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded types.ScoreReport
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("JSON output does not round-trip: %v", err)
	}
	if decoded.OverallScore != 72 {
		t.Errorf("overallScore = %d, want 72", decoded.OverallScore)
	}
}

func TestTextFormatter(t *testing.T) {
	output, err := GlobalRegistry.Format(sampleReport(), "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	for _, want := range []string{
		"Overall Score: 72/100",
		"NEEDS_MINOR_IMPROVEMENTS",
		"Keyword Matching:",
		"kubernetes",
		"IMPROVEMENT PLAN",
		"Add a skills section",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("text output missing %q", want)
		}
	}
}

func TestMarkdownFormatter(t *testing.T) {
	output, err := GlobalRegistry.Format(sampleReport(), "markdown")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	for _, want := range []string{
		"# ATS Score Report",
		"**Overall Score:** 72/100",
		"| Keyword Matching | 70/100 |",
		"## Improvement Plan",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestMarkdownOmitsImprovementPlanWhenAbsent(t *testing.T) {
	report := sampleReport()
	report.ImprovementPlan = nil

	output, err := GlobalRegistry.Format(report, "markdown")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(output, "Improvement Plan") {
		t.Error("markdown output should omit the improvement plan section")
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := GlobalRegistry.Format(sampleReport(), "yaml"); err == nil {
		t.Error("expected an error for an unregistered format")
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := categoryLabel("keyword_matching"); got != "Keyword Matching" {
		t.Errorf("categoryLabel() = %q, want Keyword Matching", got)
	}
}
