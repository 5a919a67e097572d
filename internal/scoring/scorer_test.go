package scoring

import (
	"math"
	"math/rand/v2"
	"reflect"
	"slices"
	"strings"
	"testing"

	"atscore/internal/types"
)

// specimen job description: exactly 600 characters matching react and python
// (technical), agile (managerial) and senior (experience).
func specimenJobDescription() string {
	base := "Senior engineer role working with React and Python in an agile environment."
	return base + strings.Repeat("x", 600-len(base))
}

func TestBaseScore(t *testing.T) {
	tests := []struct {
		name           string
		resumeText     string
		jobDescription string
		want           float64
	}{
		{
			name:           "empty inputs give the floor",
			resumeText:     "",
			jobDescription: "",
			want:           65,
		},
		{
			name:           "technical keywords match from resume alone",
			resumeText:     "Built data pipelines in Python with Docker.",
			jobDescription: "",
			want:           71, // 65 + 3*2
		},
		{
			name:           "two technical one managerial one experience at 600 chars",
			resumeText:     "",
			jobDescription: specimenJobDescription(),
			want:           81, // 65 + 3*2 + 2*1 + 2*1 + 6
		},
		{
			name:       "saturated inputs hit the cap",
			resumeText: "",
			jobDescription: strings.Repeat(
				"javascript react python java aws docker sql git "+
					"project management team lead scrum agile leadership "+
					"years experience senior manager ", 20),
			want: 95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := matchKeywords(tt.resumeText, tt.jobDescription)
			got := baseScore(m, len(tt.jobDescription))
			if got != tt.want {
				t.Errorf("baseScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadinessStatus(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, types.ReadinessATSReady},
		{90, types.ReadinessATSReady},
		{89, types.ReadinessNeedsMinor},
		{70, types.ReadinessNeedsMinor},
		{69, types.ReadinessNeedsMajor},
		{0, types.ReadinessNeedsMajor},
	}

	for _, tt := range tests {
		if got := readinessStatus(tt.score); got != tt.want {
			t.Errorf("readinessStatus(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreInvariants(t *testing.T) {
	inputs := []struct {
		name           string
		resumeText     string
		jobDescription string
	}{
		{"empty", "", ""},
		{"specimen", "React developer with SQL exposure.", specimenJobDescription()},
		{"rich", "Full stack engineer: JavaScript, React, Python, AWS, Docker, SQL, Git.",
			strings.Repeat("Senior team lead with years of experience in agile project management. ", 12)},
	}

	for _, input := range inputs {
		t.Run(input.name, func(t *testing.T) {
			for seed := uint64(0); seed < 25; seed++ {
				scorer := NewScorer(rand.NewPCG(seed, seed+1))
				report := scorer.Score(input.resumeText, input.jobDescription)

				if len(report.CategoryScores) != len(types.CategoryNames) {
					t.Fatalf("got %d categories, want %d", len(report.CategoryScores), len(types.CategoryNames))
				}

				var sum float64
				for _, name := range types.CategoryNames {
					score, ok := report.CategoryScores[name]
					if !ok {
						t.Fatalf("missing category %q", name)
					}
					floor := int(categoryFloors[name])
					if score < floor || score > 100 {
						t.Errorf("seed %d: category %q = %d, want within [%d, 100]", seed, name, score, floor)
					}
					sum += float64(score)
				}

				wantOverall := int(math.Round(sum / float64(len(types.CategoryNames))))
				if report.OverallScore != wantOverall {
					t.Errorf("seed %d: overall = %d, want rounded mean %d", seed, report.OverallScore, wantOverall)
				}
				if report.ReadinessStatus != readinessStatus(report.OverallScore) {
					t.Errorf("seed %d: readiness %q inconsistent with score %d", seed, report.ReadinessStatus, report.OverallScore)
				}

				hasPlan := report.ImprovementPlan != nil
				wantPlan := report.OverallScore < planThreshold
				if hasPlan != wantPlan {
					t.Errorf("seed %d: plan present = %v with score %d", seed, hasPlan, report.OverallScore)
				}
				if len(report.MissingSkills) > maxMissingSkills {
					t.Errorf("seed %d: %d missing skills, want at most %d", seed, len(report.MissingSkills), maxMissingSkills)
				}
			}
		})
	}
}

func TestScoreDeterminism(t *testing.T) {
	resume := "Backend engineer comfortable with Python and SQL."
	job := specimenJobDescription()

	first := NewScorer(rand.NewPCG(42, 43)).Score(resume, job)
	second := NewScorer(rand.NewPCG(42, 43)).Score(resume, job)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different reports:\n%+v\n%+v", first, second)
	}
}

func TestScoreFindings(t *testing.T) {
	t.Run("sparse inputs surface gaps and padded missing skills", func(t *testing.T) {
		report := NewScorer(rand.NewPCG(7, 8)).Score("", "")

		if len(report.Gaps) == 0 {
			t.Fatal("expected gaps for empty inputs")
		}
		if len(report.MissingSkills) != maxMissingSkills {
			t.Errorf("got %d missing skills, want %d", len(report.MissingSkills), maxMissingSkills)
		}
		if report.MissingSkills[0] != "JavaScript" {
			t.Errorf("first missing skill = %q, want JavaScript", report.MissingSkills[0])
		}
		if report.ImprovementPlan == nil {
			t.Fatal("expected an improvement plan for a low score")
		}
		if got := report.ImprovementPlan.PriorityImprovements[0].Skill; got != "JavaScript" {
			t.Errorf("priority skill = %q, want JavaScript", got)
		}
		if len(report.ImprovementPlan.QuickWins) == 0 {
			t.Error("expected quick wins in the plan")
		}
	})

	t.Run("strong technical match is reported as a strength", func(t *testing.T) {
		resume := "JavaScript, React and Python engineer using Git daily."
		report := NewScorer(rand.NewPCG(7, 8)).Score(resume, specimenJobDescription())

		if !slices.Contains(report.Strengths, "Strong technical skill alignment with job requirements") {
			t.Errorf("strengths = %v, want technical alignment strength", report.Strengths)
		}
		if !slices.Contains(report.Strengths, "Detailed job requirements enable precise matching") {
			t.Errorf("strengths = %v, want detailed-requirements strength for a 600 char description", report.Strengths)
		}
	})
}

func BenchmarkScore(b *testing.B) {
	scorer := NewScorer(rand.NewPCG(1, 2))
	resume := "Full stack engineer: JavaScript, React, Python, AWS."
	job := specimenJobDescription()

	for b.Loop() {
		scorer.Score(resume, job)
	}
}
