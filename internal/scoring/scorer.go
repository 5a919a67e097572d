package scoring

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"atscore/internal/types"
)

const (
	baseStart         = 65.0
	baseCap           = 95.0
	perturbationRange = 7.5
	planThreshold     = 90
	maxMissingSkills  = 5
)

// categoryFloors defines the minimum score each category can receive.
var categoryFloors = map[string]float64{
	types.CategoryKeywordMatching:     30,
	types.CategorySkillsAlignment:     40,
	types.CategoryExperienceRelevance: 35,
	types.CategoryFormatOptimization:  50,
	types.CategoryContentQuality:      45,
}

// Scorer produces heuristic ATS compatibility reports. It performs no I/O
// and never fails; all variation comes from the injected random source.
type Scorer struct {
	rng *rand.Rand
}

// NewScorer creates a scorer backed by the given random source. A nil
// source seeds the scorer from system entropy; pass a fixed-seed source
// for reproducible reports.
func NewScorer(src rand.Source) *Scorer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Scorer{rng: rand.New(src)}
}

// matchResult holds the keyword matches between a resume and a job description.
type matchResult struct {
	technical  []string
	managerial []string
	experience []string
	missing    []string // technical keywords found in neither document
}

func matchKeywords(resumeText, jobDescription string) matchResult {
	resume := strings.ToLower(resumeText)
	job := strings.ToLower(jobDescription)

	var m matchResult
	for _, kw := range technicalKeywords {
		if strings.Contains(job, kw) || strings.Contains(resume, kw) {
			m.technical = append(m.technical, kw)
		} else {
			m.missing = append(m.missing, kw)
		}
	}
	for _, kw := range managerialKeywords {
		if strings.Contains(job, kw) {
			m.managerial = append(m.managerial, kw)
		}
	}
	for _, kw := range experienceKeywords {
		if strings.Contains(job, kw) {
			m.experience = append(m.experience, kw)
		}
	}
	return m
}

// baseScore computes the shared base all categories perturb from:
// 65 plus 3 per technical match, 2 per managerial match, 2 per experience
// match and 1 per 100 characters of job description, capped at 95.
func baseScore(m matchResult, jobDescriptionLen int) float64 {
	score := baseStart +
		3*float64(len(m.technical)) +
		2*float64(len(m.managerial)) +
		2*float64(len(m.experience)) +
		float64(jobDescriptionLen/100)
	return math.Min(score, baseCap)
}

func readinessStatus(overall int) string {
	switch {
	case overall >= 90:
		return types.ReadinessATSReady
	case overall >= 70:
		return types.ReadinessNeedsMinor
	default:
		return types.ReadinessNeedsMajor
	}
}

// Score analyzes the resume text against the job description and returns a
// complete report. The same inputs with the same seed produce identical
// reports.
func (s *Scorer) Score(resumeText, jobDescription string) types.ScoreReport {
	m := matchKeywords(resumeText, jobDescription)
	base := baseScore(m, len(jobDescription))

	categories := make(map[string]int, len(types.CategoryNames))
	var sum float64
	for _, name := range types.CategoryNames {
		perturbed := base + (s.rng.Float64()*2-1)*perturbationRange
		clamped := math.Max(categoryFloors[name], math.Min(perturbed, 100))
		rounded := int(math.Round(clamped))
		categories[name] = rounded
		sum += float64(rounded)
	}
	overall := int(math.Round(sum / float64(len(types.CategoryNames))))

	missing := missingSkillLabels(m)
	report := types.ScoreReport{
		OverallScore:     overall,
		ReadinessStatus:  readinessStatus(overall),
		CategoryScores:   categories,
		MissingSkills:    missing,
		DetailedAnalysis: buildDetailedAnalysis(m, overall),
	}
	report.Strengths, report.Gaps = buildFindings(m, overall, len(jobDescription))

	if overall < planThreshold {
		report.ImprovementPlan = buildImprovementPlan(missing)
	}
	return report
}

// missingSkillLabels seeds the missing-skill list with the first three
// unmatched technical keywords when technical coverage is weak, pads with
// generic management skills when the job description shows no managerial
// signal, and truncates at the report limit.
func missingSkillLabels(m matchResult) []string {
	labels := make([]string, 0, maxMissingSkills)
	if len(m.technical) <= 2 {
		seed := m.missing
		if len(seed) > 3 {
			seed = seed[:3]
		}
		for _, kw := range seed {
			labels = append(labels, skillLabels[kw])
		}
	}
	if len(m.managerial) == 0 {
		labels = append(labels, "Project Management", "Team Leadership")
	}
	if len(labels) > maxMissingSkills {
		labels = labels[:maxMissingSkills]
	}
	return labels
}

func buildFindings(m matchResult, overall, jobDescriptionLen int) (strengths, gaps []string) {
	if len(m.technical) > 2 {
		strengths = append(strengths, "Strong technical skill alignment with job requirements")
	} else {
		gaps = append(gaps, "Limited technical skill match with job requirements")
		if len(m.missing) > 0 {
			shown := m.missing
			if len(shown) > 3 {
				shown = shown[:3]
			}
			labels := make([]string, len(shown))
			for i, kw := range shown {
				labels[i] = skillLabels[kw]
			}
			gaps = append(gaps, fmt.Sprintf("Missing key technical skills: %s", strings.Join(labels, ", ")))
		}
	}

	if len(m.managerial) > 0 {
		strengths = append(strengths, "Leadership and management experience evident")
	} else {
		gaps = append(gaps, "Leadership and project management keywords not found")
	}

	if jobDescriptionLen > 500 {
		strengths = append(strengths, "Detailed job requirements enable precise matching")
	}

	if overall >= 80 {
		strengths = append(strengths,
			"Clean formatting compatible with ATS parsing",
			"Well-structured content with relevant detail")
	} else {
		gaps = append(gaps,
			"Resume formatting could be optimized for ATS parsing",
			"Content could better highlight measurable achievements")
	}
	return strengths, gaps
}

func buildDetailedAnalysis(m matchResult, overall int) types.DetailedAnalysis {
	analysis := types.DetailedAnalysis{
		KeywordDensity: fmt.Sprintf("Matched %d of %d technical keywords across the resume and job description.",
			len(m.technical), len(technicalKeywords)),
	}

	if overall >= 80 {
		analysis.Structure = "Sections are clearly delineated and follow a conventional order that parsers handle well."
	} else {
		analysis.Structure = "Section organization could be tightened; standard headings improve parser extraction rates."
	}

	switch {
	case overall >= 90:
		analysis.ATSCompatibility = "The resume should pass automated screening for this role without changes."
	case overall >= 70:
		analysis.ATSCompatibility = "The resume is likely to pass automated screening after minor keyword adjustments."
	default:
		analysis.ATSCompatibility = "The resume risks being filtered out by automated screening in its current form."
	}
	return analysis
}

func buildImprovementPlan(missing []string) *types.ImprovementPlan {
	skill := "Technical Skills"
	if len(missing) > 0 {
		skill = missing[0]
	}

	plan := &types.ImprovementPlan{
		PriorityImprovements: []types.PriorityImprovement{
			{
				Category:     "Technical Skills",
				Skill:        skill,
				CurrentLevel: "Beginner",
				TargetLevel:  "Intermediate",
				TimeEstimate: "2-3 months",
				LearningPath: []string{
					fmt.Sprintf("Complete a structured %s fundamentals course", skill),
					fmt.Sprintf("Build a small project that exercises %s end to end", skill),
					fmt.Sprintf("Add %s to the skills section with the project as evidence", skill),
				},
				Resources: []string{
					"Official documentation and getting-started guides",
					"Hands-on practice platforms with guided exercises",
				},
			},
		},
		Timeline: "3-6 months for significant improvement",
	}

	if len(missing) > 0 {
		shown := missing
		if len(shown) > 3 {
			shown = shown[:3]
		}
		plan.QuickWins = append(plan.QuickWins, types.QuickWin{
			Action: fmt.Sprintf("Add these keywords to your skills section: %s", strings.Join(shown, ", ")),
			Impact: "High",
		})
	}
	plan.QuickWins = append(plan.QuickWins, types.QuickWin{
		Action: "Use standard section headings (Summary, Experience, Education, Skills)",
		Impact: "Medium",
	})
	return plan
}
