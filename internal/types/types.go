package types

// Readiness status values reported alongside the overall score.
const (
	ReadinessATSReady   = "ATS_READY"
	ReadinessNeedsMinor = "NEEDS_MINOR_IMPROVEMENTS"
	ReadinessNeedsMajor = "NEEDS_MAJOR_IMPROVEMENTS"
	ReadinessError      = "ERROR"
)

// Scoring category names used as keys in ScoreReport.CategoryScores.
const (
	CategoryKeywordMatching     = "keyword_matching"
	CategorySkillsAlignment     = "skills_alignment"
	CategoryExperienceRelevance = "experience_relevance"
	CategoryFormatOptimization  = "format_optimization"
	CategoryContentQuality      = "content_quality"
)

// CategoryNames lists the scoring categories in report order.
var CategoryNames = []string{
	CategoryKeywordMatching,
	CategorySkillsAlignment,
	CategoryExperienceRelevance,
	CategoryFormatOptimization,
	CategoryContentQuality,
}

// ScoreResumeInput represents the input for scoring a resume against a job description
type ScoreResumeInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// DetailedAnalysis holds free-text commentary on specific aspects of the resume
type DetailedAnalysis struct {
	KeywordDensity   string `json:"keywordDensity"`
	Structure        string `json:"structure"`
	ATSCompatibility string `json:"atsCompatibility"`
}

// PriorityImprovement represents a high-impact skill or area to develop
type PriorityImprovement struct {
	Category     string   `json:"category"`
	Skill        string   `json:"skill"`
	CurrentLevel string   `json:"currentLevel"`
	TargetLevel  string   `json:"targetLevel"`
	TimeEstimate string   `json:"timeEstimate"`
	LearningPath []string `json:"learningPath"`
	Resources    []string `json:"resources"`
}

// QuickWin represents a low-effort change with immediate impact
type QuickWin struct {
	Action string `json:"action"`
	Impact string `json:"impact"` // "High", "Medium", or "Low"
}

// ImprovementPlan is included in a report when the overall score is below 90
type ImprovementPlan struct {
	PriorityImprovements []PriorityImprovement `json:"priorityImprovements"`
	QuickWins            []QuickWin            `json:"quickWins"`
	Timeline             string                `json:"timeline"`
}

// ScoreReport represents the full result of analyzing a resume against a job description
type ScoreReport struct {
	OverallScore     int              `json:"overallScore"` // 0-100
	ReadinessStatus  string           `json:"readinessStatus"`
	CategoryScores   map[string]int   `json:"categoryScores"`
	Strengths        []string         `json:"strengths"`
	Gaps             []string         `json:"gaps"`
	MissingSkills    []string         `json:"missingSkills"` // at most 5 entries
	DetailedAnalysis DetailedAnalysis `json:"detailedAnalysis"`
	ImprovementPlan  *ImprovementPlan `json:"improvementPlan,omitempty"`
}
