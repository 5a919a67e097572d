package scoring

// Keyword sets driving the heuristic score. Matching is case-insensitive
// substring matching; technical keywords count when they appear in either
// the resume or the job description, the other two sets only when they
// appear in the job description.
var (
	technicalKeywords = []string{
		"javascript", "react", "python", "java", "aws", "docker", "sql", "git",
	}

	managerialKeywords = []string{
		"project management", "team lead", "scrum", "agile", "leadership",
	}

	experienceKeywords = []string{
		"years", "experience", "senior", "lead", "manager",
	}
)

// skillLabels maps lowercase technical keywords to their display form used
// in missing-skill lists and improvement plans.
var skillLabels = map[string]string{
	"javascript": "JavaScript",
	"react":      "React",
	"python":     "Python",
	"java":       "Java",
	"aws":        "AWS",
	"docker":     "Docker",
	"sql":        "SQL",
	"git":        "Git",
}
