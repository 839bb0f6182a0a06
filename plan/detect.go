package plan

import "strings"

var typeKeywords = []struct {
	taskType TaskType
	words    []string
}{
	{TypeResearch, []string{"research", "analyze", "study", "investigate", "explore", "survey"}},
	{TypeDesign, []string{"design", "architect", "plan", "wireframe", "mockup", "prototype"}},
	{TypeTesting, []string{"test", "qa", "quality", "verify", "validate", "debug"}},
	{TypeDeployment, []string{"deploy", "release", "launch", "production", "hosting", "server setup"}},
	{TypeDocumentation, []string{"document", "readme", "guide", "manual", "wiki"}},
}

var (
	expertKeywords = []string{"ai", "machine learning", "blockchain", "distributed", "microservices", "scalable", "enterprise", "security audit"}
	complexKeywords = []string{"api", "integration", "database", "authentication", "payment", "third-party", "framework", "architecture", "system"}
	simpleKeywords  = []string{"setup", "configure", "install", "basic", "simple", "update", "fix", "bug", "small"}
)

// DetectTaskType classifies a task from its title and description.
// Falls back to implementation when nothing matches.
func DetectTaskType(title, description string) TaskType {
	text := strings.ToLower(title + " " + description)
	for _, group := range typeKeywords {
		for _, w := range group.words {
			if strings.Contains(text, w) {
				return group.taskType
			}
		}
	}
	return TypeImplementation
}

// DetectComplexity classifies difficulty from title and description.
// Falls back to moderate when nothing matches.
func DetectComplexity(title, description string) Complexity {
	text := strings.ToLower(title + " " + description)
	for _, w := range expertKeywords {
		if strings.Contains(text, w) {
			return ComplexityExpert
		}
	}
	for _, w := range complexKeywords {
		if strings.Contains(text, w) {
			return ComplexityComplex
		}
	}
	for _, w := range simpleKeywords {
		if strings.Contains(text, w) {
			return ComplexitySimple
		}
	}
	return ComplexityModerate
}
