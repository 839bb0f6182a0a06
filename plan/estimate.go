package plan

import (
	"math"
	"strings"
)

var complexityMultiplier = map[Complexity]float64{
	ComplexitySimple:   1.0,
	ComplexityModerate: 1.5,
	ComplexityComplex:  2.5,
	ComplexityExpert:   4.0,
}

var experienceMultiplier = map[string]float64{
	"beginner":     1.5,
	"intermediate": 1.0,
	"advanced":     0.8,
}

var typeOverheadHours = map[TaskType]float64{
	TypeResearch:       0.5,
	TypeDesign:         1.0,
	TypeImplementation: 2.0,
	TypeTesting:        0.5,
	TypeDeployment:     1.0,
	TypeDocumentation:  0.2,
}

var (
	familiarTech = []string{"javascript", "python", "react", "node", "html", "css", "sql", "git"}
	learningTech = []string{"rust", "go", "kubernetes", "docker", "microservices", "ai", "machine learning", "blockchain"}
)

// Practical estimates snap to values people actually put in plans.
var practicalIncrements = []float64{0.5, 1, 1.5, 2, 2.5, 3, 4, 6, 8, 12, 16, 24}

// EstimateInput carries the team factors that scale raw LLM estimates.
type EstimateInput struct {
	TeamSize   int
	Experience string
	TechStack  []string
}

// AdjustEstimates turns the LLM's raw hour guesses into defensible
// estimates: complexity and experience multipliers, per-type overhead,
// a dependency buffer, and team coordination cost. Each task records
// its base hours and the factors applied.
func AdjustEstimates(tasks []Task, in EstimateInput) []Task {
	teamSize := in.TeamSize
	if teamSize < 1 {
		teamSize = 1
	}
	expFactor, ok := experienceMultiplier[strings.ToLower(in.Experience)]
	if !ok {
		expFactor = 1.0
	}
	stackFactor := stackFamiliarityFactor(in.TechStack)
	coordination := 1.0 + 0.05*float64(teamSize-1)

	for i := range tasks {
		t := &tasks[i]
		base := t.EstimatedHours
		t.BaseHours = base

		cxFactor := complexityMultiplier[t.Complexity]
		if cxFactor == 0 {
			cxFactor = complexityMultiplier[ComplexityModerate]
		}

		hours := base * cxFactor * expFactor * stackFactor
		overhead := taskOverheadHours(t)
		hours += overhead

		depBuffer := 1.0
		if len(t.Dependencies) > 0 {
			depBuffer = 1.15
		}
		hours *= depBuffer
		hours *= coordination

		t.EstimatedHours = roundPractical(hours)
		t.OverheadFactors = map[string]float64{
			"complexity":          cxFactor,
			"experience":          expFactor,
			"tech_stack":          stackFactor,
			"type_overhead_hours": overhead,
			"dependency_buffer":   depBuffer,
			"team_coordination":   coordination,
		}
	}
	return tasks
}

// stackFamiliarityFactor: all-learning stacks cost extra, mixed stacks
// cost a little, purely familiar ones come in under estimate.
func stackFamiliarityFactor(stack []string) float64 {
	if len(stack) == 0 {
		return 1.0
	}
	familiar := 0
	learning := 0
	for _, tech := range stack {
		lt := strings.ToLower(tech)
		for _, f := range familiarTech {
			if strings.Contains(lt, f) {
				familiar++
				break
			}
		}
		for _, l := range learningTech {
			if strings.Contains(lt, l) {
				learning++
				break
			}
		}
	}
	switch {
	case learning > 0 && familiar == 0:
		return 1.3
	case learning > 0 && familiar > 0:
		return 1.1
	case familiar > 0:
		return 0.95
	default:
		return 1.0
	}
}

func taskOverheadHours(t *Task) float64 {
	overhead := typeOverheadHours[t.TaskType]
	text := strings.ToLower(t.Title + " " + t.Description)
	if containsAny(text, "api", "integration", "database") {
		overhead += 1.0
	}
	if containsAny(text, "deploy", "production", "release") {
		overhead += 1.5
	}
	if containsAny(text, "implement", "build", "create") {
		overhead += 0.5
	}
	return overhead
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// roundPractical snaps to a common increment when close, otherwise to
// the nearest half hour, never below half an hour.
func roundPractical(hours float64) float64 {
	for _, inc := range practicalIncrements {
		if math.Abs(hours-inc) <= 0.25 {
			return inc
		}
	}
	rounded := math.Round(hours*2) / 2
	if rounded < 0.5 {
		rounded = 0.5
	}
	return rounded
}
