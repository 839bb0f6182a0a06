package plan

import "fmt"

// Optimization goals
const (
	OptimizeTime      = "time"
	OptimizeResources = "resources"
	OptimizeRisk      = "risk"
)

// ValidOptimizationGoal reports whether goal is one of time, resources
// or risk.
func ValidOptimizationGoal(goal string) bool {
	return goal == OptimizeTime || goal == OptimizeResources || goal == OptimizeRisk
}

// Recommendation is a single suggested change to a plan
type Recommendation struct {
	Type        string `json:"type"` // parallelization, task_split, buffer, priority_adjustment, sequencing
	TaskIDs     []int  `json:"task_ids"`
	Suggestion  string `json:"suggestion"`
	Impact      string `json:"impact"`
	Priority    string `json:"priority"`
	NewPriority string `json:"new_priority,omitempty"`
}

// Optimization is the full result of analyzing a plan for a goal
type Optimization struct {
	Goal                 string           `json:"optimization_goal"`
	Recommendations      []Recommendation `json:"recommendations"`
	EstimatedImprovement string           `json:"estimated_improvement"`
	Warnings             []string         `json:"warnings"`
	Summary              string           `json:"summary"`
}

// Sanitize clamps task ids into range and fills defaulted fields, so a
// sloppy LLM response never produces out-of-range references.
func (o *Optimization) Sanitize(taskCount int) {
	cleaned := make([]Recommendation, 0, len(o.Recommendations))
	for _, rec := range o.Recommendations {
		ids := make([]int, 0, len(rec.TaskIDs))
		for _, id := range rec.TaskIDs {
			if id >= 0 && id < taskCount {
				ids = append(ids, id)
			}
		}
		rec.TaskIDs = ids
		if rec.Type == "" {
			rec.Type = "sequencing"
		}
		if rec.Priority == "" {
			rec.Priority = "medium"
		}
		if rec.Suggestion == "" {
			rec.Suggestion = "Review the ordering of these tasks"
		}
		cleaned = append(cleaned, rec)
	}
	o.Recommendations = cleaned
	if o.Warnings == nil {
		o.Warnings = []string{}
	}
	if o.Summary == "" {
		o.Summary = fmt.Sprintf("%d recommendations for %s optimization", len(o.Recommendations), o.Goal)
	}
}

// FallbackOptimization produces heuristic recommendations when the LLM
// cannot: parallelize the first independent tasks, split oversized
// work, and buffer critical tasks.
func FallbackOptimization(goal string, tasks []Task) *Optimization {
	opt := &Optimization{
		Goal:                 goal,
		Recommendations:      []Recommendation{},
		EstimatedImprovement: "5-15% depending on adoption",
		Warnings:             []string{"Generated heuristically without LLM analysis"},
	}

	independent := []int{}
	for i := range tasks {
		if len(tasks[i].Dependencies) == 0 {
			independent = append(independent, tasks[i].ID)
		}
		if len(independent) == 2 {
			break
		}
	}
	if len(independent) == 2 {
		opt.Recommendations = append(opt.Recommendations, Recommendation{
			Type:       "parallelization",
			TaskIDs:    independent,
			Suggestion: "These tasks have no dependencies and can run in parallel",
			Impact:     "Reduces total elapsed time",
			Priority:   "high",
		})
	}

	for i := range tasks {
		if tasks[i].EstimatedHours > 8 {
			opt.Recommendations = append(opt.Recommendations, Recommendation{
				Type:       "task_split",
				TaskIDs:    []int{tasks[i].ID},
				Suggestion: fmt.Sprintf("Split %q into smaller pieces for steadier progress", tasks[i].Title),
				Impact:     "Improves tracking and reduces risk of slippage",
				Priority:   "medium",
			})
			break
		}
	}

	for i := range tasks {
		if tasks[i].Priority == PriorityHigh {
			opt.Recommendations = append(opt.Recommendations, Recommendation{
				Type:       "buffer",
				TaskIDs:    []int{tasks[i].ID},
				Suggestion: fmt.Sprintf("Add a time buffer after %q", tasks[i].Title),
				Impact:     "Protects downstream tasks from overruns",
				Priority:   "medium",
			})
			break
		}
	}

	opt.Summary = fmt.Sprintf("%d heuristic recommendations for %s optimization", len(opt.Recommendations), goal)
	return opt
}

// ApplyRecommendations mutates the plan per the accepted
// recommendations and returns how many were applied. Parallelization
// drops dependencies between the named tasks, priority_adjustment sets
// the new priority, sequencing is advisory only. The caller is expected
// to reschedule afterwards.
func ApplyRecommendations(p *Plan, recs []Recommendation) int {
	applied := 0
	for _, rec := range recs {
		switch rec.Type {
		case "parallelization":
			group := map[int]bool{}
			for _, id := range rec.TaskIDs {
				group[id] = true
			}
			changed := false
			for _, id := range rec.TaskIDs {
				t := p.Task(id)
				if t == nil {
					continue
				}
				deps := t.Dependencies[:0]
				for _, d := range t.Dependencies {
					if group[d] {
						changed = true
						continue
					}
					deps = append(deps, d)
				}
				t.Dependencies = deps
			}
			if changed {
				applied++
			}
		case "priority_adjustment":
			np := Priority(rec.NewPriority)
			if !np.Valid() {
				continue
			}
			changed := false
			for _, id := range rec.TaskIDs {
				if t := p.Task(id); t != nil && t.Priority != np {
					t.Priority = np
					changed = true
				}
			}
			if changed {
				applied++
			}
		case "sequencing":
			// Advisory only, nothing to mutate
		}
	}
	return applied
}
