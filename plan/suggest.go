package plan

import "sort"

const maxSuggestions = 5

// Suggestion points at a task that is ready to start now
type Suggestion struct {
	TaskID         int      `json:"task_id"`
	Title          string   `json:"title"`
	Priority       Priority `json:"priority"`
	EstimatedHours float64  `json:"estimated_hours"`
	Reason         string   `json:"reason"`
}

// NextTasks returns up to five actionable tasks: not yet started, with
// every dependency completed. Ordered by priority, then by smallest
// estimate first.
func NextTasks(p *Plan) []Suggestion {
	suggestions := []Suggestion{}
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.Status == StatusCompleted || t.Status == StatusInProgress {
			continue
		}
		if !dependenciesDone(p, t) {
			continue
		}
		reason := "Ready to start"
		if len(t.Dependencies) > 0 {
			reason = "All dependencies completed"
		}
		suggestions = append(suggestions, Suggestion{
			TaskID:         t.ID,
			Title:          t.Title,
			Priority:       t.Priority,
			EstimatedHours: t.EstimatedHours,
			Reason:         reason,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Priority.Rank() != suggestions[j].Priority.Rank() {
			return suggestions[i].Priority.Rank() < suggestions[j].Priority.Rank()
		}
		return suggestions[i].EstimatedHours < suggestions[j].EstimatedHours
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

func dependenciesDone(p *Plan, t *Task) bool {
	for _, dep := range t.Dependencies {
		dt := p.Task(dep)
		if dt == nil || dt.Status != StatusCompleted {
			return false
		}
	}
	return true
}
