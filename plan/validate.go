package plan

import (
	"fmt"
	"math"
	"strings"
)

const (
	defaultTaskHours = 4.0
	maxTaskHours     = 168.0
)

// ValidateAndFix normalizes a raw task list from the LLM in place:
// fills missing fields with defaults, clamps hours, filters dependencies
// to earlier tasks only, and rebalances the priority distribution.
func ValidateAndFix(tasks []Task) []Task {
	for i := range tasks {
		t := &tasks[i]
		t.ID = i

		if strings.TrimSpace(t.Title) == "" {
			t.Title = fmt.Sprintf("Task %d", i+1)
		}
		if strings.TrimSpace(t.Description) == "" {
			t.Description = "Complete this task as part of the project plan"
		}

		if t.EstimatedHours <= 0 || math.IsNaN(t.EstimatedHours) {
			t.EstimatedHours = defaultTaskHours
		}
		if t.EstimatedHours > maxTaskHours {
			t.EstimatedHours = maxTaskHours
		}
		t.EstimatedHours = round1(t.EstimatedHours)

		if !t.Priority.Valid() {
			t.Priority = PriorityMedium
		}
		if !t.Complexity.Valid() {
			t.Complexity = DetectComplexity(t.Title, t.Description)
		}
		if !t.TaskType.Valid() {
			t.TaskType = DetectTaskType(t.Title, t.Description)
		}
		if !t.Status.Valid() {
			t.Status = StatusTodo
		}

		// Dependencies may only point at earlier tasks
		deps := make([]int, 0, len(t.Dependencies))
		for _, d := range t.Dependencies {
			if d >= 0 && d < i {
				deps = append(deps, d)
			}
		}
		t.Dependencies = deps
	}

	rebalancePriorities(tasks)
	return tasks
}

// rebalancePriorities keeps the priority spread realistic: too many high
// priority tasks get demoted, and wrap-up work gets marked low when
// nothing is.
func rebalancePriorities(tasks []Task) {
	if len(tasks) == 0 {
		return
	}

	high := 0
	low := 0
	for i := range tasks {
		switch tasks[i].Priority {
		case PriorityHigh:
			high++
		case PriorityLow:
			low++
		}
	}

	if float64(high)/float64(len(tasks)) > 0.4 {
		kept := 0
		for i := range tasks {
			if tasks[i].Priority != PriorityHigh {
				continue
			}
			kept++
			if kept > 3 {
				tasks[i].Priority = PriorityMedium
			}
		}
	}

	if float64(low)/float64(len(tasks)) < 0.1 {
		demoted := 0
		for i := len(tasks) - 1; i >= 0 && demoted < 2; i-- {
			if tasks[i].Priority != PriorityMedium {
				continue
			}
			text := strings.ToLower(tasks[i].Title + " " + tasks[i].Description)
			for _, w := range []string{"test", "document", "polish", "optimize", "cleanup"} {
				if strings.Contains(text, w) {
					tasks[i].Priority = PriorityLow
					demoted++
					break
				}
			}
		}
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
