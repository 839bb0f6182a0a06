package llm

import (
	"fmt"
	"strings"

	"taskflow/plan"
)

const planSystemPrompt = `You are a project planning assistant. Break the user's goal into concrete, ordered tasks.

Respond with ONLY a JSON object in exactly this format, no prose before or after:
{
  "tasks": [
    {
      "title": "Short task name",
      "description": "What needs to be done and why",
      "estimated_hours": 4.0,
      "priority": "high|medium|low",
      "complexity": "simple|moderate|complex|expert",
      "task_type": "research|design|implementation|testing|deployment|documentation",
      "dependencies": [0, 1]
    }
  ]
}

Rules:
- 5 to 12 tasks, ordered so dependencies always point at earlier tasks by index
- estimated_hours is a number, not a string
- dependencies is an array of task indices, empty when none`

func buildPlanPrompt(goal, timeframe, startDate string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n", goal)
	if timeframe != "" {
		fmt.Fprintf(&b, "Timeframe: %s\n", timeframe)
	}
	if startDate != "" {
		fmt.Fprintf(&b, "Start date: %s\n", startDate)
	}
	b.WriteString("\nCreate the task plan.")
	return b.String()
}

const subtaskSystemPrompt = `You are a project planning assistant. Break one task into 3-5 smaller subtasks.

Respond with ONLY a JSON object:
{
  "tasks": [
    {"title": "Subtask name", "description": "What to do", "estimated_hours": 2.0}
  ]
}

The subtask hours should sum to roughly the parent task's estimate.`

func buildSubtaskPrompt(t *plan.Task) string {
	return fmt.Sprintf("Task: %s\nDescription: %s\nEstimated hours: %.1f\n\nBreak this into subtasks.",
		t.Title, t.Description, t.EstimatedHours)
}

const optimizeSystemPrompt = `You are a project optimization analyst. Review the task plan and recommend improvements.

Respond with ONLY a JSON object:
{
  "recommendations": [
    {
      "type": "parallelization|task_split|buffer|priority_adjustment|sequencing",
      "task_ids": [0, 1],
      "suggestion": "What to change",
      "impact": "What it gains",
      "priority": "high|medium|low",
      "new_priority": "high|medium|low"
    }
  ],
  "estimated_improvement": "e.g. 10-20% less elapsed time",
  "warnings": [],
  "summary": "One sentence overview"
}

new_priority is only required for priority_adjustment recommendations.`

var optimizeGoalFocus = map[string]string{
	plan.OptimizeTime:      "Focus on reducing total elapsed time: find tasks that can run in parallel and sequences that can be shortened.",
	plan.OptimizeResources: "Focus on smoothing the workload: balance effort across the schedule and avoid idle gaps.",
	plan.OptimizeRisk:      "Focus on reducing risk: add buffers around critical work and surface fragile dependencies.",
}

func buildOptimizePrompt(p *plan.Plan, goal string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nGoal: %s\nTimeframe: %s\nTasks:\n", optimizeGoalFocus[goal], p.Goal, p.Timeframe)
	for i := range p.Tasks {
		t := &p.Tasks[i]
		fmt.Fprintf(&b, "- [%d] %s (%.1fh, %s priority, depends on %v)\n",
			t.ID, t.Title, t.EstimatedHours, t.Priority, t.Dependencies)
	}
	b.WriteString("\nAnalyze the plan and produce recommendations.")
	return b.String()
}
