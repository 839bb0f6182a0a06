package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"taskflow/plan"
)

// Planner turns goals into plans using an LLM client, with layered
// fallbacks so a flaky local model still yields a usable result.
type Planner struct {
	client Client
}

func NewPlanner(client Client) *Planner {
	return &Planner{client: client}
}

// PlanRequest is everything needed to generate a plan
type PlanRequest struct {
	Goal       string   `json:"goal"`
	Timeframe  string   `json:"timeframe"`
	StartDate  string   `json:"start_date"`
	TeamSize   int      `json:"team_size,omitempty"`
	Experience string   `json:"experience_level,omitempty"`
	TechStack  []string `json:"tech_stack,omitempty"`
}

// GenerationInfo records what was sent and received for audit logging
type GenerationInfo struct {
	Prompt       string
	Response     string
	TokensUsed   int
	UsedFallback bool
}

// ProgressFunc reports generation progress as a percentage and a
// human-readable stage message. May be nil.
type ProgressFunc func(percent int, message string)

func report(progress ProgressFunc, percent int, message string) {
	if progress != nil {
		progress(percent, message)
	}
}

// GeneratePlan runs the full pipeline: LLM generation, parsing and
// repair, validation, estimate adjustment, long-task splitting,
// timeframe compliance and deadline scheduling. The returned error is a
// *plan.ComplianceError when the workload cannot fit the timeframe.
func (p *Planner) GeneratePlan(ctx context.Context, req PlanRequest, progress ProgressFunc) (*plan.Plan, *GenerationInfo, error) {
	report(progress, 20, "Analyzing goal")
	prompt := buildPlanPrompt(req.Goal, req.Timeframe, req.StartDate)
	info := &GenerationInfo{Prompt: prompt}

	report(progress, 30, "Generating tasks with the language model")
	resp, err := p.client.Generate(ctx, Request{
		Purpose: PurposePlanning,
		Messages: []Message{
			{Role: "system", Content: planSystemPrompt},
			{Role: "user", Content: prompt},
		},
	})

	var tasks []plan.Task
	if err != nil {
		log.Printf("[llm] generation failed, using fallback plan: %v", err)
		info.UsedFallback = true
		tasks = FallbackTasks(req.Goal)
	} else {
		info.Response = resp.Content
		info.TokensUsed = resp.TokensUsed
		report(progress, 60, "Parsing model response")
		tasks, err = ParseTasks(resp.Content)
		if err != nil {
			log.Printf("[llm] unparseable response, using fallback plan: %v", err)
			info.UsedFallback = true
			tasks = FallbackTasks(req.Goal)
		}
	}

	report(progress, 70, "Validating tasks")
	tasks = plan.ValidateAndFix(tasks)

	report(progress, 75, "Adjusting time estimates")
	tasks = plan.AdjustEstimates(tasks, plan.EstimateInput{
		TeamSize:   req.TeamSize,
		Experience: req.Experience,
		TechStack:  req.TechStack,
	})
	tasks = plan.SplitLongTasks(tasks)

	report(progress, 80, "Checking timeframe fit")
	tasks, err = plan.EnsureFits(tasks, req.Timeframe)
	if err != nil {
		return nil, info, err
	}

	report(progress, 90, "Scheduling deadlines")
	tasks = plan.Schedule(tasks, req.StartDate)

	return plan.New(req.Goal, req.Timeframe, req.StartDate, tasks), info, nil
}

// GenerateSubtasks breaks a task into 3-5 subtasks whose hours are
// rescaled to sum to the parent estimate. Falls back to a 20/60/20
// split when the model cannot produce one.
func (p *Planner) GenerateSubtasks(ctx context.Context, t *plan.Task) ([]plan.Subtask, error) {
	resp, err := p.client.Generate(ctx, Request{
		Purpose: PurposeSubtasks,
		Messages: []Message{
			{Role: "system", Content: subtaskSystemPrompt},
			{Role: "user", Content: buildSubtaskPrompt(t)},
		},
	})
	if err != nil {
		log.Printf("[llm] subtask generation failed, using fallback split: %v", err)
		return fallbackSubtasks(t), nil
	}

	parsed, err := ParseTasks(resp.Content)
	if err != nil || len(parsed) == 0 {
		return fallbackSubtasks(t), nil
	}
	if len(parsed) > 5 {
		parsed = parsed[:5]
	}

	var total float64
	for i := range parsed {
		if parsed[i].EstimatedHours <= 0 {
			parsed[i].EstimatedHours = 1
		}
		total += parsed[i].EstimatedHours
	}

	scale := 1.0
	if total > 0 && t.EstimatedHours > 0 {
		scale = t.EstimatedHours / total
	}
	subtasks := make([]plan.Subtask, 0, len(parsed))
	for i := range parsed {
		title := strings.TrimSpace(parsed[i].Title)
		if title == "" {
			title = fmt.Sprintf("Subtask %d", i+1)
		}
		subtasks = append(subtasks, plan.Subtask{
			ID:             i + 1,
			Title:          title,
			Description:    parsed[i].Description,
			EstimatedHours: math.Round(parsed[i].EstimatedHours*scale*10) / 10,
			Status:         plan.StatusTodo,
		})
	}
	return subtasks, nil
}

func fallbackSubtasks(t *plan.Task) []plan.Subtask {
	round := func(v float64) float64 { return math.Round(v*10) / 10 }
	return []plan.Subtask{
		{ID: 1, Title: "Plan and prepare", Description: "Gather what is needed and decide the approach", EstimatedHours: round(t.EstimatedHours * 0.2), Status: plan.StatusTodo},
		{ID: 2, Title: "Implement", Description: "Do the core of the work", EstimatedHours: round(t.EstimatedHours * 0.6), Status: plan.StatusTodo},
		{ID: 3, Title: "Test and finalize", Description: "Verify the result and tie up loose ends", EstimatedHours: round(t.EstimatedHours * 0.2), Status: plan.StatusTodo},
	}
}

// Optimize asks the model for recommendations toward a goal (time,
// resources or risk), sanitizes the result, and falls back to
// heuristics when the model fails.
func (p *Planner) Optimize(ctx context.Context, pl *plan.Plan, goal string) (*plan.Optimization, error) {
	resp, err := p.client.Generate(ctx, Request{
		Purpose: PurposeOptimization,
		Messages: []Message{
			{Role: "system", Content: optimizeSystemPrompt},
			{Role: "user", Content: buildOptimizePrompt(pl, goal)},
		},
	})
	if err != nil {
		log.Printf("[llm] optimization failed, using heuristics: %v", err)
		return plan.FallbackOptimization(goal, pl.Tasks), nil
	}

	opt, ok := decodeOptimization(resp.Content)
	if !ok {
		return plan.FallbackOptimization(goal, pl.Tasks), nil
	}
	opt.Goal = goal
	opt.Sanitize(len(pl.Tasks))
	if len(opt.Recommendations) == 0 {
		return plan.FallbackOptimization(goal, pl.Tasks), nil
	}
	return opt, nil
}

func decodeOptimization(response string) (*plan.Optimization, bool) {
	type rawRec struct {
		Type        string `json:"type"`
		TaskIDs     []any  `json:"task_ids"`
		Suggestion  string `json:"suggestion"`
		Impact      string `json:"impact"`
		Priority    string `json:"priority"`
		NewPriority string `json:"new_priority"`
	}
	type rawOpt struct {
		Recommendations      []rawRec `json:"recommendations"`
		EstimatedImprovement string   `json:"estimated_improvement"`
		Warnings             []string `json:"warnings"`
		Summary              string   `json:"summary"`
	}

	for _, candidate := range jsonCandidates(response) {
		for _, attempt := range []string{candidate, repairJSON(candidate)} {
			var raw rawOpt
			if err := json.Unmarshal([]byte(attempt), &raw); err != nil {
				continue
			}
			opt := &plan.Optimization{
				EstimatedImprovement: raw.EstimatedImprovement,
				Warnings:             raw.Warnings,
				Summary:              raw.Summary,
			}
			for _, r := range raw.Recommendations {
				opt.Recommendations = append(opt.Recommendations, plan.Recommendation{
					Type:        r.Type,
					TaskIDs:     toInts(r.TaskIDs),
					Suggestion:  r.Suggestion,
					Impact:      r.Impact,
					Priority:    r.Priority,
					NewPriority: r.NewPriority,
				})
			}
			return opt, true
		}
	}
	return nil, false
}

// Client exposes the underlying LLM client for health checks
func (p *Planner) Client() Client {
	return p.client
}
