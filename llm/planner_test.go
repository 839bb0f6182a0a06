package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/plan"
)

// stubClient returns a canned response without any network
type stubClient struct {
	response    string
	err         error
	calls       int
	lastPurpose Purpose
}

func (s *stubClient) Generate(ctx context.Context, req Request) (*Response, error) {
	s.calls++
	s.lastPurpose = req.Purpose
	if s.err != nil {
		return nil, s.err
	}
	return &Response{Content: s.response, Model: "stub", TokensUsed: 42}, nil
}

func (s *stubClient) GetModel() string                       { return "stub" }
func (s *stubClient) GetProvider() string                    { return "test" }
func (s *stubClient) IsAvailable(ctx context.Context) bool   { return true }

const planResponse = `{"tasks": [
	{"title": "Research competitors", "description": "Look at other offerings", "estimated_hours": 8, "priority": "high", "complexity": "simple", "task_type": "research", "dependencies": []},
	{"title": "Write summary report", "description": "Summarize the findings", "estimated_hours": 4, "priority": "medium", "complexity": "simple", "task_type": "documentation", "dependencies": [0]}
]}`

func TestGeneratePlan_FullPipeline(t *testing.T) {
	stub := &stubClient{response: planResponse}
	planner := NewPlanner(stub)

	var stages []int
	p, info, err := planner.GeneratePlan(context.Background(), PlanRequest{
		Goal:      "Research the market for a new product",
		Timeframe: "2 days",
		StartDate: "2026-01-05",
	}, func(percent int, message string) {
		stages = append(stages, percent)
	})

	require.NoError(t, err)
	require.NotNil(t, p)
	require.Len(t, p.Tasks, 2)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "2 days", p.Timeframe)
	assert.False(t, info.UsedFallback)
	assert.Equal(t, 42, info.TokensUsed)
	assert.Equal(t, PurposePlanning, stub.lastPurpose)

	for _, task := range p.Tasks {
		assert.NotEmpty(t, task.StartTime, "task %d should be scheduled", task.ID)
		assert.NotEmpty(t, task.Deadline, "task %d should have a deadline", task.ID)
		assert.Greater(t, task.EstimatedHours, 0.0)
		assert.NotZero(t, task.BaseHours, "estimation provenance should be recorded")
	}
	assert.Equal(t, []int{0}, p.Tasks[1].Dependencies)

	require.NotEmpty(t, stages)
	assert.Equal(t, 20, stages[0])
	for i := 1; i < len(stages); i++ {
		assert.GreaterOrEqual(t, stages[i], stages[i-1], "progress should not go backwards")
	}
}

func TestGeneratePlan_FallsBackWhenLLMFails(t *testing.T) {
	planner := NewPlanner(&stubClient{err: errors.New("connection refused")})

	p, info, err := planner.GeneratePlan(context.Background(), PlanRequest{
		Goal:      "Organize a community fundraiser",
		Timeframe: "1 week",
	}, nil)

	require.NoError(t, err)
	assert.True(t, info.UsedFallback)
	assert.NotEmpty(t, p.Tasks)
}

func TestGeneratePlan_FallsBackOnGarbage(t *testing.T) {
	planner := NewPlanner(&stubClient{response: "zz"})

	p, info, err := planner.GeneratePlan(context.Background(), PlanRequest{
		Goal:      "Organize a community fundraiser",
		Timeframe: "1 week",
	}, nil)

	require.NoError(t, err)
	assert.True(t, info.UsedFallback)
	assert.NotEmpty(t, p.Tasks)
}

func TestGeneratePlan_RejectsUnderfilledTimeframe(t *testing.T) {
	planner := NewPlanner(&stubClient{response: planResponse})

	_, _, err := planner.GeneratePlan(context.Background(), PlanRequest{
		Goal:      "Research the market for a new product",
		Timeframe: "2 weeks",
	}, nil)

	require.Error(t, err)
	var ce *plan.ComplianceError
	assert.True(t, errors.As(err, &ce), "a 13h plan must not be inflated into a 112h timeframe")
}

func TestGenerateSubtasks_ScalesToParent(t *testing.T) {
	stub := &stubClient{response: `{"tasks": [
		{"title": "Prepare", "estimated_hours": 1},
		{"title": "Do it", "estimated_hours": 1},
		{"title": "Check it", "estimated_hours": 2}
	]}`}
	planner := NewPlanner(stub)

	parent := &plan.Task{ID: 0, Title: "Big task", Description: "lots of work", EstimatedHours: 8}
	subtasks, err := planner.GenerateSubtasks(context.Background(), parent)

	require.NoError(t, err)
	require.Len(t, subtasks, 3)
	assert.Equal(t, PurposeSubtasks, stub.lastPurpose)

	var total float64
	for i, st := range subtasks {
		assert.Equal(t, i+1, st.ID)
		assert.Equal(t, plan.StatusTodo, st.Status)
		total += st.EstimatedHours
	}
	assert.InDelta(t, 8.0, total, 0.3, "subtask hours should sum to the parent estimate")
}

func TestGenerateSubtasks_Fallback(t *testing.T) {
	planner := NewPlanner(&stubClient{err: errors.New("model offline")})

	parent := &plan.Task{ID: 0, Title: "Big task", EstimatedHours: 10}
	subtasks, err := planner.GenerateSubtasks(context.Background(), parent)

	require.NoError(t, err)
	require.Len(t, subtasks, 3)
	assert.Equal(t, 2.0, subtasks[0].EstimatedHours)
	assert.Equal(t, 6.0, subtasks[1].EstimatedHours)
	assert.Equal(t, 2.0, subtasks[2].EstimatedHours)
}

func TestOptimize_SanitizesResponse(t *testing.T) {
	stub := &stubClient{response: `{"recommendations": [
		{"type": "parallelization", "task_ids": [0, 99], "suggestion": "Run together", "impact": "Faster", "priority": "high"}
	], "estimated_improvement": "20%", "summary": "Parallelize the start"}`}
	planner := NewPlanner(stub)

	p := &plan.Plan{Tasks: []plan.Task{{ID: 0}, {ID: 1}}}
	opt, err := planner.Optimize(context.Background(), p, plan.OptimizeTime)

	require.NoError(t, err)
	assert.Equal(t, plan.OptimizeTime, opt.Goal)
	assert.Equal(t, PurposeOptimization, stub.lastPurpose)
	require.Len(t, opt.Recommendations, 1)
	assert.Equal(t, []int{0}, opt.Recommendations[0].TaskIDs, "out-of-range ids should be clamped")
}

func TestOptimize_FallbackOnFailure(t *testing.T) {
	planner := NewPlanner(&stubClient{err: errors.New("model offline")})

	p := &plan.Plan{Tasks: []plan.Task{
		{ID: 0, EstimatedHours: 2},
		{ID: 1, EstimatedHours: 12},
	}}
	opt, err := planner.Optimize(context.Background(), p, plan.OptimizeRisk)

	require.NoError(t, err)
	assert.NotEmpty(t, opt.Recommendations)
	assert.NotEmpty(t, opt.Warnings)
}
