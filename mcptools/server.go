package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"taskflow/plan"
	"taskflow/store"
)

// Server exposes stored plans as MCP tools so agent clients can read
// and advance plans over stdio.
type Server struct {
	store *store.Store
	mcp   *server.MCPServer
}

func NewServer(st *store.Store) *Server {
	s := &Server{store: st}

	m := server.NewMCPServer("taskflow", "1.0.0")

	m.AddTool(mcp.NewTool("list_plans",
		mcp.WithDescription("List the most recent task plans"),
		mcp.WithNumber("limit", mcp.Description("Maximum number of plans to return (default 20)")),
	), s.handleListPlans)

	m.AddTool(mcp.NewTool("get_plan",
		mcp.WithDescription("Get a full task plan by id"),
		mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan identifier")),
	), s.handleGetPlan)

	m.AddTool(mcp.NewTool("update_task_status",
		mcp.WithDescription("Set the status of a task within a plan"),
		mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan identifier")),
		mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task id within the plan")),
		mcp.WithString("status", mcp.Required(), mcp.Description("todo, in_progress, completed or blocked")),
	), s.handleUpdateTaskStatus)

	m.AddTool(mcp.NewTool("next_tasks",
		mcp.WithDescription("Suggest which tasks in a plan are ready to start"),
		mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan identifier")),
	), s.handleNextTasks)

	s.mcp = m
	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleListPlans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 20
	if v, ok := req.GetArguments()["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}
	plans, err := s.store.ListPlans(limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type summary struct {
		ID         string `json:"id"`
		Goal       string `json:"goal"`
		Timeframe  string `json:"timeframe"`
		TasksTotal int    `json:"tasks_total"`
		TasksDone  int    `json:"tasks_done"`
	}
	out := make([]summary, 0, len(plans))
	for _, p := range plans {
		out = append(out, summary{
			ID:         p.ID,
			Goal:       p.Goal,
			Timeframe:  p.Timeframe,
			TasksTotal: len(p.Tasks),
			TasksDone:  p.CompletedTasks(),
		})
	}
	return jsonResult(out)
}

func (s *Server) handleGetPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, ok := req.GetArguments()["plan_id"].(string)
	if !ok || planID == "" {
		return mcp.NewToolResultError("plan_id is required"), nil
	}
	p, err := s.store.GetPlan(planID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func (s *Server) handleUpdateTaskStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	planID, _ := args["plan_id"].(string)
	taskIDf, ok := args["task_id"].(float64)
	if planID == "" || !ok {
		return mcp.NewToolResultError("plan_id and task_id are required"), nil
	}
	status := plan.Status(fmt.Sprintf("%v", args["status"]))
	if !status.Valid() {
		return mcp.NewToolResultError("status must be todo, in_progress, completed or blocked"), nil
	}

	p, err := s.store.GetPlan(planID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := p.SetTaskStatus(int(taskIDf), status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.UpdatePlan(p); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p.Task(int(taskIDf)))
}

func (s *Server) handleNextTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, ok := req.GetArguments()["plan_id"].(string)
	if !ok || planID == "" {
		return mcp.NewToolResultError("plan_id is required"), nil
	}
	p, err := s.store.GetPlan(planID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(plan.NextTasks(p))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
