package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskflow/analytics"
	"taskflow/cache"
	"taskflow/calendar"
	"taskflow/llm"
	"taskflow/plan"
)

const serviceVersion = "1.0.0"

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "TaskFlow",
		"status":  "online",
		"version": serviceVersion,
	})
}

// --- plan generation ---

func validatePlanRequest(req *llm.PlanRequest) error {
	if len(req.Goal) < 10 || len(req.Goal) > 500 {
		return fmt.Errorf("goal must be between 10 and 500 characters")
	}
	if _, err := plan.ParseTimeframeDays(req.Timeframe); err != nil {
		return fmt.Errorf("timeframe must include a unit like days, weeks, months or years")
	}
	if req.StartDate != "" {
		d, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return fmt.Errorf("start_date must be YYYY-MM-DD")
		}
		now := time.Now()
		if d.Before(now.AddDate(-1, 0, 0)) || d.After(now.AddDate(5, 0, 0)) {
			return fmt.Errorf("start_date must be within one year past and five years ahead")
		}
	}
	return nil
}

func (s *Server) handleCreatePlan(c *gin.Context) {
	var req llm.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := validatePlanRequest(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if s.limiter != nil && !s.limiter.allow(clientKey(c)) {
		apiError(c, http.StatusTooManyRequests, codeRateLimited,
			fmt.Sprintf("rate limit of %d requests per minute exceeded", s.cfg.RateLimit.RequestsPerMinute))
		return
	}

	sessionID := c.Query("session_id")
	useCache := s.cache != nil && c.DefaultQuery("use_cache", "true") != "false"
	cacheKey := cache.Key(req.Goal, req.Timeframe, req.StartDate)

	if useCache {
		if p, ok := s.cache.Get(cacheKey); ok {
			s.metrics.RecordCacheHit()
			if err := s.store.SavePlan(p); err != nil {
				writeError(c, err)
				return
			}
			s.hub.SendComplete(sessionID, p.ID, "")
			c.JSON(http.StatusCreated, p)
			return
		}
		s.metrics.RecordCacheMiss()
	}

	s.hub.SendProgress(sessionID, 10, "Starting plan generation")
	p, info, err := s.planner.GeneratePlan(c.Request.Context(), req, func(percent int, message string) {
		s.hub.SendProgress(sessionID, percent, message)
	})
	if info != nil && info.TokensUsed > 0 {
		s.metrics.RecordLLMCall(info.TokensUsed)
	}
	if err != nil {
		s.hub.SendComplete(sessionID, "", err.Error())
		writeError(c, err)
		return
	}

	if err := s.store.SavePlan(p); err != nil {
		s.hub.SendComplete(sessionID, "", err.Error())
		writeError(c, err)
		return
	}
	if info != nil && !info.UsedFallback {
		if err := s.store.LogGeneration(p.ID, info.Prompt, info.Response, info.TokensUsed); err != nil {
			log.Printf("[server] failed to record generation log: %v", err)
		}
	}
	if useCache {
		s.cache.Put(cacheKey, p)
	}

	s.hub.SendProgress(sessionID, 100, "Plan ready")
	s.hub.SendComplete(sessionID, p.ID, "")
	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleRegeneratePlan(c *gin.Context) {
	existing, err := s.store.GetPlan(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req llm.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Goal == "" {
		req.Goal = existing.Goal
	}
	if req.Timeframe == "" {
		req.Timeframe = existing.Timeframe
	}
	if req.StartDate == "" {
		req.StartDate = existing.StartDate
	}
	if err := validatePlanRequest(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, info, err := s.planner.GeneratePlan(c.Request.Context(), req, nil)
	if info != nil && info.TokensUsed > 0 {
		s.metrics.RecordLLMCall(info.TokensUsed)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	// Regeneration keeps the plan's identity and creation time
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	if err := s.store.UpdatePlan(p); err != nil {
		writeError(c, err)
		return
	}
	if info != nil && !info.UsedFallback {
		if err := s.store.LogGeneration(p.ID, info.Prompt, info.Response, info.TokensUsed); err != nil {
			log.Printf("[server] failed to record generation log: %v", err)
		}
	}
	c.JSON(http.StatusOK, p)
}

// --- plan CRUD ---

func (s *Server) handleGetPlan(c *gin.Context) {
	p, err := s.store.GetPlan(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleListPlans(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			badRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	plans, err := s.store.ListPlans(limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans, "count": len(plans)})
}

func (s *Server) handleDeletePlan(c *gin.Context) {
	p, err := s.store.GetPlan(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.DeletePlan(p.ID); err != nil {
		writeError(c, err)
		return
	}
	if s.cache != nil {
		s.cache.Invalidate(cache.Key(p.Goal, p.Timeframe, p.StartDate))
	}
	c.Status(http.StatusNoContent)
}

// --- tasks ---

type taskUpdate struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	EstimatedHours *float64 `json:"estimated_hours"`
	Priority       *string  `json:"priority"`
	Dependencies   *[]int   `json:"dependencies"`
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	p, t, ok := s.planTask(c)
	if !ok {
		return
	}

	var upd taskUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	reschedule := false
	if upd.Title != nil {
		if len(*upd.Title) < 3 || len(*upd.Title) > 200 {
			badRequest(c, "title must be between 3 and 200 characters")
			return
		}
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		if len(*upd.Description) < 10 || len(*upd.Description) > 1000 {
			badRequest(c, "description must be between 10 and 1000 characters")
			return
		}
		t.Description = *upd.Description
	}
	if upd.EstimatedHours != nil {
		if *upd.EstimatedHours <= 0 || *upd.EstimatedHours > 168 {
			badRequest(c, "estimated_hours must be between 0 and 168")
			return
		}
		t.EstimatedHours = *upd.EstimatedHours
		reschedule = true
	}
	if upd.Priority != nil {
		pr := plan.Priority(*upd.Priority)
		if !pr.Valid() {
			badRequest(c, "priority must be high, medium or low")
			return
		}
		t.Priority = pr
	}
	if upd.Dependencies != nil {
		for _, d := range *upd.Dependencies {
			if d < 0 || d >= len(p.Tasks) || d == t.ID {
				badRequest(c, fmt.Sprintf("invalid dependency %d", d))
				return
			}
		}
		t.Dependencies = *upd.Dependencies
		reschedule = true
	}

	if reschedule {
		p.Tasks = plan.Schedule(p.Tasks, p.StartDate)
	}
	if err := s.store.UpdatePlan(p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	p, t, ok := s.planTask(c)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	status := plan.Status(body.Status)
	if !status.Valid() {
		badRequest(c, "status must be todo, in_progress, completed or blocked")
		return
	}

	if err := p.SetTaskStatus(t.ID, status); err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.UpdatePlan(p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan_id": p.ID, "task": p.Task(t.ID)})
}

func (s *Server) handleGenerateSubtasks(c *gin.Context) {
	p, t, ok := s.planTask(c)
	if !ok {
		return
	}

	subtasks, err := s.planner.GenerateSubtasks(c.Request.Context(), t)
	if err != nil {
		apiError(c, http.StatusBadGateway, codeLLMError, err.Error())
		return
	}
	t.Subtasks = subtasks
	if err := s.store.UpdatePlan(p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task_id": t.ID, "subtasks": subtasks})
}

// --- comments ---

func (s *Server) handleAddComment(c *gin.Context) {
	p, t, ok := s.planTask(c)
	if !ok {
		return
	}

	var body struct {
		Text   string `json:"text"`
		Author string `json:"author"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(body.Text) < 1 || len(body.Text) > 500 {
		badRequest(c, "text must be between 1 and 500 characters")
		return
	}
	if len(body.Author) > 100 {
		badRequest(c, "author must be at most 100 characters")
		return
	}

	comment, err := p.AddComment(t.ID, body.Text, body.Author)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.UpdatePlan(p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) handleListComments(c *gin.Context) {
	_, t, ok := s.planTask(c)
	if !ok {
		return
	}
	comments := t.Comments
	if comments == nil {
		comments = []plan.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"task_id": t.ID, "comments": comments})
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	p, t, ok := s.planTask(c)
	if !ok {
		return
	}
	commentID, err := strconv.Atoi(c.Param("cid"))
	if err != nil {
		badRequest(c, "comment id must be an integer")
		return
	}
	if err := p.DeleteComment(t.ID, commentID); err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.UpdatePlan(p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": t.ID, "comments": p.Task(t.ID).Comments})
}

// --- optimization ---

func (s *Server) handleOptimize(c *gin.Context) {
	p, err := s.store.GetPlan(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	goal := c.DefaultQuery("optimization_type", plan.OptimizeTime)
	if !plan.ValidOptimizationGoal(goal) {
		badRequest(c, "optimization_type must be time, resources or risk")
		return
	}

	opt, err := s.planner.Optimize(c.Request.Context(), p, goal)
	if err != nil {
		apiError(c, http.StatusBadGateway, codeLLMError, err.Error())
		return
	}
	c.JSON(http.StatusOK, opt)
}

func (s *Server) handleApplyOptimization(c *gin.Context) {
	p, err := s.store.GetPlan(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var body struct {
		Recommendations []plan.Recommendation `json:"recommendations"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(body.Recommendations) == 0 {
		badRequest(c, "recommendations must not be empty")
		return
	}

	applied := plan.ApplyRecommendations(p, body.Recommendations)
	p.Tasks = plan.Schedule(p.Tasks, p.StartDate)
	if err := s.store.UpdatePlan(p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied, "plan": p})
}

// --- suggestions, calendar, analytics ---

func (s *Server) handleSuggestions(c *gin.Context) {
	p, err := s.store.GetPlan(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan_id": p.ID, "suggestions": plan.NextTasks(p)})
}

func (s *Server) handleExportCalendar(c *gin.Context) {
	p, err := s.store.GetPlan(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ics := calendar.Export(p)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, calendar.Filename(p)))
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

func (s *Server) handleAnalytics(c *gin.Context) {
	plans, err := s.store.AllPlans()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics.Overview(plans))
}

func (s *Server) handlePlanAnalytics(c *gin.Context) {
	p, err := s.store.GetPlan(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics.PlanReport(p))
}

// --- service status ---

func (s *Server) handleMetrics(c *gin.Context) {
	stats := s.metrics.Stats()
	if s.cache != nil {
		for k, v := range s.cache.Stats() {
			stats[k] = v
		}
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleHealth(c *gin.Context) {
	dbOK := s.store.Health() == nil
	llmOK := s.planner.Client().IsAvailable(c.Request.Context())

	status := "healthy"
	if !dbOK || !llmOK {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"components": gin.H{
			"database": componentStatus(dbOK),
			"ollama":   componentStatus(llmOK),
		},
	})
}

func componentStatus(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}

// planTask resolves the :id and :tid params to a plan and a task,
// writing the error response itself when either is missing.
func (s *Server) planTask(c *gin.Context) (*plan.Plan, *plan.Task, bool) {
	p, err := s.store.GetPlan(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, nil, false
	}
	taskID, err := strconv.Atoi(c.Param("tid"))
	if err != nil {
		badRequest(c, "task id must be an integer")
		return nil, nil, false
	}
	t := p.Task(taskID)
	if t == nil {
		writeError(c, &plan.NotFoundError{Kind: "task", ID: taskID})
		return nil, nil, false
	}
	return p, t, true
}
