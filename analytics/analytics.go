package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"taskflow/plan"
)

// Reports aggregate what is in the store; nothing here mutates plans.

// Overview summarizes every stored plan for GET /api/analytics
func Overview(plans []*plan.Plan) map[string]any {
	totalTasks := 0
	totalHours := 0.0
	completedTasks := 0
	priorityDist := map[string]int{}
	statusDist := map[string]int{}
	timeframes := map[string]int{}

	for _, p := range plans {
		if p.Timeframe != "" {
			timeframes[p.Timeframe]++
		}
		for i := range p.Tasks {
			t := &p.Tasks[i]
			totalTasks++
			totalHours += t.EstimatedHours
			priorityDist[string(t.Priority)]++
			statusDist[string(t.Status)]++
			if t.Status == plan.StatusCompleted {
				completedTasks++
			}
		}
	}

	avgTasks := 0.0
	avgHours := 0.0
	if len(plans) > 0 {
		avgTasks = float64(totalTasks) / float64(len(plans))
		avgHours = totalHours / float64(len(plans))
	}
	completionRate := 0.0
	if totalTasks > 0 {
		completionRate = float64(completedTasks) / float64(totalTasks) * 100
	}

	return map[string]any{
		"total_plans":           len(plans),
		"total_tasks":           totalTasks,
		"total_hours":           round1(totalHours),
		"avg_tasks_per_plan":    round1(avgTasks),
		"avg_hours_per_plan":    round1(avgHours),
		"priority_distribution": priorityDist,
		"status_distribution":   statusDist,
		"completion_rate":       round1(completionRate),
		"popular_timeframes":    popularTimeframes(timeframes),
		"recent_activity":       recentActivity(plans),
		"productivity_metrics":  productivity(plans),
		"insights":              insights(plans, completionRate, avgHours, priorityDist, totalTasks),
	}
}

func popularTimeframes(counts map[string]int) []map[string]any {
	type tf struct {
		name  string
		count int
	}
	list := make([]tf, 0, len(counts))
	for name, count := range counts {
		list = append(list, tf{name, count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].name < list[j].name
	})
	if len(list) > 5 {
		list = list[:5]
	}
	out := make([]map[string]any, len(list))
	for i, t := range list {
		out[i] = map[string]any{"timeframe": t.name, "count": t.count}
	}
	return out
}

// recentActivity lists the ten newest plans with their progress
func recentActivity(plans []*plan.Plan) []map[string]any {
	sorted := make([]*plan.Plan, len(plans))
	copy(sorted, plans)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > 10 {
		sorted = sorted[:10]
	}
	out := make([]map[string]any, len(sorted))
	for i, p := range sorted {
		out[i] = map[string]any{
			"plan_id":         p.ID,
			"goal":            p.Goal,
			"created_at":      p.CreatedAt,
			"tasks_count":     len(p.Tasks),
			"completed_tasks": p.CompletedTasks(),
		}
	}
	return out
}

func productivity(plans []*plan.Plan) map[string]any {
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	plansThisWeek := 0
	tasksCompletedThisWeek := 0
	completionHours := 0.0
	completions := 0
	byWeekday := map[time.Weekday]int{}

	for _, p := range plans {
		if p.CreatedAt.After(weekAgo) {
			plansThisWeek++
		}
		for i := range p.Tasks {
			t := &p.Tasks[i]
			if t.CompletedAt == nil {
				continue
			}
			if t.CompletedAt.After(weekAgo) {
				tasksCompletedThisWeek++
			}
			byWeekday[t.CompletedAt.Weekday()]++
			if t.CompletedAt.After(p.CreatedAt) {
				completionHours += t.CompletedAt.Sub(p.CreatedAt).Hours()
				completions++
			}
		}
	}

	avgCompletion := 0.0
	if completions > 0 {
		avgCompletion = completionHours / float64(completions)
	}

	mostProductive := ""
	best := 0
	for wd, n := range byWeekday {
		if n > best {
			best = n
			mostProductive = wd.String()
		}
	}

	return map[string]any{
		"plans_this_week":           plansThisWeek,
		"tasks_completed_this_week": tasksCompletedThisWeek,
		"avg_completion_time_hours": round1(avgCompletion),
		"most_productive_day":       mostProductive,
	}
}

// insights produces up to five observations worth acting on
func insights(plans []*plan.Plan, completionRate, avgHours float64, priorityDist map[string]int, totalTasks int) []string {
	out := []string{}
	if len(plans) == 0 {
		return out
	}
	if completionRate < 30 {
		out = append(out, "Most tasks are still open; consider focusing on the suggested next tasks")
	}
	if completionRate > 80 {
		out = append(out, "Strong completion rate; plans are being followed through")
	}
	if avgHours > 100 {
		out = append(out, "Plans are large on average; splitting goals into smaller plans may help")
	}
	if totalTasks > 0 {
		highShare := float64(priorityDist[string(plan.PriorityHigh)]) / float64(totalTasks)
		if highShare > 0.5 {
			out = append(out, "Over half of all tasks are high priority; priorities may need rebalancing")
		}
	}
	blockedCount := 0
	inProgress := 0
	for _, p := range plans {
		for i := range p.Tasks {
			switch p.Tasks[i].Status {
			case plan.StatusBlocked:
				blockedCount++
			case plan.StatusInProgress:
				inProgress++
			}
		}
	}
	if blockedCount > 0 {
		out = append(out, fmt.Sprintf("%d tasks are blocked; resolving them would unblock downstream work", blockedCount))
	}
	if inProgress > 5 {
		out = append(out, "Many tasks are in progress at once; finishing some before starting more reduces context switching")
	}
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// PlanReport summarizes a single plan for GET /api/plans/:id/analytics
func PlanReport(p *plan.Plan) map[string]any {
	byStatus := map[string]int{}
	byPriority := map[string]int{}
	totalHours := 0.0
	completedHours := 0.0
	var lastDeadline string

	for i := range p.Tasks {
		t := &p.Tasks[i]
		byStatus[string(t.Status)]++
		byPriority[string(t.Priority)]++
		totalHours += t.EstimatedHours
		if t.Status == plan.StatusCompleted {
			completedHours += t.EstimatedHours
		}
		if t.Deadline > lastDeadline {
			lastDeadline = t.Deadline
		}
	}

	progress := 0.0
	if len(p.Tasks) > 0 {
		progress = float64(p.CompletedTasks()) / float64(len(p.Tasks)) * 100
	}

	return map[string]any{
		"plan_id":              p.ID,
		"goal":                 p.Goal,
		"progress_percent":     round1(progress),
		"tasks_total":          len(p.Tasks),
		"tasks_by_status":      byStatus,
		"tasks_by_priority":    byPriority,
		"total_hours":          round1(totalHours),
		"completed_hours":      round1(completedHours),
		"estimated_completion": lastDeadline,
		"created_at":           p.CreatedAt,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
