package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"taskflow/plan"
)

// Local models frequently wrap JSON in prose or markdown, truncate it,
// or use Python-ish quoting. This file digs a usable task list out of
// whatever came back.

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	titlePattern      = regexp.MustCompile(`"title"\s*:\s*"([^"]{5,100})"`)
	listItemPattern   = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]|[-*])\s+(.+)$`)
	trailingComma     = regexp.MustCompile(`,\s*([}\]])`)
)

// ParseTasks extracts a task list from a raw model response. It tries a
// fenced code block, then a balanced-brace scan, then repaired variants,
// then salvaging just the tasks array, and finally title patterns and
// numbered lists from plain text.
func ParseTasks(response string) ([]plan.Task, error) {
	for _, candidate := range jsonCandidates(response) {
		if tasks, ok := decodeTaskPayload(candidate); ok {
			return tasks, nil
		}
		if tasks, ok := decodeTaskPayload(repairJSON(candidate)); ok {
			return tasks, nil
		}
	}

	if arr, ok := salvageTasksArray(response); ok {
		if tasks, ok := decodeTaskPayload(`{"tasks":` + arr + `}`); ok {
			return tasks, nil
		}
		if tasks, ok := decodeTaskPayload(`{"tasks":` + repairJSON(arr) + `}`); ok {
			return tasks, nil
		}
	}

	if tasks := tasksFromText(response); len(tasks) > 0 {
		return tasks, nil
	}

	return nil, fmt.Errorf("no task list found in model response")
}

// jsonCandidates yields substrings of the response that look like JSON
// objects, best guess first.
func jsonCandidates(response string) []string {
	var candidates []string
	if m := fencedJSONPattern.FindStringSubmatch(response); m != nil {
		candidates = append(candidates, m[1])
	}
	if obj, ok := balancedObject(response); ok {
		candidates = append(candidates, obj)
	}
	return candidates
}

// balancedObject scans for the first top-level {...} with proper
// in-string and escape tracking, tolerating a missing closer by
// returning everything from the opening brace.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return s[start:], true
}

// repairJSON fixes the failure modes local models actually produce:
// single-quoted strings, trailing commas, and output truncated mid-value.
func repairJSON(s string) string {
	if !strings.Contains(s, `"`) && strings.Contains(s, `'`) {
		s = strings.ReplaceAll(s, `'`, `"`)
	}
	s = trailingComma.ReplaceAllString(s, "$1")
	s = closeTruncated(s)
	return s
}

// closeTruncated closes an unterminated string and balances braces and
// brackets so a truncated response still decodes.
func closeTruncated(s string) string {
	inString := false
	escaped := false
	var stack []byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, ch)
			}
		case '}', ']':
			if !inString && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if inString {
		s += `"`
	}
	// Drop a dangling "key": with no value before closing up
	trimmed := strings.TrimRight(s, " \t\n\r")
	if strings.HasSuffix(trimmed, ":") || strings.HasSuffix(trimmed, ",") {
		s = strings.TrimRight(trimmed, ":,")
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			s += "}"
		} else {
			s += "]"
		}
	}
	return s
}

// salvageTasksArray pulls just the [...] following a "tasks" key
func salvageTasksArray(s string) (string, bool) {
	idx := strings.Index(s, `"tasks"`)
	if idx < 0 {
		idx = strings.Index(s, `'tasks'`)
	}
	if idx < 0 {
		return "", false
	}
	rest := s[idx:]
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(rest); i++ {
		ch := rest[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString {
				depth--
				if depth == 0 {
					return rest[open : i+1], true
				}
			}
		}
	}
	return closeTruncated(rest[open:]), true
}

type rawTask struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	EstimatedHours any    `json:"estimated_hours"`
	Priority       string `json:"priority"`
	Complexity     string `json:"complexity"`
	TaskType       string `json:"task_type"`
	Dependencies   []any  `json:"dependencies"`
}

func decodeTaskPayload(s string) ([]plan.Task, bool) {
	var payload struct {
		Tasks []rawTask `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(s), &payload); err != nil || len(payload.Tasks) == 0 {
		return nil, false
	}
	tasks := make([]plan.Task, 0, len(payload.Tasks))
	for _, rt := range payload.Tasks {
		tasks = append(tasks, plan.Task{
			Title:          rt.Title,
			Description:    rt.Description,
			EstimatedHours: toFloat(rt.EstimatedHours),
			Priority:       plan.Priority(strings.ToLower(rt.Priority)),
			Complexity:     plan.Complexity(strings.ToLower(rt.Complexity)),
			TaskType:       plan.TaskType(strings.ToLower(rt.TaskType)),
			Dependencies:   toInts(rt.Dependencies),
			Status:         plan.StatusTodo,
		})
	}
	return tasks, true
}

// toFloat accepts numbers and numeric strings; anything else is zero
// and picks up the default during validation.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return 0
}

func toInts(vals []any) []int {
	out := []int{}
	for _, v := range vals {
		switch n := v.(type) {
		case float64:
			out = append(out, int(n))
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				out = append(out, i)
			}
		}
	}
	return out
}

// tasksFromText builds tasks from quoted titles or list items when no
// JSON survived at all.
func tasksFromText(response string) []plan.Task {
	var titles []string
	for _, m := range titlePattern.FindAllStringSubmatch(response, -1) {
		titles = append(titles, m[1])
	}
	if len(titles) == 0 {
		for _, m := range listItemPattern.FindAllStringSubmatch(response, -1) {
			item := strings.TrimSpace(m[1])
			if len(item) >= 5 && len(item) <= 100 {
				titles = append(titles, item)
			}
		}
	}
	tasks := make([]plan.Task, 0, len(titles))
	for _, title := range titles {
		tasks = append(tasks, plan.Task{
			Title:        title,
			Status:       plan.StatusTodo,
			Dependencies: []int{},
		})
	}
	return tasks
}

// FallbackTasks is the last resort when the model produced nothing
// usable: a generic plan shaped by the goal.
func FallbackTasks(goal string) []plan.Task {
	lower := strings.ToLower(goal)
	if strings.Contains(lower, "website") || strings.Contains(lower, "web") || strings.Contains(lower, "page") {
		return []plan.Task{
			{Title: "Plan website structure and content", Description: "Define pages, navigation and the content each page needs", EstimatedHours: 4, Priority: plan.PriorityHigh, TaskType: plan.TypeDesign, Dependencies: []int{}, Status: plan.StatusTodo},
			{Title: "Design layout and visual style", Description: "Create wireframes and settle on colors, fonts and imagery", EstimatedHours: 6, Priority: plan.PriorityHigh, TaskType: plan.TypeDesign, Dependencies: []int{0}, Status: plan.StatusTodo},
			{Title: "Build the core pages", Description: "Implement the HTML, CSS and interactive elements", EstimatedHours: 12, Priority: plan.PriorityHigh, TaskType: plan.TypeImplementation, Dependencies: []int{1}, Status: plan.StatusTodo},
			{Title: "Test across devices and browsers", Description: "Verify layout and functionality on mobile and desktop", EstimatedHours: 4, Priority: plan.PriorityMedium, TaskType: plan.TypeTesting, Dependencies: []int{2}, Status: plan.StatusTodo},
			{Title: "Deploy and launch", Description: "Set up hosting, point the domain and publish", EstimatedHours: 3, Priority: plan.PriorityMedium, TaskType: plan.TypeDeployment, Dependencies: []int{3}, Status: plan.StatusTodo},
		}
	}
	return []plan.Task{
		{Title: "Research and define requirements", Description: "Clarify what success looks like and gather what is needed", EstimatedHours: 4, Priority: plan.PriorityHigh, TaskType: plan.TypeResearch, Dependencies: []int{}, Status: plan.StatusTodo},
		{Title: "Create a detailed project plan", Description: "Break the goal into concrete milestones", EstimatedHours: 3, Priority: plan.PriorityHigh, TaskType: plan.TypeDesign, Dependencies: []int{0}, Status: plan.StatusTodo},
		{Title: "Execute the main work", Description: "Carry out the core of the project", EstimatedHours: 16, Priority: plan.PriorityHigh, TaskType: plan.TypeImplementation, Dependencies: []int{1}, Status: plan.StatusTodo},
		{Title: "Review and refine results", Description: "Check the work against requirements and fix gaps", EstimatedHours: 4, Priority: plan.PriorityMedium, TaskType: plan.TypeTesting, Dependencies: []int{2}, Status: plan.StatusTodo},
		{Title: "Finalize and document", Description: "Wrap up loose ends and record what was done", EstimatedHours: 2, Priority: plan.PriorityLow, TaskType: plan.TypeDocumentation, Dependencies: []int{3}, Status: plan.StatusTodo},
	}
}
