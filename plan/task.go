package plan

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a task
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// Valid reports whether s is one of the known task statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

// Priority represents task importance
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities for sorting: high before medium before low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Complexity categorizes how demanding a task is
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
	ComplexityExpert   Complexity = "expert"
)

func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex, ComplexityExpert:
		return true
	}
	return false
}

// TaskType categorizes the kind of work
type TaskType string

const (
	TypeResearch       TaskType = "research"
	TypeDesign         TaskType = "design"
	TypeImplementation TaskType = "implementation"
	TypeTesting        TaskType = "testing"
	TypeDeployment     TaskType = "deployment"
	TypeDocumentation  TaskType = "documentation"
)

func (t TaskType) Valid() bool {
	switch t {
	case TypeResearch, TypeDesign, TypeImplementation, TypeTesting, TypeDeployment, TypeDocumentation:
		return true
	}
	return false
}

// Comment is a note attached to a task. IDs are sequential within the
// task and re-indexed after deletion.
type Comment struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// Subtask is a smaller unit of work inside a task
type Subtask struct {
	ID             int     `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	EstimatedHours float64 `json:"estimated_hours"`
	Status         Status  `json:"status"`
	Completed      bool    `json:"completed"`
}

// Task is a single step in a plan. Its ID is its index in the plan's
// task list, and Dependencies refer to earlier task IDs only.
type Task struct {
	ID              int                `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	EstimatedHours  float64            `json:"estimated_hours"`
	Priority        Priority           `json:"priority"`
	Complexity      Complexity         `json:"complexity"`
	TaskType        TaskType           `json:"task_type"`
	Dependencies    []int              `json:"dependencies"`
	Status          Status             `json:"status"`
	StartTime       string             `json:"start_time,omitempty"`
	Deadline        string             `json:"deadline,omitempty"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`
	BaseHours       float64            `json:"base_hours,omitempty"`
	OverheadFactors map[string]float64 `json:"overhead_factors,omitempty"`
	Subtasks        []Subtask          `json:"subtasks,omitempty"`
	Comments        []Comment          `json:"comments,omitempty"`
}

// Plan is a scheduled set of tasks derived from a goal
type Plan struct {
	ID        string    `json:"id"`
	Goal      string    `json:"goal"`
	Timeframe string    `json:"timeframe"`
	StartDate string    `json:"start_date"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a plan with a fresh ID and timestamps
func New(goal, timeframe, startDate string, tasks []Task) *Plan {
	now := time.Now().UTC()
	return &Plan{
		ID:        uuid.New().String(),
		Goal:      goal,
		Timeframe: timeframe,
		StartDate: startDate,
		Tasks:     tasks,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Task returns a pointer into p.Tasks for the given id, or nil
func (p *Plan) Task(id int) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// TotalHours sums estimated hours across all tasks
func (p *Plan) TotalHours() float64 {
	var total float64
	for i := range p.Tasks {
		total += p.Tasks[i].EstimatedHours
	}
	return total
}

// CompletedTasks counts tasks with completed status
func (p *Plan) CompletedTasks() int {
	n := 0
	for i := range p.Tasks {
		if p.Tasks[i].Status == StatusCompleted {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the plan
func (p *Plan) Clone() *Plan {
	data, err := json.Marshal(p)
	if err != nil {
		cp := *p
		return &cp
	}
	var cp Plan
	if err := json.Unmarshal(data, &cp); err != nil {
		cp := *p
		return &cp
	}
	return &cp
}

// SetTaskStatus updates a task's status, stamping completed_at when the
// task transitions to completed and clearing it otherwise.
func (p *Plan) SetTaskStatus(taskID int, status Status) error {
	t := p.Task(taskID)
	if t == nil {
		return &NotFoundError{Kind: "task", ID: taskID}
	}
	t.Status = status
	if status == StatusCompleted {
		now := time.Now().UTC()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// AddComment appends a comment to a task with the next sequential id
func (p *Plan) AddComment(taskID int, text, author string) (*Comment, error) {
	t := p.Task(taskID)
	if t == nil {
		return nil, &NotFoundError{Kind: "task", ID: taskID}
	}
	if author == "" {
		author = "User"
	}
	c := Comment{
		ID:        len(t.Comments) + 1,
		Text:      text,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	}
	t.Comments = append(t.Comments, c)
	p.UpdatedAt = time.Now().UTC()
	return &t.Comments[len(t.Comments)-1], nil
}

// DeleteComment removes a comment and re-indexes the remainder so ids
// stay sequential from 1.
func (p *Plan) DeleteComment(taskID, commentID int) error {
	t := p.Task(taskID)
	if t == nil {
		return &NotFoundError{Kind: "task", ID: taskID}
	}
	idx := -1
	for i := range t.Comments {
		if t.Comments[i].ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: "comment", ID: commentID}
	}
	t.Comments = append(t.Comments[:idx], t.Comments[idx+1:]...)
	for i := range t.Comments {
		t.Comments[i].ID = i + 1
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// NotFoundError reports a missing plan, task or comment
type NotFoundError struct {
	Kind string
	ID   any
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found"
}
