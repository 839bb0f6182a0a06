package plan

import (
	"testing"
)

func TestValidateAndFix_Defaults(t *testing.T) {
	tasks := ValidateAndFix([]Task{{}})

	task := tasks[0]
	if task.Title != "Task 1" {
		t.Errorf("empty title should default to 'Task 1', got %q", task.Title)
	}
	if task.Description == "" {
		t.Error("empty description should get a default")
	}
	if task.EstimatedHours != 4.0 {
		t.Errorf("missing hours should default to 4.0, got %v", task.EstimatedHours)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("missing priority should default to medium, got %v", task.Priority)
	}
	if task.Status != StatusTodo {
		t.Errorf("missing status should default to todo, got %v", task.Status)
	}
}

func TestValidateAndFix_HoursClamped(t *testing.T) {
	tasks := ValidateAndFix([]Task{
		{Title: "Huge", Description: "way too big", EstimatedHours: 500},
		{Title: "Negative", Description: "below zero", EstimatedHours: -3},
	})
	if tasks[0].EstimatedHours != 168 {
		t.Errorf("hours should clamp to 168, got %v", tasks[0].EstimatedHours)
	}
	if tasks[1].EstimatedHours != 4.0 {
		t.Errorf("negative hours should fall back to default, got %v", tasks[1].EstimatedHours)
	}
}

func TestValidateAndFix_FiltersForwardDependencies(t *testing.T) {
	tasks := ValidateAndFix([]Task{
		{Title: "Alpha task", Description: "first of the batch", Dependencies: []int{2, -1}},
		{Title: "Beta task", Description: "second of the batch", Dependencies: []int{0, 1, 5}},
	})
	if len(tasks[0].Dependencies) != 0 {
		t.Errorf("first task cannot have dependencies, got %v", tasks[0].Dependencies)
	}
	if len(tasks[1].Dependencies) != 1 || tasks[1].Dependencies[0] != 0 {
		t.Errorf("second task should only keep dep 0, got %v", tasks[1].Dependencies)
	}
}

func TestValidateAndFix_AutoDetection(t *testing.T) {
	tasks := ValidateAndFix([]Task{
		{Title: "Research the market", Description: "survey the landscape"},
		{Title: "Integrate payment API", Description: "wire up the payment provider"},
	})
	if tasks[0].TaskType != TypeResearch {
		t.Errorf("expected research type, got %v", tasks[0].TaskType)
	}
	if tasks[1].Complexity != ComplexityComplex {
		t.Errorf("api/payment work should detect as complex, got %v", tasks[1].Complexity)
	}
}

func TestRebalancePriorities_TooManyHigh(t *testing.T) {
	tasks := make([]Task, 6)
	for i := range tasks {
		tasks[i] = Task{Title: "Task", Description: "something to do", Priority: PriorityHigh, EstimatedHours: 2}
	}
	tasks = ValidateAndFix(tasks)

	high := 0
	for _, task := range tasks {
		if task.Priority == PriorityHigh {
			high++
		}
	}
	if high != 3 {
		t.Errorf("only the first 3 high priorities should survive, got %d", high)
	}
}

func TestRebalancePriorities_DemotesWrapUpWork(t *testing.T) {
	tasks := ValidateAndFix([]Task{
		{Title: "Build feature", Description: "core implementation work", Priority: PriorityMedium, EstimatedHours: 8},
		{Title: "Test everything", Description: "verify the whole feature", Priority: PriorityMedium, EstimatedHours: 3},
		{Title: "Document the API", Description: "write usage documentation", Priority: PriorityMedium, EstimatedHours: 2},
	})

	if tasks[2].Priority != PriorityLow {
		t.Errorf("trailing documentation task should demote to low, got %v", tasks[2].Priority)
	}
	if tasks[1].Priority != PriorityLow {
		t.Errorf("trailing test task should demote to low, got %v", tasks[1].Priority)
	}
	if tasks[0].Priority != PriorityMedium {
		t.Errorf("leading implementation task should stay medium, got %v", tasks[0].Priority)
	}
}
