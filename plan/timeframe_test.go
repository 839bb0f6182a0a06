package plan

import (
	"errors"
	"testing"
)

func TestParseTimeframeDays(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2 weeks", 14},
		{"30 days", 30},
		{"1 month", 30},
		{"1 year", 365},
		{"3week", 21},
		{"10", 10},
		{"40", 280}, // bare numbers over a month read as weeks
	}
	for _, tc := range cases {
		got, err := ParseTimeframeDays(tc.in)
		if err != nil {
			t.Errorf("ParseTimeframeDays(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeframeDays(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "soon", "a while"} {
		if _, err := ParseTimeframeDays(bad); err == nil {
			t.Errorf("ParseTimeframeDays(%q) should fail", bad)
		}
	}
}

func TestAvailableHours(t *testing.T) {
	if got := AvailableHours("1 week"); got != 56 {
		t.Errorf("1 week should provide 56 hours, got %v", got)
	}
	if got := AvailableHours("nonsense"); got != 0 {
		t.Errorf("unparseable timeframe should provide 0 hours, got %v", got)
	}
}

func TestEnsureFits_CompliantPlanUntouched(t *testing.T) {
	tasks := []Task{
		{EstimatedHours: 25, Priority: PriorityMedium},
		{EstimatedHours: 25, Priority: PriorityMedium},
	}
	out, err := EnsureFits(tasks, "1 week") // 56h available, 50h planned
	if err != nil {
		t.Fatalf("compliant plan should not error: %v", err)
	}
	if out[0].EstimatedHours != 25 {
		t.Errorf("compliant plan should be untouched, got %v", out[0].EstimatedHours)
	}
}

func TestEnsureFits_ScalesMildlyOversizedPlan(t *testing.T) {
	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{EstimatedHours: 6.8, Priority: PriorityMedium}
	}
	out, err := EnsureFits(tasks, "1 week") // 68h planned into 56h, factor 0.82
	if err != nil {
		t.Fatalf("mildly oversized plan should scale, not error: %v", err)
	}
	total := 0.0
	for _, task := range out {
		if task.EstimatedHours >= 6.8 {
			t.Errorf("oversized task should have shrunk, got %v", task.EstimatedHours)
		}
		total += task.EstimatedHours
	}
	if total > 56*complianceMax+complianceTolerance {
		t.Errorf("scaled total %v still exceeds the timeframe band", total)
	}
}

func TestEnsureFits_RefusesDeepCompression(t *testing.T) {
	// 200h into 56h would need a 0.28 factor, well past the 0.8 bound
	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{EstimatedHours: 20, Priority: PriorityMedium}
	}
	out, err := EnsureFits(tasks, "1 week")
	if err == nil {
		t.Fatal("expected a compliance error")
	}
	var ce *ComplianceError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplianceError, got %T", err)
	}
	if ce.TotalHours != 200 {
		t.Errorf("error should report the unscaled total, got %v", ce.TotalHours)
	}
	if len(ce.Suggestions) == 0 || ce.Suggestions[0] != "Extend the timeframe to accommodate the work" {
		t.Errorf("expected extend-timeframe suggestions, got %v", ce.Suggestions)
	}
	for _, task := range out {
		if task.EstimatedHours != 20 {
			t.Errorf("refused plans should keep their estimates, got %v", task.EstimatedHours)
		}
	}
}

func TestEnsureFits_UnderfilledPlanErrorsWithoutInflating(t *testing.T) {
	tasks := []Task{{EstimatedHours: 10, Priority: PriorityMedium}}
	out, err := EnsureFits(tasks, "1 week") // 10h into 56h, 18% utilization
	if err == nil {
		t.Fatal("expected a compliance error")
	}
	var ce *ComplianceError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplianceError, got %T", err)
	}
	if out[0].EstimatedHours != 10 {
		t.Errorf("estimates must never inflate to fill a timeframe, got %v", out[0].EstimatedHours)
	}
	if len(ce.Suggestions) == 0 || ce.Suggestions[0] != "Shorten the timeframe" {
		t.Errorf("expected shorten-timeframe suggestions, got %v", ce.Suggestions)
	}
}

func TestEnsureFits_ImpossiblePlanErrors(t *testing.T) {
	tasks := make([]Task, 20)
	for i := range tasks {
		tasks[i] = Task{EstimatedHours: 5, Priority: PriorityMedium}
	}
	_, err := EnsureFits(tasks, "1 day") // 100h into 8h
	if err == nil {
		t.Fatal("expected a compliance error")
	}
	var ce *ComplianceError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplianceError, got %T", err)
	}
	if len(ce.Suggestions) == 0 {
		t.Error("compliance error should carry suggestions")
	}
}
