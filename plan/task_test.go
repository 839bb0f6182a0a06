package plan

import (
	"testing"
)

func TestSetTaskStatus_CompletedTimestamp(t *testing.T) {
	p := New("test goal for statuses", "1 week", "2026-01-05", []Task{{ID: 0, Status: StatusTodo}})

	if err := p.SetTaskStatus(0, StatusCompleted); err != nil {
		t.Fatalf("SetTaskStatus failed: %v", err)
	}
	if p.Tasks[0].CompletedAt == nil {
		t.Error("completed task should have completed_at set")
	}

	if err := p.SetTaskStatus(0, StatusInProgress); err != nil {
		t.Fatalf("SetTaskStatus failed: %v", err)
	}
	if p.Tasks[0].CompletedAt != nil {
		t.Error("reopened task should have completed_at cleared")
	}

	if err := p.SetTaskStatus(42, StatusTodo); err == nil {
		t.Error("unknown task should error")
	}
}

func TestComments_SequentialIDs(t *testing.T) {
	p := New("test goal for comments", "1 week", "", []Task{{ID: 0}})

	c1, err := p.AddComment(0, "first", "")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if c1.ID != 1 {
		t.Errorf("first comment id should be 1, got %d", c1.ID)
	}
	if c1.Author != "User" {
		t.Errorf("empty author should default to User, got %q", c1.Author)
	}

	c2, _ := p.AddComment(0, "second", "alex")
	c3, _ := p.AddComment(0, "third", "alex")
	if c2.ID != 2 || c3.ID != 3 {
		t.Errorf("comment ids should be sequential, got %d and %d", c2.ID, c3.ID)
	}

	if err := p.DeleteComment(0, 2); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
	comments := p.Tasks[0].Comments
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments after delete, got %d", len(comments))
	}
	if comments[0].ID != 1 || comments[1].ID != 2 {
		t.Errorf("comments should re-index after delete, got %d and %d", comments[0].ID, comments[1].ID)
	}
	if comments[1].Text != "third" {
		t.Errorf("re-indexed comment should keep its text, got %q", comments[1].Text)
	}

	if err := p.DeleteComment(0, 9); err == nil {
		t.Error("deleting a missing comment should error")
	}
}

func TestClone_IsDeep(t *testing.T) {
	p := New("test goal for cloning", "1 week", "", []Task{{ID: 0, Title: "Original"}})
	cp := p.Clone()
	cp.Tasks[0].Title = "Changed"

	if p.Tasks[0].Title != "Original" {
		t.Error("mutating the clone should not touch the original")
	}
}
