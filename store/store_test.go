package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/plan"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testPlan(goal string) *plan.Plan {
	return plan.New(goal, "2 weeks", "2026-01-05", []plan.Task{
		{ID: 0, Title: "First", Description: "the first task", EstimatedHours: 4, Priority: plan.PriorityHigh, Status: plan.StatusTodo, Dependencies: []int{}},
		{ID: 1, Title: "Second", Description: "the second task", EstimatedHours: 2, Priority: plan.PriorityMedium, Status: plan.StatusTodo, Dependencies: []int{0}},
	})
}

func TestSaveAndGetPlan(t *testing.T) {
	st := setupTestStore(t)
	p := testPlan("build a birdhouse this month")

	require.NoError(t, st.SavePlan(p))

	got, err := st.GetPlan(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Goal, got.Goal)
	assert.Equal(t, "2 weeks", got.Timeframe)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, "First", got.Tasks[0].Title)
	assert.Equal(t, []int{0}, got.Tasks[1].Dependencies)
}

func TestGetPlan_NotFound(t *testing.T) {
	st := setupTestStore(t)

	_, err := st.GetPlan("missing-id")
	require.Error(t, err)
	var nf *plan.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestListPlans_NewestFirstWithLimit(t *testing.T) {
	st := setupTestStore(t)

	older := testPlan("the older of the two plans")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := testPlan("the newer of the two plans")

	require.NoError(t, st.SavePlan(older))
	require.NoError(t, st.SavePlan(newer))

	plans, err := st.ListPlans(10)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, newer.ID, plans[0].ID)

	limited, err := st.ListPlans(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, newer.ID, limited[0].ID)
}

func TestUpdatePlan(t *testing.T) {
	st := setupTestStore(t)
	p := testPlan("a plan that will change soon")
	require.NoError(t, st.SavePlan(p))

	require.NoError(t, p.SetTaskStatus(0, plan.StatusCompleted))
	require.NoError(t, st.UpdatePlan(p))

	got, err := st.GetPlan(p.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.StatusCompleted, got.Tasks[0].Status)
	assert.NotNil(t, got.Tasks[0].CompletedAt)
}

func TestUpdatePlan_NotFound(t *testing.T) {
	st := setupTestStore(t)
	p := testPlan("a plan that was never saved")

	err := st.UpdatePlan(p)
	var nf *plan.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestDeletePlan(t *testing.T) {
	st := setupTestStore(t)
	p := testPlan("a plan with a short life")
	require.NoError(t, st.SavePlan(p))

	require.NoError(t, st.DeletePlan(p.ID))

	_, err := st.GetPlan(p.ID)
	require.Error(t, err)

	err = st.DeletePlan(p.ID)
	var nf *plan.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestGenerationLogs(t *testing.T) {
	st := setupTestStore(t)
	p := testPlan("a plan with an audit trail")
	require.NoError(t, st.SavePlan(p))

	require.NoError(t, st.LogGeneration(p.ID, "the prompt", "the response", 128))
	require.NoError(t, st.LogGeneration(p.ID, "second prompt", "second response", 64))

	logs, err := st.GenerationLogs(p.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "the prompt", logs[0].Prompt)
	assert.Equal(t, 128, logs[0].TokensUsed)
	assert.Equal(t, p.ID, logs[1].PlanID)
}

func TestHealth(t *testing.T) {
	st := setupTestStore(t)
	assert.NoError(t, st.Health())
}
