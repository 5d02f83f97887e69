package reminder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moldworks/moldtrack/internal/model"
)

func reminderFixture() ([]model.Member, []model.Task) {
	members := []model.Member{
		{EmpID: "E001", Name: "Ben Chang", Email: "ben@moldcorp.com", Role: model.RoleEngineer},
		{EmpID: "E002", Name: "Carl Lin", Email: "", Role: model.RoleEngineer},
	}
	tasks := []model.Task{
		{ID: "A-202", MoldName: "MOLD-B2", Title: "Ejector system assembly",
			Status: model.StatusDelayed, Priority: model.PriorityHigh,
			Assignee: "Ben Chang", DueDate: "2025-06-16", Progress: 30},
		{ID: "D-101", MoldName: "MOLD-A1", Title: "3D structure optimization",
			Status: model.StatusInProgress, Assignee: "Ben Chang"},
		{ID: "T-104", MoldName: "MOLD-A1", Title: "T2 verification trial",
			Status: model.StatusDelayed, Assignee: "Carl Lin"},
		{ID: "M-105", MoldName: "MOLD-B2", Title: "Mass-production preparation",
			Status: model.StatusDelayed, Assignee: "Nobody Known"},
	}
	return members, tasks
}

func TestSendDelayedRemindersWritesOnePerReachableAssignee(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")
	members, tasks := reminderFixture()

	// Only A-202 qualifies: D-101 is not delayed, Carl Lin has no
	// address, and M-105's assignee is not a member.
	n, err := NewComposer(dir).SendDelayedReminders("plm-noreply@moldcorp.com", members, tasks)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "reminder-A-202-"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".eml"))
}

func TestReminderMessageHeadersAndBody(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")
	members, tasks := reminderFixture()

	_, err := NewComposer(dir).SendDelayedReminders("plm-noreply@moldcorp.com", members, tasks)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	msg := string(raw)

	assert.Contains(t, msg, "From: <plm-noreply@moldcorp.com>")
	assert.Contains(t, msg, "To: <ben@moldcorp.com>")
	assert.Contains(t, msg, "Delayed task A-202")
	assert.Contains(t, msg, "past its due date of 2025-06-16")
	assert.Contains(t, msg, "Progress: 30%")
}

func TestNoDelayedTasksWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")
	members, _ := reminderFixture()
	tasks := []model.Task{{ID: "D-101", Status: model.StatusDone, Assignee: "Ben Chang"}}

	n, err := NewComposer(dir).SendDelayedReminders("plm-noreply@moldcorp.com", members, tasks)
	require.NoError(t, err)
	assert.Zero(t, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
