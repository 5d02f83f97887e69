package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moldworks/moldtrack/internal/model"
)

func exportTasks() []model.Task {
	return []model.Task{
		{
			ID: "D-101", MoldName: "MOLD-A1", Title: "3D structure optimization",
			Status: model.StatusInProgress, Priority: model.PriorityHigh,
			Assignee: "Ben Chang", StartDate: "2025-06-01", DueDate: "2025-06-20",
			Progress: 45, Tags: []model.Phase{model.PhaseDesign},
		},
		{
			ID: "T-103", MoldName: "MOLD-B2", Title: "T1 trial run",
			Status: model.StatusReview, Priority: model.PriorityCritical,
			Assignee: "Dana Wang", StartDate: "2025-06-05", DueDate: "2025-06-12",
			Progress: 80, Tags: []model.Phase{model.PhaseTrial},
			Trials: []model.MoldTrial{
				{ID: "tr-1", Version: "T1", Date: "2025-06-10", Condition: "melt 230C", Result: model.TrialAdjust},
				{ID: "tr-2", Version: "T2", Date: "2025-06-11", Condition: "melt 235C", Result: model.TrialPass},
			},
		},
	}
}

func exportLines(t *testing.T, tasks []model.Task, includeTrials bool) []string {
	t.Helper()

	out := string(Export(tasks, includeTrials))
	require.True(t, strings.HasPrefix(out, "\uFEFF"), "export must start with a UTF-8 BOM")

	out = strings.TrimPrefix(out, "\uFEFF")
	out = strings.TrimSuffix(out, "\n")
	return strings.Split(out, "\n")
}

func TestExportHeaderAndRowShape(t *testing.T) {
	lines := exportLines(t, exportTasks(), true)
	require.Len(t, lines, 3)

	assert.Equal(t,
		"ID,Mold,Title,Status,Priority,Assignee,Start Date,Due Date,Progress,Trial History",
		lines[0])

	fields := strings.Split(lines[1], ",")
	require.Len(t, fields, 10)
	assert.Equal(t, "D-101", fields[0])
	assert.Equal(t, "In Progress", fields[3])
	assert.Equal(t, "High", fields[4])
	assert.Equal(t, "45%", fields[8])
	assert.Equal(t, "", fields[9])
}

func TestExportWithoutTrialsDropsTheColumn(t *testing.T) {
	lines := exportLines(t, exportTasks(), false)

	assert.Equal(t,
		"ID,Mold,Title,Status,Priority,Assignee,Start Date,Due Date,Progress",
		lines[0])
	assert.Len(t, strings.Split(lines[1], ","), 9)
}

func TestExportFlattensTrialHistory(t *testing.T) {
	lines := exportLines(t, exportTasks(), true)

	fields := strings.Split(lines[2], ",")
	assert.Equal(t,
		"[T1|2025-06-10|ADJUST|melt 230C] / [T2|2025-06-11|PASS|melt 235C]",
		fields[9])
}

func TestExportSanitizesDelimitersInFreeText(t *testing.T) {
	tasks := []model.Task{{
		ID: "D-101", MoldName: "MOLD,A1", Title: "line one\nline two",
		Status: model.StatusTodo, Priority: model.PriorityLow,
	}}

	lines := exportLines(t, tasks, false)
	fields := strings.Split(lines[1], ",")
	require.Len(t, fields, 9)
	assert.Equal(t, "MOLD A1", fields[1])
	assert.Equal(t, "line one line two", fields[2])
}

func TestImportSkipsHeaderAndBlankLines(t *testing.T) {
	data := "Mold,Title,Assignee,Due Date\n" +
		"MOLD-A1,Slide rework,Ben Chang,2025-07-01\n" +
		"\n" +
		"MOLD-B2,Vent polishing,Carl Lin,2025-07-05\n"

	tasks := Import(data)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Slide rework", tasks[0].Title)
	assert.Equal(t, "Carl Lin", tasks[1].Assignee)
}

func TestImportAppliesCreationDefaults(t *testing.T) {
	tasks := Import("header\nMOLD-A1,Slide rework,Ben Chang,2025-07-01\n")
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, model.StatusTodo, got.Status)
	assert.Equal(t, model.PriorityMedium, got.Priority)
	assert.Equal(t, 0, got.Progress)
	assert.Equal(t, []model.Phase{model.PhaseDesign}, got.Tags)
	assert.Empty(t, got.Trials)
}

func TestImportFillsMissingFieldsWithPlaceholders(t *testing.T) {
	tasks := Import("header\n,,\n")
	require.Len(t, tasks, 1)

	assert.Equal(t, "UNNAMED-MOLD", tasks[0].MoldName)
	assert.Equal(t, "Imported task 1", tasks[0].Title)
	assert.Equal(t, "", tasks[0].Assignee)
}

func TestImportToleratesShortRows(t *testing.T) {
	tasks := Import("header\nMOLD-A1\n")
	require.Len(t, tasks, 1)

	assert.Equal(t, "MOLD-A1", tasks[0].MoldName)
	assert.Equal(t, "Imported task 1", tasks[0].Title)
	assert.Equal(t, "", tasks[0].DueDate)
}

func TestImportHandlesBOMAndCRLF(t *testing.T) {
	data := "\uFEFFMold,Title,Assignee,Due Date\r\nMOLD-A1,Slide rework,Ben Chang,2025-07-01\r\n"

	tasks := Import(data)
	require.Len(t, tasks, 1)
	assert.Equal(t, "MOLD-A1", tasks[0].MoldName)
	assert.Equal(t, "2025-07-01", tasks[0].DueDate)
}

func TestImportIgnoresExtraColumns(t *testing.T) {
	tasks := Import("header\nMOLD-A1,Slide rework,Ben Chang,2025-07-01,extra,columns\n")
	require.Len(t, tasks, 1)

	assert.Equal(t, "2025-07-01", tasks[0].DueDate)
}
