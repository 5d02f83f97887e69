// Package report serializes the task collection to and from the
// delimited text format used by the import/export view.
package report

import (
	"fmt"
	"strings"

	"github.com/moldworks/moldtrack/internal/model"
)

// utf8BOM prefixes exports so spreadsheet tools detect the encoding.
const utf8BOM = "\uFEFF"

// exportHeader is the fixed column order of an export.
var exportHeader = []string{
	"ID", "Mold", "Title", "Status", "Priority",
	"Assignee", "Start Date", "Due Date", "Progress", "Trial History",
}

// Export renders the full task collection as delimited text: a UTF-8
// byte-order marker, a header row, then one row per task. It never
// applies view filters; every task is exported. includeTrials adds a
// flattened trial-history column.
func Export(tasks []model.Task, includeTrials bool) []byte {
	cols := exportHeader
	if !includeTrials {
		cols = exportHeader[:len(exportHeader)-1]
	}

	var sb strings.Builder
	sb.WriteString(utf8BOM)
	sb.WriteString(strings.Join(cols, ","))
	sb.WriteString("\n")

	for _, t := range tasks {
		row := []string{
			sanitize(t.ID),
			sanitize(t.MoldName),
			sanitize(t.Title),
			model.TaskStatusLabels[t.Status],
			model.PriorityLabels[t.Priority],
			sanitize(t.Assignee),
			t.StartDate,
			t.DueDate,
			fmt.Sprintf("%d%%", t.Progress),
		}
		if includeTrials {
			row = append(row, flattenTrials(t.Trials))
		}
		sb.WriteString(strings.Join(row, ","))
		sb.WriteString("\n")
	}

	return []byte(sb.String())
}

// flattenTrials encodes a trial history as bracketed sub-delimited
// entries joined by " / ", e.g. "[T1|2024-05-01|ADJUST|flash at gate]".
func flattenTrials(trials []model.MoldTrial) string {
	if len(trials) == 0 {
		return ""
	}

	entries := make([]string, len(trials))
	for i, tr := range trials {
		entries[i] = fmt.Sprintf("[%s|%s|%s|%s]",
			sanitize(tr.Version), tr.Date, tr.Result, sanitize(tr.Condition))
	}
	return strings.Join(entries, " / ")
}

// sanitize strips delimiter characters from free-text fields so rows
// stay aligned.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// importColumns is the fixed column order expected by Import:
// moldName, title, assignee, dueDate.
const importColumns = 4

// Import parses delimited text into new task records. The header row
// is skipped; every remaining non-blank line yields one task with
// hardcoded defaults (status TODO, priority MEDIUM, progress 0, design
// phase). Malformed lines are tolerated: missing columns are replaced
// with placeholder values rather than rejecting the import.
func Import(data string) []model.Task {
	data = strings.TrimPrefix(data, utf8BOM)
	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")

	var tasks []model.Task
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		for len(fields) < importColumns {
			fields = append(fields, "")
		}

		task := model.Task{
			MoldName: fieldOr(fields[0], "UNNAMED-MOLD"),
			Title:    fieldOr(fields[1], fmt.Sprintf("Imported task %d", i)),
			Assignee: strings.TrimSpace(fields[2]),
			DueDate:  strings.TrimSpace(fields[3]),
			Status:   model.StatusTodo,
			Priority: model.PriorityMedium,
			Progress: 0,
			Tags:     []model.Phase{model.PhaseDesign},
			Trials:   []model.MoldTrial{},
		}
		tasks = append(tasks, task)
	}

	return tasks
}

// fieldOr returns the trimmed field or a placeholder when it is empty.
func fieldOr(field, placeholder string) string {
	field = strings.TrimSpace(field)
	if field == "" {
		return placeholder
	}
	return field
}
