package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moldworks/moldtrack/internal/model"
)

func task(id string, status model.TaskStatus, phase model.Phase, assignee string) model.Task {
	return model.Task{
		ID: id, MoldName: "MOLD-A1", Title: id,
		Status: status, Priority: model.PriorityMedium,
		Assignee: assignee, Tags: []model.Phase{phase},
	}
}

func TestComputeEmptyCollection(t *testing.T) {
	s := Compute(nil)

	assert.Equal(t, 0, s.Total)
	// Every bucket exists, zero included.
	assert.Len(t, s.StatusCounts, len(model.AllStatuses))
	assert.Len(t, s.PhaseCounts, len(model.AllPhases))
	assert.Equal(t, 0.0, s.CompletionRate())
}

func TestComputeStatusCountsSumToTotal(t *testing.T) {
	tasks := []model.Task{
		task("a", model.StatusTodo, model.PhaseDesign, "Ben Chang"),
		task("b", model.StatusInProgress, model.PhaseDesign, "Ben Chang"),
		task("c", model.StatusDone, model.PhaseTrial, "Dana Wang"),
		task("d", model.StatusDelayed, model.PhaseAssembly, "Carl Lin"),
		task("e", model.StatusDone, model.PhaseMassProduction, "Dana Wang"),
	}

	s := Compute(tasks)

	sum := 0
	for _, n := range s.StatusCounts {
		sum += n
	}
	assert.Equal(t, len(tasks), sum)
	assert.Equal(t, 2, s.Completed())
	assert.Equal(t, 1, s.Delayed())
	assert.InDelta(t, 0.4, s.CompletionRate(), 1e-9)
}

func TestComputeEachTaskCountedInOneStatusBucket(t *testing.T) {
	tasks := []model.Task{task("a", model.StatusReview, model.PhaseDesign, "")}
	s := Compute(tasks)

	assert.Equal(t, 1, s.StatusCounts[model.StatusReview])
	for _, status := range model.AllStatuses {
		if status == model.StatusReview {
			continue
		}
		assert.Equal(t, 0, s.StatusCounts[status])
	}
}

func TestComputePhaseUsesFirstMatchInPipelineOrder(t *testing.T) {
	multi := task("a", model.StatusTodo, model.PhaseTrial, "")
	multi.Tags = []model.Phase{model.PhaseTrial, model.PhaseDesign}

	s := Compute([]model.Task{multi})

	// DESIGN precedes TRIAL in pipeline order regardless of tag order.
	assert.Equal(t, 1, s.PhaseCounts[model.PhaseDesign])
	assert.Equal(t, 0, s.PhaseCounts[model.PhaseTrial])
}

func TestComputeUntaggedTaskCountsAsDesign(t *testing.T) {
	bare := task("a", model.StatusTodo, model.PhaseDesign, "")
	bare.Tags = nil

	s := Compute([]model.Task{bare})
	assert.Equal(t, 1, s.PhaseCounts[model.PhaseDesign])
}

func TestMemberWorkloadRatio(t *testing.T) {
	var tasks []model.Task
	for i := 0; i < 3; i++ {
		tasks = append(tasks, task(string(rune('a'+i)), model.StatusInProgress, model.PhaseDesign, "Ben Chang"))
	}
	// DONE tasks never count toward active load.
	tasks = append(tasks, task("done", model.StatusDone, model.PhaseDesign, "Ben Chang"))

	s := Compute(tasks)
	ms := s.Member("Ben Chang")

	assert.Equal(t, 4, ms.Total)
	assert.Len(t, ms.ActiveTasks, 3)
	assert.InDelta(t, 0.6, ms.WorkloadRatio(), 1e-9)
}

func TestMemberWorkloadRatioClampedAtOne(t *testing.T) {
	var tasks []model.Task
	for i := 0; i < 7; i++ {
		tasks = append(tasks, task(string(rune('a'+i)), model.StatusTodo, model.PhaseDesign, "Carl Lin"))
	}

	s := Compute(tasks)
	assert.Equal(t, 1.0, s.Member("Carl Lin").WorkloadRatio())
}

func TestMemberWithoutTasksIsZeroAggregate(t *testing.T) {
	s := Compute(nil)
	ms := s.Member("Nobody")

	assert.Equal(t, 0, ms.Total)
	assert.Empty(t, ms.ActiveTasks)
	assert.Equal(t, 0.0, ms.WorkloadRatio())
}
