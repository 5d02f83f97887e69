// Package stats derives read-only aggregates from the task collection:
// status counts, pipeline-phase counts, and per-member workload. The
// computation is a pure function of the input slice and is recomputed
// whenever the collection changes; nothing here is mutated in place.
package stats

import (
	"github.com/moldworks/moldtrack/internal/model"
)

// memberCapacity is the assumed number of concurrent active tasks a
// member can carry; workload ratios are clamped at this capacity.
const memberCapacity = 5

// MemberStats aggregates one member's assignment load.
type MemberStats struct {
	// Total counts every task assigned to the member.
	Total int

	// ByStatus counts the member's tasks per status.
	ByStatus map[model.TaskStatus]int

	// ActiveTasks lists the member's non-DONE tasks in collection
	// order.
	ActiveTasks []model.Task
}

// WorkloadRatio returns the member's active-task load against the
// fixed capacity, clamped to 1.0.
func (m MemberStats) WorkloadRatio() float64 {
	ratio := float64(len(m.ActiveTasks)) / memberCapacity
	if ratio > 1.0 {
		return 1.0
	}
	return ratio
}

// Stats is the full set of aggregates over a task collection.
type Stats struct {
	// StatusCounts has an entry for all five statuses, zero included.
	StatusCounts map[model.TaskStatus]int

	// PhaseCounts has an entry for all four phases, zero included.
	// Each task is counted in at most one phase: the first phase tag
	// it carries, tested in pipeline order.
	PhaseCounts map[model.Phase]int

	// Members maps assignee name to that member's aggregate. Buckets
	// are created lazily on first encounter.
	Members map[string]MemberStats

	// Total is the size of the task collection.
	Total int
}

// Compute aggregates the task collection in a single linear scan.
func Compute(tasks []model.Task) Stats {
	s := Stats{
		StatusCounts: make(map[model.TaskStatus]int, len(model.AllStatuses)),
		PhaseCounts:  make(map[model.Phase]int, len(model.AllPhases)),
		Members:      make(map[string]MemberStats),
		Total:        len(tasks),
	}
	for _, st := range model.AllStatuses {
		s.StatusCounts[st] = 0
	}
	for _, p := range model.AllPhases {
		s.PhaseCounts[p] = 0
	}

	for _, t := range tasks {
		s.StatusCounts[t.Status]++
		s.PhaseCounts[t.PrimaryPhase()]++

		ms, ok := s.Members[t.Assignee]
		if !ok {
			ms = MemberStats{ByStatus: make(map[model.TaskStatus]int, len(model.AllStatuses))}
		}
		ms.Total++
		ms.ByStatus[t.Status]++
		if t.Status != model.StatusDone {
			ms.ActiveTasks = append(ms.ActiveTasks, t)
		}
		s.Members[t.Assignee] = ms
	}

	return s
}

// Completed returns the number of DONE tasks.
func (s Stats) Completed() int {
	return s.StatusCounts[model.StatusDone]
}

// Delayed returns the number of DELAYED tasks.
func (s Stats) Delayed() int {
	return s.StatusCounts[model.StatusDelayed]
}

// CompletionRate returns the DONE fraction of the collection, or 0 for
// an empty collection.
func (s Stats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed()) / float64(s.Total)
}

// Member returns the aggregate for the named member, which is the zero
// aggregate when the member has no tasks.
func (s Stats) Member(name string) MemberStats {
	if ms, ok := s.Members[name]; ok {
		return ms
	}
	return MemberStats{ByStatus: map[model.TaskStatus]int{}}
}
