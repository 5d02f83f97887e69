package model

// TaskStatus is the workflow state of a mold-development task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusReview     TaskStatus = "REVIEW"
	StatusDone       TaskStatus = "DONE"
	StatusDelayed    TaskStatus = "DELAYED"
)

// AllStatuses lists every task status in board-column order.
var AllStatuses = []TaskStatus{
	StatusTodo,
	StatusInProgress,
	StatusReview,
	StatusDone,
	StatusDelayed,
}

// TaskStatusLabels maps each status to its display string.
// Every status has exactly one label; a missing entry is a bug.
var TaskStatusLabels = map[TaskStatus]string{
	StatusTodo:       "To Do",
	StatusInProgress: "In Progress",
	StatusReview:     "In Review",
	StatusDone:       "Done",
	StatusDelayed:    "Delayed",
}

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// AllPriorities lists every priority from lowest to highest.
var AllPriorities = []Priority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityCritical,
}

// PriorityLabels maps each priority to its display string.
var PriorityLabels = map[Priority]string{
	PriorityLow:      "Low",
	PriorityMedium:   "Medium",
	PriorityHigh:     "High",
	PriorityCritical: "Critical",
}

// Phase is a pipeline-stage label classifying a task's position in the
// mold-development lifecycle.
type Phase string

const (
	PhaseDesign         Phase = "DESIGN"
	PhaseAssembly       Phase = "ASSEMBLY"
	PhaseTrial          Phase = "TRIAL"
	PhaseMassProduction Phase = "MASS_PRODUCTION"
)

// AllPhases lists the four phases in pipeline order. Aggregation tests
// tag membership in this order, first match wins.
var AllPhases = []Phase{
	PhaseDesign,
	PhaseAssembly,
	PhaseTrial,
	PhaseMassProduction,
}

// PhaseLabels maps each phase to its display string.
var PhaseLabels = map[Phase]string{
	PhaseDesign:         "Design",
	PhaseAssembly:       "Assembly",
	PhaseTrial:          "Trial Run",
	PhaseMassProduction: "Mass Production",
}

// TrialResult is the outcome of a single injection-molding trial.
type TrialResult string

const (
	TrialPass    TrialResult = "PASS"
	TrialFail    TrialResult = "FAIL"
	TrialAdjust  TrialResult = "ADJUST"
	TrialPending TrialResult = "PENDING"
)

// MoldTrial is one recorded injection-molding trial attempt. Trials are
// owned by their parent task: created via the add-trial operation,
// never deleted independently, and mutated only to attach AI advice.
type MoldTrial struct {
	// ID is unique within the parent task.
	ID string `json:"id"`

	// Version is a free-text label such as "T1" or "T2".
	Version string `json:"version"`

	// Date is the trial date as an ISO 8601 date string.
	Date string `json:"date"`

	// Condition is the observed defect/condition description.
	Condition string `json:"condition"`

	// Result is the trial outcome.
	Result TrialResult `json:"result"`

	// AIAdvice is optional improvement advice attached asynchronously
	// by the insight gateway; empty until requested.
	AIAdvice string `json:"aiAdvice,omitempty"`
}

// Task is a unit of mold-development work.
type Task struct {
	// ID is the short human-readable identifier, immutable after
	// creation. New tasks get "{phase initial}-{3 digits}".
	ID string `json:"id"`

	// MoldName identifies the mold/project this task belongs to.
	MoldName string `json:"moldName"`

	// Title is the task name.
	Title string `json:"title"`

	// Description is optional free text.
	Description string `json:"description"`

	// Status is the workflow state.
	Status TaskStatus `json:"status"`

	// Priority is the urgency level.
	Priority Priority `json:"priority"`

	// Assignee is the display name of the responsible member.
	Assignee string `json:"assignee"`

	// StartDate and DueDate are ISO 8601 date strings.
	StartDate string `json:"startDate"`
	DueDate   string `json:"dueDate"`

	// Progress is a completion percentage in [0, 100].
	Progress int `json:"progress"`

	// Tags holds the task's phase classification. Save normalizes it
	// to exactly one phase.
	Tags []Phase `json:"tags"`

	// Trials is the chronological trial history; may be empty.
	Trials []MoldTrial `json:"trials"`
}

// PrimaryPhase returns the task's pipeline phase by testing tag
// membership in the fixed phase order, first match wins. Defaults to
// the design phase when no phase tag is present.
func (t Task) PrimaryPhase() Phase {
	for _, p := range AllPhases {
		for _, tag := range t.Tags {
			if tag == p {
				return p
			}
		}
	}
	return PhaseDesign
}

// Clone returns a deep copy of the task, including its trial history.
// Mutation operations copy before writing so that previously returned
// collections are never modified in place.
func (t Task) Clone() Task {
	out := t
	out.Tags = append([]Phase(nil), t.Tags...)
	out.Trials = append([]MoldTrial(nil), t.Trials...)
	return out
}

// CloneTasks deep-copies a task collection.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
