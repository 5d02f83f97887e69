package model

import "time"

// DefaultSenderEmail is the initial system sender address used for
// delayed-task reminder mail until a manager changes it.
const DefaultSenderEmail = "plm-noreply@moldcorp.com"

// DefaultPassword is assigned to newly created members.
const DefaultPassword = "123456"

// dateOffset returns the date n days from today as an ISO 8601 string.
func dateOffset(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

// SeedMembers returns the baked-in member dataset used when the store
// has no member record or the stored record cannot be parsed.
func SeedMembers() []Member {
	return []Member{
		{EmpID: "M001", Name: "Alice Chao", Email: "manager@moldcorp.com", Role: RoleManager, Password: "123456"},
		{EmpID: "E001", Name: "Ben Chang", Email: "ben@moldcorp.com", Role: RoleEngineer, Password: "123456"},
		{EmpID: "E002", Name: "Carl Lin", Email: "carl@moldcorp.com", Role: RoleEngineer, Password: "123456"},
		{EmpID: "E003", Name: "Dana Wang", Email: "dana@moldcorp.com", Role: RoleEngineer, Password: "123456"},
		{EmpID: "E004", Name: "Eric Lee", Email: "eric@moldcorp.com", Role: RoleEngineer, Password: "123456"},
	}
}

// SeedTasks returns the baked-in task dataset used when the store has
// no task record or the stored record cannot be parsed. Dates are
// generated relative to today so the seeded board always shows a
// plausible mix of finished, active, and delayed work.
func SeedTasks() []Task {
	return []Task{
		{
			ID: "D-101", MoldName: "MOLD-A1", Title: "3D structure optimization",
			Description: "Rework runner layout and cooling channels around the core structure.",
			Status:      StatusDone, Priority: PriorityHigh, Assignee: "Ben Chang",
			StartDate: dateOffset(-30), DueDate: dateOffset(-20), Progress: 100,
			Tags: []Phase{PhaseDesign}, Trials: []MoldTrial{},
		},
		{
			ID: "A-102", MoldName: "MOLD-A1", Title: "Cavity rough machining",
			Description: "CNC roughing pass, leave 0.5mm stock.",
			Status:      StatusDone, Priority: PriorityMedium, Assignee: "Carl Lin",
			StartDate: dateOffset(-19), DueDate: dateOffset(-10), Progress: 100,
			Tags: []Phase{PhaseAssembly}, Trials: []MoldTrial{},
		},
		{
			ID: "T-103", MoldName: "MOLD-A1", Title: "T1 trial shot",
			Description: "First injection molding test.",
			Status:      StatusDone, Priority: PriorityHigh, Assignee: "Dana Wang",
			StartDate: dateOffset(-9), DueDate: dateOffset(-5), Progress: 100,
			Tags: []Phase{PhaseTrial},
			Trials: []MoldTrial{
				{ID: "tr-1", Version: "T1", Date: dateOffset(-6), Condition: "Cold slug at the gate, visible flow marks", Result: TrialAdjust},
			},
		},
		{
			ID: "T-104", MoldName: "MOLD-A1", Title: "T2 verification trial",
			Description: "Re-verify after gate correction.",
			Status:      StatusReview, Priority: PriorityHigh, Assignee: "Dana Wang",
			StartDate: dateOffset(-4), DueDate: dateOffset(2), Progress: 95,
			Tags: []Phase{PhaseTrial},
			Trials: []MoldTrial{
				{ID: "tr-2", Version: "T2", Date: dateOffset(-1), Condition: "Dimensions within tolerance", Result: TrialPending},
			},
		},
		{
			ID: "M-105", MoldName: "MOLD-A1", Title: "Mass-production preparation",
			Description: "Lock in production parameters.",
			Status:      StatusTodo, Priority: PriorityMedium, Assignee: "Alice Chao",
			StartDate: dateOffset(5), DueDate: dateOffset(15), Progress: 0,
			Tags: []Phase{PhaseMassProduction}, Trials: []MoldTrial{},
		},
		{
			ID: "D-201", MoldName: "MOLD-B2", Title: "Slider mechanism simulation",
			Description: "Dynamic simulation of the slider mechanism.",
			Status:      StatusInProgress, Priority: PriorityCritical, Assignee: "Ben Chang",
			StartDate: dateOffset(-5), DueDate: dateOffset(5), Progress: 45,
			Tags: []Phase{PhaseDesign}, Trials: []MoldTrial{},
		},
		{
			ID: "A-202", MoldName: "MOLD-B2", Title: "Ejector system assembly",
			Description: "Install core ejector pins.",
			Status:      StatusDelayed, Priority: PriorityCritical, Assignee: "Carl Lin",
			StartDate: dateOffset(-15), DueDate: dateOffset(-1), Progress: 30,
			Tags: []Phase{PhaseAssembly}, Trials: []MoldTrial{},
		},
	}
}
