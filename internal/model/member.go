package model

// Role gates access to creation, deletion, and settings mutations.
type Role string

const (
	RoleManager  Role = "MANAGER"
	RoleEngineer Role = "ENGINEER"
)

// Member is a system user and assignable resource.
type Member struct {
	// EmpID is the unique login identifier, matched case-insensitively.
	EmpID string `json:"empId"`

	// Name is the display name. Task.Assignee refers to it.
	Name string `json:"name"`

	// Email is the member's contact address.
	Email string `json:"email"`

	// Role determines which mutations the member may perform.
	Role Role `json:"role"`

	// Password is the login credential. Stored as-is; this is a
	// single-user local tool, not a hardened auth system.
	Password string `json:"password"`
}

// Session is the authenticated principal: a role-scoped projection of
// a Member, held for the duration of the run and persisted across
// restarts until explicit logout.
type Session struct {
	EmpID string `json:"empId"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// IsManager reports whether the session holds the manager role.
func (s Session) IsManager() bool {
	return s.Role == RoleManager
}
