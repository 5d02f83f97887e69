package state

import (
	"strings"
	"time"

	"github.com/moldworks/moldtrack/internal/model"
)

// Authenticate looks up the employee id case-insensitively and
// requires an exact password match. On success the session is
// established and observers are notified; on failure the generic
// ErrBadCredentials is returned without revealing which check failed.
func (s *State) Authenticate(empID, password string) (*model.Session, error) {
	for _, m := range s.members {
		if !strings.EqualFold(m.EmpID, empID) {
			continue
		}
		if m.Password != password {
			return nil, ErrBadCredentials
		}
		sess := &model.Session{EmpID: m.EmpID, Name: m.Name, Role: m.Role}
		s.session = sess
		s.commit(ChangeSession)
		return sess, nil
	}
	return nil, ErrBadCredentials
}

// Logout clears the session. The synchronizer removes the persisted
// session record entirely rather than storing an empty one.
func (s *State) Logout() {
	if s.session == nil {
		return
	}
	s.session = nil
	s.commit(ChangeSession)
}

// TaskPatch carries the fields of a save-task request. A nil field is
// "not supplied" and preserves the existing value on update. ID empty
// means create.
type TaskPatch struct {
	ID          string
	MoldName    *string
	Title       *string
	Description *string
	Status      *model.TaskStatus
	Priority    *model.Priority
	Assignee    *string
	StartDate   *string
	DueDate     *string
	Progress    *int
	Phase       *model.Phase
}

// SaveTask creates or updates a task. Manager only. Create seeds
// status TODO, priority MEDIUM, progress 0 and assigns a unique
// "{phase initial}-{3 digits}" id; update merges the supplied fields
// onto the record found by ID. The merged record must have a non-empty
// title and mold name; progress is clamped to [0, 100] and the phase
// tag is normalized to exactly one entry.
func (s *State) SaveTask(patch TaskPatch) (model.Task, error) {
	if err := s.requireManager(); err != nil {
		return model.Task{}, err
	}

	var task model.Task
	idx := -1
	if patch.ID != "" {
		for i := range s.tasks {
			if s.tasks[i].ID == patch.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return model.Task{}, ErrTaskNotFound
		}
		task = s.tasks[idx].Clone()
	} else {
		task = model.Task{
			Status:   model.StatusTodo,
			Priority: model.PriorityMedium,
			Progress: 0,
			Tags:     []model.Phase{},
			Trials:   []model.MoldTrial{},
		}
	}

	applyPatch(&task, patch)

	if strings.TrimSpace(task.Title) == "" || strings.TrimSpace(task.MoldName) == "" {
		return model.Task{}, validationf("mold name and title are required")
	}
	if task.Assignee != "" && !s.memberExists(task.Assignee) {
		return model.Task{}, validationf("unknown assignee %q", task.Assignee)
	}

	if task.Progress < 0 {
		task.Progress = 0
	}
	if task.Progress > 100 {
		task.Progress = 100
	}

	// Exactly one phase tag after save.
	task.Tags = []model.Phase{task.PrimaryPhase()}

	tasks := model.CloneTasks(s.tasks)
	if idx >= 0 {
		tasks[idx] = task
	} else {
		taken := make(map[string]bool, len(tasks))
		for _, t := range tasks {
			taken[t.ID] = true
		}
		task.ID = newTaskID(task.Tags[0], taken)
		tasks = append(tasks, task)
	}

	s.tasks = tasks
	s.commit(ChangeTasks)
	return task, nil
}

// applyPatch merges supplied patch fields onto the task.
func applyPatch(task *model.Task, patch TaskPatch) {
	if patch.MoldName != nil {
		task.MoldName = *patch.MoldName
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Assignee != nil {
		task.Assignee = *patch.Assignee
	}
	if patch.StartDate != nil {
		task.StartDate = *patch.StartDate
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.Progress != nil {
		task.Progress = *patch.Progress
	}
	if patch.Phase != nil {
		task.Tags = []model.Phase{*patch.Phase}
	}
}

// memberExists reports whether a member with the given display name is
// in the member collection.
func (s *State) memberExists(name string) bool {
	for _, m := range s.members {
		if m.Name == name {
			return true
		}
	}
	return false
}

// DeleteTask removes a task by id. Manager only. The UI confirms the
// deletion before calling; the removal itself is irreversible.
func (s *State) DeleteTask(id string) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	tasks := make([]model.Task, 0, len(s.tasks))
	found := false
	for _, t := range s.tasks {
		if t.ID == id {
			found = true
			continue
		}
		tasks = append(tasks, t.Clone())
	}
	if !found {
		return ErrTaskNotFound
	}

	s.tasks = tasks
	s.commit(ChangeTasks)
	return nil
}

// AddTrial appends a trial record to the task's history. Any logged-in
// role may record trials. The condition description is required; the
// result defaults to PENDING, the version to "T1", and the date to
// today. The stored record gets a fresh unique id and no AI advice.
func (s *State) AddTrial(taskID string, trial model.MoldTrial) (model.MoldTrial, error) {
	if err := s.requireSession(); err != nil {
		return model.MoldTrial{}, err
	}
	if strings.TrimSpace(trial.Condition) == "" {
		return model.MoldTrial{}, validationf("trial condition description is required")
	}

	trial.ID = newTrialID()
	trial.AIAdvice = ""
	if trial.Result == "" {
		trial.Result = model.TrialPending
	}
	if trial.Version == "" {
		trial.Version = "T1"
	}
	if trial.Date == "" {
		trial.Date = time.Now().Format("2006-01-02")
	}

	tasks := model.CloneTasks(s.tasks)
	idx := -1
	for i := range tasks {
		if tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.MoldTrial{}, ErrTaskNotFound
	}

	tasks[idx].Trials = append(tasks[idx].Trials, trial)
	s.tasks = tasks
	s.commit(ChangeTasks)
	return trial, nil
}

// AttachTrialAdvice sets the AI advice text on one trial in the
// canonical collection. Called when an advice request completes; the
// detail view re-reads the task so the displayed copy stays consistent
// with what is persisted.
func (s *State) AttachTrialAdvice(taskID, trialID, advice string) error {
	tasks := model.CloneTasks(s.tasks)
	for i := range tasks {
		if tasks[i].ID != taskID {
			continue
		}
		for j := range tasks[i].Trials {
			if tasks[i].Trials[j].ID == trialID {
				tasks[i].Trials[j].AIAdvice = advice
				s.tasks = tasks
				s.commit(ChangeTasks)
				return nil
			}
		}
	}
	return ErrTaskNotFound
}

// CreateMember appends a member. Manager only. Employee id, name, and
// email are required; a duplicate employee id (case-insensitive) is
// rejected. The new member receives the default password.
func (s *State) CreateMember(m model.Member) error {
	if err := s.requireManager(); err != nil {
		return err
	}
	if strings.TrimSpace(m.EmpID) == "" || strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" {
		return validationf("employee id, name, and email are required")
	}
	for _, existing := range s.members {
		if strings.EqualFold(existing.EmpID, m.EmpID) {
			return validationf("employee id %s already exists", m.EmpID)
		}
	}

	if m.Role == "" {
		m.Role = model.RoleEngineer
	}
	m.Password = model.DefaultPassword

	members := append([]model.Member(nil), s.members...)
	members = append(members, m)
	s.members = members
	s.commit(ChangeMembers)
	return nil
}

// ChangePassword replaces the logged-in member's password. The old
// password must match the current record exactly, the new password and
// its confirmation must agree, and the new password must be at least
// six characters.
func (s *State) ChangePassword(oldPass, newPass, confirm string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if newPass != confirm {
		return validationf("new password and confirmation do not match")
	}
	if len(newPass) < 6 {
		return validationf("new password must be at least 6 characters")
	}

	members := append([]model.Member(nil), s.members...)
	for i := range members {
		if !strings.EqualFold(members[i].EmpID, s.session.EmpID) {
			continue
		}
		if members[i].Password != oldPass {
			return validationf("current password is incorrect")
		}
		members[i].Password = newPass
		s.members = members
		s.commit(ChangeMembers)
		return nil
	}
	return validationf("member record not found")
}

// SetSenderEmail updates the system sender address. Manager only.
func (s *State) SetSenderEmail(addr string) error {
	if err := s.requireManager(); err != nil {
		return err
	}
	if strings.TrimSpace(addr) == "" {
		return validationf("sender email is required")
	}
	s.senderEmail = strings.TrimSpace(addr)
	s.commit(ChangeSenderEmail)
	return nil
}

// ImportTasks bulk-appends tasks produced by the CSV importer.
// Manager only. Ids are reassigned to stay unique within the
// collection; imported rows keep their hardcoded defaults.
func (s *State) ImportTasks(imported []model.Task) (int, error) {
	if err := s.requireManager(); err != nil {
		return 0, err
	}
	if len(imported) == 0 {
		return 0, nil
	}

	tasks := model.CloneTasks(s.tasks)
	taken := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		taken[t.ID] = true
	}

	for _, t := range imported {
		t = t.Clone()
		t.Tags = []model.Phase{t.PrimaryPhase()}
		t.ID = newTaskID(t.Tags[0], taken)
		taken[t.ID] = true
		tasks = append(tasks, t)
	}

	s.tasks = tasks
	s.commit(ChangeTasks)
	return len(imported), nil
}
